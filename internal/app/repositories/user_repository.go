package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/dberrors"
)

// Unique constraint names from migrations/001_create_users.sql
const (
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
)

const userColumns = `id::text, username, email, password_hash, longitude, latitude, hobbies,
	profile_image_url, created_at, updated_at`

// PostgresUserRepository is the user directory on PostgreSQL
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a user repository over the pool
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Longitude, &user.Latitude, &user.Hobbies,
		&user.ProfileImageURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if user.Hobbies == nil {
		user.Hobbies = []string{}
	}
	return user, nil
}

// Create inserts a user; ID must already be set
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Hobbies == nil {
		user.Hobbies = []string{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, longitude, latitude, hobbies, profile_image_url)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Longitude, user.Latitude, user.Hobbies, user.ProfileImageURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if constraint, ok := dberrors.UniqueViolation(err); ok {
			switch constraint {
			case usersUsernameKey:
				return apperrors.ErrUsernameTaken
			case usersEmailKey:
				return apperrors.ErrEmailAlreadyExists
			}
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "user already exists")
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID loads one user
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// MissingIDs returns the ids that have no row
func (r *PostgresUserRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text FROM users WHERE id::text = ANY($1::text[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("error checking users: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error reading users: %w", err)
	}

	present := make(map[string]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// UpdateLocation moves the user
func (r *PostgresUserRepository) UpdateLocation(ctx context.Context, id string, longitude, latitude float64) (*models.User, error) {
	return r.updateReturning(ctx, `
		UPDATE users SET longitude = $2, latitude = $3, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING `+userColumns, id, longitude, latitude)
}

// UpdateHobbies replaces the hobby tags
func (r *PostgresUserRepository) UpdateHobbies(ctx context.Context, id string, hobbies []string) (*models.User, error) {
	if hobbies == nil {
		hobbies = []string{}
	}
	return r.updateReturning(ctx, `
		UPDATE users SET hobbies = $2, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING `+userColumns, id, hobbies)
}

func (r *PostgresUserRepository) updateReturning(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

// FindInBox is the coarse prefilter for nearby user searches
func (r *PostgresUserRepository) FindInBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE latitude BETWEEN $2 AND $4 AND longitude BETWEEN $1 AND $3`,
		minLon, minLat, maxLon, maxLat)
	if err != nil {
		return nil, fmt.Errorf("error querying nearby users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
