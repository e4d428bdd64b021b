package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/auth"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/geo"
)

// UserService defines the interface for user directory operations
type UserService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateLocation(ctx context.Context, userID string, req *dto.LocationRequest) (*models.User, error)
	UpdateHobbies(ctx context.Context, userID string, hobbies []string) (*models.User, error)
	// NearbyUsers returns other users around a point, nearest first
	NearbyUsers(ctx context.Context, requesterID string, q *dto.NearbyQuery) ([]*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo repositories.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SignUp hashes the password and stores a new user
func (s *userServiceImpl) SignUp(ctx context.Context, req *dto.SignUpRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Hobbies:      normalizeHobbies(req.Hobbies),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Str("username", user.Username).Msg("User signed up")
	return user, nil
}

// GetUser returns one user
func (s *userServiceImpl) GetUser(ctx context.Context, userRaw string) (*models.User, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateLocation moves the user
func (s *userServiceImpl) UpdateLocation(ctx context.Context, userRaw string, req *dto.LocationRequest) (*models.User, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	point, err := parseLocation(req)
	if err != nil {
		return nil, err
	}
	return s.userRepo.UpdateLocation(ctx, userID, point.Longitude(), point.Latitude())
}

// UpdateHobbies replaces the hobby tags
func (s *userServiceImpl) UpdateHobbies(ctx context.Context, userRaw string, hobbies []string) (*models.User, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	return s.userRepo.UpdateHobbies(ctx, userID, normalizeHobbies(hobbies))
}

// NearbyUsers prefilters with a bounding box in the store, then keeps users
// whose great-circle distance is within the radius.
func (s *userServiceImpl) NearbyUsers(ctx context.Context, requesterRaw string, q *dto.NearbyQuery) ([]*models.User, error) {
	requester, err := parseUserID("userId", requesterRaw)
	if err != nil {
		return nil, err
	}
	lon, lat, radius, err := nearbyArgs(q)
	if err != nil {
		return nil, err
	}

	box := geo.BoundingBox(lat, lon, radius)
	candidates, err := s.userRepo.FindInBox(ctx, box.MinLon, box.MinLat, box.MaxLon, box.MaxLat)
	if err != nil {
		return nil, err
	}

	type hit struct {
		user     *models.User
		distance float64
	}
	hits := make([]hit, 0, len(candidates))
	for _, u := range candidates {
		if u.ID == requester {
			continue
		}
		if d := geo.HaversineKm(lat, lon, u.Latitude, u.Longitude); d <= radius {
			hits = append(hits, hit{user: u, distance: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	users := make([]*models.User, 0, len(hits))
	for _, h := range hits {
		users = append(users, h.user)
	}
	return users, nil
}

// normalizeHobbies trims, lowercases and de-duplicates hobby tags
func normalizeHobbies(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, h := range in {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
