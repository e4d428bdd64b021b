package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// UserStore is an in-memory user directory with the same uniqueness rules as
// the users table.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewUserStore creates a store pre-populated with users
func NewUserStore(users ...*models.User) *UserStore {
	s := &UserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = cloneUser(u)
	}
	return s
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.Hobbies = append([]string{}, u.Hobbies...)
	return &out
}

// Create inserts a user, rejecting duplicate usernames and emails
func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return apperrors.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Hobbies == nil {
		user.Hobbies = []string{}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID returns a copy of the user
func (s *UserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// MissingIDs returns the ids with no user
func (s *UserStore) MissingIDs(_ context.Context, ids []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// UpdateLocation moves the user
func (s *UserStore) UpdateLocation(_ context.Context, id string, longitude, latitude float64) (*models.User, error) {
	return s.update(id, func(u *models.User) {
		u.Longitude, u.Latitude = longitude, latitude
	})
}

// UpdateHobbies replaces the hobby tags
func (s *UserStore) UpdateHobbies(_ context.Context, id string, hobbies []string) (*models.User, error) {
	return s.update(id, func(u *models.User) {
		u.Hobbies = append([]string{}, hobbies...)
	})
}

func (s *UserStore) update(id string, mutate func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	mutate(u)
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

// FindInBox returns users inside the bounding box
func (s *UserStore) FindInBox(_ context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.User{}
	for _, u := range s.users {
		if u.Longitude >= minLon && u.Longitude <= maxLon && u.Latitude >= minLat && u.Latitude <= maxLat {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}
