package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
)

// ChatRepository is the chat store. Save is conditional on chat.Version and
// returns apperrors.ErrVersionConflict when another writer got there first.
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	Save(ctx context.Context, chat *models.Chat) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindByMembers returns the chat of the given type whose member set is
	// exactly memberIDs, or nil when there is none.
	FindByMembers(ctx context.Context, chatType models.ChatType, memberIDs []string) (*models.Chat, error)
	// ListByMember returns the chats userID belongs to, newest activity first.
	ListByMember(ctx context.Context, userID string, includeArchived bool) ([]*models.Chat, error)
	// SearchByName matches chatName case-insensitively among userID's non-archived chats.
	SearchByName(ctx context.Context, userID, query string) ([]*models.Chat, error)
}

// EventRepository is the event store, with the same Save contract as ChatRepository.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	Save(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindNearby returns events within radiusKm of the point, nearest first.
	FindNearby(ctx context.Context, longitude, latitude, radiusKm float64) ([]*models.Event, error)
	// ListByUser returns events userID created or attends, soonest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Event, error)
}

// UserRepository is the user directory
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// MissingIDs returns the subset of ids with no user record.
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
	UpdateLocation(ctx context.Context, id string, longitude, latitude float64) (*models.User, error)
	UpdateHobbies(ctx context.Context, id string, hobbies []string) (*models.User, error)
	// FindInBox returns users whose location lies in the bounding box.
	FindInBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.User, error)
}

// Repositories bundles the stores handed to services
type Repositories struct {
	Chats  ChatRepository
	Events EventRepository
	Users  UserRepository
}
