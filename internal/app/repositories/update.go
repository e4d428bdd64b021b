package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// maxSaveAttempts bounds the reload-and-reapply loop on version conflicts
const maxSaveAttempts = 3

// ErrNoChange tells UpdateChat/UpdateEvent that the command left the document
// untouched, so nothing is written.
var ErrNoChange = errors.New("no change")

// ChatCommand mutates a loaded chat in memory
type ChatCommand func(chat *models.Chat) error

// EventCommand mutates a loaded event in memory
type EventCommand func(event *models.Event) error

// UpdateChat loads the chat, applies cmd and saves it, reapplying cmd on a
// fresh copy when the save loses a version race. The saved (or unchanged)
// chat is returned.
func UpdateChat(ctx context.Context, repo ChatRepository, id primitive.ObjectID, cmd ChatCommand) (*models.Chat, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		chat, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := cmd(chat); err != nil {
			if errors.Is(err, ErrNoChange) {
				return chat, nil
			}
			return nil, err
		}

		err = repo.Save(ctx, chat)
		if err == nil {
			return chat, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, apperrors.NewCustomError(apperrors.ErrConflict,
		fmt.Sprintf("chat %s was modified concurrently, please retry", id.Hex())).
		WithDetails(map[string]interface{}{"cause": lastErr.Error()})
}

// UpdateEvent is UpdateChat for events
func UpdateEvent(ctx context.Context, repo EventRepository, id primitive.ObjectID, cmd EventCommand) (*models.Event, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		event, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := cmd(event); err != nil {
			if errors.Is(err, ErrNoChange) {
				return event, nil
			}
			return nil, err
		}

		err = repo.Save(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, apperrors.NewCustomError(apperrors.ErrConflict,
		fmt.Sprintf("event %s was modified concurrently, please retry", id.Hex())).
		WithDetails(map[string]interface{}{"cause": lastErr.Error()})
}
