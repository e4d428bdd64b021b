package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/config"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/metrics"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/reconcile"
)

// CoordinatorConfig controls what happens when the second of two writes fails
type CoordinatorConfig struct {
	// Consistency is config.ConsistencySequential or config.ConsistencyCompensate
	Consistency        string
	SecondWriteRetries int
	RetryBackoff       time.Duration
}

// MembershipCoordinator owns every change to chat membership and event
// attendance, including the writes that touch an event and its linked chat.
// Each document is changed through a load, command, save cycle; the event and
// the chat are never written atomically together.
type MembershipCoordinator struct {
	chats  repositories.ChatRepository
	events repositories.EventRepository
	users  repositories.UserRepository
	sink   reconcile.Sink
	cfg    CoordinatorConfig
	now    func() time.Time
	logger zerolog.Logger
}

// NewMembershipCoordinator creates a coordinator
func NewMembershipCoordinator(
	repos repositories.Repositories,
	sink reconcile.Sink,
	cfg CoordinatorConfig,
	logger zerolog.Logger,
) *MembershipCoordinator {
	if cfg.Consistency == "" {
		cfg.Consistency = config.ConsistencySequential
	}
	if cfg.SecondWriteRetries < 0 {
		cfg.SecondWriteRetries = 0
	}
	return &MembershipCoordinator{
		chats:  repos.Chats,
		events: repos.Events,
		users:  repos.Users,
		sink:   sink,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "membership").Logger(),
	}
}

func parseRole(raw string, fallback models.MemberRole) (models.MemberRole, error) {
	if raw == "" {
		return fallback, nil
	}
	role := models.MemberRole(raw)
	if !role.IsValid() {
		return "", apperrors.NewValidationError("role", "role must be one of member, admin")
	}
	return role, nil
}

func requireGroup(chat *models.Chat) error {
	if chat.ChatType != models.ChatTypeGroup {
		return apperrors.ErrNotAGroupChat
	}
	return nil
}

// AddGroupMember adds userID to a group chat. Adding an existing member is a
// no-op that returns the chat unchanged.
func (m *MembershipCoordinator) AddGroupMember(ctx context.Context, chatHex, userRaw, roleRaw string) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	role, err := parseRole(roleRaw, models.RoleMember)
	if err != nil {
		return nil, err
	}

	chat, err := m.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := requireGroup(chat); err != nil {
		return nil, err
	}
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return repositories.UpdateChat(ctx, m.chats, chatID, func(c *models.Chat) error {
		if !c.AddMember(userID, role, m.now()) {
			return repositories.ErrNoChange
		}
		return nil
	})
}

// RemoveGroupMember removes every entry for userID. Removing a non-member is
// a no-op, and a group may end up with no members.
func (m *MembershipCoordinator) RemoveGroupMember(ctx context.Context, chatHex, userRaw string) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}

	return repositories.UpdateChat(ctx, m.chats, chatID, func(c *models.Chat) error {
		if err := requireGroup(c); err != nil {
			return err
		}
		if c.RemoveMember(userID) == 0 {
			return repositories.ErrNoChange
		}
		return nil
	})
}

// UpdateMemberRole sets the role of an existing member
func (m *MembershipCoordinator) UpdateMemberRole(ctx context.Context, chatHex, userRaw, roleRaw string) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	if roleRaw == "" {
		return nil, apperrors.NewValidationError("role", "role is required")
	}
	role, err := parseRole(roleRaw, models.RoleMember)
	if err != nil {
		return nil, err
	}

	return repositories.UpdateChat(ctx, m.chats, chatID, func(c *models.Chat) error {
		if err := requireGroup(c); err != nil {
			return err
		}
		for _, member := range c.Users {
			if member.UserID == userID && member.Role == role {
				return repositories.ErrNoChange
			}
		}
		if !c.SetRole(userID, role) {
			return apperrors.ErrMemberNotFound
		}
		return nil
	})
}

// JoinEvent adds userID to the event's attendees and then to its linked chat
func (m *MembershipCoordinator) JoinEvent(ctx context.Context, eventHex, userRaw string) (*models.Event, error) {
	eventID, err := parseObjectID("eventId", eventHex)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}

	event, err := repositories.UpdateEvent(ctx, m.events, eventID, func(e *models.Event) error {
		if e.Creator == userID {
			return apperrors.ErrSelfJoinRejected
		}
		if e.IsAttending(userID) {
			return apperrors.ErrAlreadyAttending
		}
		e.AddAttendee(userID, m.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.ChatID == nil {
		return event, nil
	}
	chatID := *event.ChatID
	writeErr := m.secondWrite(ctx, func(ctx context.Context) error {
		_, err := repositories.UpdateChat(ctx, m.chats, chatID, func(c *models.Chat) error {
			if !c.AddMember(userID, models.RoleMember, m.now()) {
				return repositories.ErrNoChange
			}
			return nil
		})
		return err
	})
	if writeErr == nil {
		return event, nil
	}

	undo := func(ctx context.Context) error {
		_, err := repositories.UpdateEvent(ctx, m.events, eventID, func(e *models.Event) error {
			if !e.RemoveAttendee(userID) {
				return repositories.ErrNoChange
			}
			return nil
		})
		return err
	}
	return nil, m.settle(ctx, reconcile.OpJoinEvent, eventID, chatID, userID, writeErr, undo)
}

// LeaveEvent removes userID from the attendees and then from the linked chat
func (m *MembershipCoordinator) LeaveEvent(ctx context.Context, eventHex, userRaw string) (*models.Event, error) {
	eventID, err := parseObjectID("eventId", eventHex)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}

	var joinedAt time.Time
	event, err := repositories.UpdateEvent(ctx, m.events, eventID, func(e *models.Event) error {
		for _, a := range e.Attendees {
			if a.UserID == userID {
				joinedAt = a.JoinedAt
				break
			}
		}
		if !e.RemoveAttendee(userID) {
			return apperrors.ErrNotAttending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.ChatID == nil {
		return event, nil
	}
	chatID := *event.ChatID
	writeErr := m.secondWrite(ctx, func(ctx context.Context) error {
		_, err := repositories.UpdateChat(ctx, m.chats, chatID, func(c *models.Chat) error {
			if c.RemoveMember(userID) == 0 {
				return repositories.ErrNoChange
			}
			return nil
		})
		return err
	})
	if writeErr == nil {
		return event, nil
	}

	undo := func(ctx context.Context) error {
		_, err := repositories.UpdateEvent(ctx, m.events, eventID, func(e *models.Event) error {
			if e.IsAttending(userID) {
				return repositories.ErrNoChange
			}
			e.AddAttendee(userID, joinedAt)
			return nil
		})
		return err
	}
	return nil, m.settle(ctx, reconcile.OpLeaveEvent, eventID, chatID, userID, writeErr, undo)
}

// CreateEventWithChat stores the event's group chat and then the event. Both
// ids are assigned up front so each document can point at the other. When the
// event insert fails the chat is removed again.
func (m *MembershipCoordinator) CreateEventWithChat(ctx context.Context, event *models.Event) (*models.Chat, error) {
	now := m.now()

	chat := models.NewChat(models.ChatTypeGroup, event.Name, nil, now)
	chat.AddMember(event.Creator, models.RoleAdmin, now)
	eventID := event.ID
	chat.EventID = &eventID
	chatID := chat.ID
	event.ChatID = &chatID

	if err := m.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("create event chat: %w", err)
	}

	if err := m.events.Create(ctx, event); err != nil {
		if delErr := m.chats.Delete(context.WithoutCancel(ctx), chatID); delErr != nil {
			m.logger.Error().Err(delErr).
				Str("chatID", chatID.Hex()).
				Msg("Failed to remove chat of an event that was not created")
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return chat, nil
}

// DeleteEventCascade deletes the event and then its linked chat. A chat that
// is already gone counts as deleted.
func (m *MembershipCoordinator) DeleteEventCascade(ctx context.Context, event *models.Event) error {
	if err := m.events.Delete(ctx, event.ID); err != nil {
		return err
	}
	if event.ChatID == nil {
		return nil
	}

	chatID := *event.ChatID
	err := m.secondWrite(ctx, func(ctx context.Context) error {
		return m.chats.Delete(ctx, chatID)
	})
	if err == nil {
		return nil
	}
	return m.reportPartial(ctx, reconcile.OpDeleteEvent, event.ID, chatID, event.Creator, err)
}

// secondWrite runs write with the configured retries. A linked chat that no
// longer exists is not an error.
func (m *MembershipCoordinator) secondWrite(ctx context.Context, write func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= m.cfg.SecondWriteRetries; attempt++ {
		if attempt > 0 && m.cfg.RetryBackoff > 0 {
			select {
			case <-time.After(m.cfg.RetryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = write(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrChatNotFound) {
			m.logger.Debug().Msg("Linked chat no longer exists, skipping membership mirror")
			return nil
		}
		m.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Linked chat write failed")
	}
	return err
}

// settle applies the consistency policy after the chat write failed for good
func (m *MembershipCoordinator) settle(
	ctx context.Context,
	op string,
	eventID, chatID primitive.ObjectID,
	userID string,
	writeErr error,
	undo func(context.Context) error,
) error {
	if m.cfg.Consistency == config.ConsistencyCompensate {
		undoErr := undo(context.WithoutCancel(ctx))
		if undoErr == nil {
			m.logger.Warn().Err(writeErr).
				Str("operation", op).
				Str("eventID", eventID.Hex()).
				Str("userID", userID).
				Msg("Linked chat update failed, attendee change rolled back")
			return fmt.Errorf("%s: update linked chat: %w", op, writeErr)
		}
		writeErr = fmt.Errorf("%w; rollback failed: %v", writeErr, undoErr)
	}
	return m.reportPartial(ctx, op, eventID, chatID, userID, writeErr)
}

func (m *MembershipCoordinator) reportPartial(
	ctx context.Context,
	op string,
	eventID, chatID primitive.ObjectID,
	userID string,
	cause error,
) error {
	metrics.PartialMembershipUpdates.WithLabelValues(op).Inc()

	sig := reconcile.Signal{
		Operation: op,
		EventID:   eventID.Hex(),
		ChatID:    chatID.Hex(),
		UserID:    userID,
		Reason:    cause.Error(),
		At:        m.now(),
	}
	if err := m.sink.Emit(context.WithoutCancel(ctx), sig); err != nil {
		m.logger.Error().Err(err).Str("operation", op).Msg("Failed to emit reconciliation signal")
	}

	return apperrors.NewPartialMembershipUpdateError(
		fmt.Sprintf("event %s was updated but its chat %s was not", eventID.Hex(), chatID.Hex()),
		cause,
	)
}
