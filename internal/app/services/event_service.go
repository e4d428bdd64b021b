package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// Radius bounds for nearby searches, in kilometres
const (
	DefaultNearbyRadiusKm = 10.0
	MaxNearbyRadiusKm     = 500.0
)

// EventService defines the interface for event operations
type EventService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, *models.Chat, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListUserEvents(ctx context.Context, userID string) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, eventID, actorID string, req *dto.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, eventID, actorID string) error
	JoinEvent(ctx context.Context, req *dto.EventMembershipRequest) (*models.Event, error)
	LeaveEvent(ctx context.Context, req *dto.EventMembershipRequest) (*models.Event, error)
	NearbyEvents(ctx context.Context, q *dto.NearbyQuery) ([]*models.Event, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo  repositories.EventRepository
	userRepo   repositories.UserRepository
	membership *MembershipCoordinator
	now        func() time.Time
	logger     zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	repos repositories.Repositories,
	membership *MembershipCoordinator,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo:  repos.Events,
		userRepo:   repos.Users,
		membership: membership,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func parseCategory(raw string) (models.EventCategory, error) {
	if raw == "" {
		return models.CategoryOther, nil
	}
	category := models.EventCategory(strings.ToLower(raw))
	if !category.IsValid() {
		return "", apperrors.NewValidationError("category", "unknown event category")
	}
	return category, nil
}

func parseLocation(loc *dto.LocationRequest) (models.GeoPoint, error) {
	if loc == nil || loc.Longitude == nil || loc.Latitude == nil {
		return models.GeoPoint{}, apperrors.NewValidationError("location", "location needs longitude and latitude")
	}
	lon, lat := *loc.Longitude, *loc.Latitude
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return models.GeoPoint{}, apperrors.NewValidationError("location", "coordinates out of range")
	}
	return models.NewGeoPoint(lon, lat), nil
}

// CreateEvent stores an event together with its group chat
func (s *eventServiceImpl) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*models.Event, *models.Chat, error) {
	creator, err := parseUserID("creatorId", req.CreatorID)
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, apperrors.NewValidationError("name", "name is required")
	}
	if req.DateTime.IsZero() {
		return nil, nil, apperrors.NewValidationError("dateTime", "dateTime is required")
	}
	location, err := parseLocation(&req.Location)
	if err != nil {
		return nil, nil, err
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, creator); err != nil {
		return nil, nil, err
	}

	now := s.now()
	event := &models.Event{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: req.Description,
		Creator:     creator,
		Location:    location,
		DateTime:    req.DateTime.UTC(),
		Category:    category,
		Attendees:   []models.Attendee{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	chat, err := s.membership.CreateEventWithChat(ctx, event)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("eventID", event.ID.Hex()).
		Str("chatID", chat.ID.Hex()).
		Str("creator", creator).
		Msg("Event created")
	return event, chat, nil
}

// GetEvent returns one event
func (s *eventServiceImpl) GetEvent(ctx context.Context, eventHex string) (*models.Event, error) {
	eventID, err := parseObjectID("eventId", eventHex)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListUserEvents returns events the user created or attends
func (s *eventServiceImpl) ListUserEvents(ctx context.Context, userRaw string) ([]*models.Event, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.ListByUser(ctx, userID)
}

// UpdateEvent changes the event's details. Only the creator may do this.
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, eventHex, actorRaw string, req *dto.UpdateEventRequest) (*models.Event, error) {
	eventID, err := parseObjectID("eventId", eventHex)
	if err != nil {
		return nil, err
	}
	actor, err := parseUserID("userId", actorRaw)
	if err != nil {
		return nil, err
	}

	var location *models.GeoPoint
	if req.Location != nil {
		loc, err := parseLocation(req.Location)
		if err != nil {
			return nil, err
		}
		location = &loc
	}
	var category models.EventCategory
	if req.Category != nil {
		if category, err = parseCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}

	return repositories.UpdateEvent(ctx, s.eventRepo, eventID, func(e *models.Event) error {
		if e.Creator != actor {
			return apperrors.ErrNotEventOwner
		}
		if req.Name != nil {
			e.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if location != nil {
			e.Location = *location
		}
		if req.DateTime != nil {
			e.DateTime = req.DateTime.UTC()
		}
		if req.Category != nil {
			e.Category = category
		}
		return nil
	})
}

// DeleteEvent removes the event and its chat. Only the creator may do this.
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, eventHex, actorRaw string) error {
	eventID, err := parseObjectID("eventId", eventHex)
	if err != nil {
		return err
	}
	actor, err := parseUserID("userId", actorRaw)
	if err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Creator != actor {
		return apperrors.ErrNotEventOwner
	}

	if err := s.membership.DeleteEventCascade(ctx, event); err != nil {
		return err
	}
	s.logger.Info().Str("eventID", eventID.Hex()).Msg("Event deleted")
	return nil
}

// JoinEvent adds the user to the event and its chat
func (s *eventServiceImpl) JoinEvent(ctx context.Context, req *dto.EventMembershipRequest) (*models.Event, error) {
	return s.membership.JoinEvent(ctx, req.EventID, req.UserID)
}

// LeaveEvent removes the user from the event and its chat
func (s *eventServiceImpl) LeaveEvent(ctx context.Context, req *dto.EventMembershipRequest) (*models.Event, error) {
	return s.membership.LeaveEvent(ctx, req.EventID, req.UserID)
}

// NearbyEvents returns events around a point, nearest first
func (s *eventServiceImpl) NearbyEvents(ctx context.Context, q *dto.NearbyQuery) ([]*models.Event, error) {
	lon, lat, radius, err := nearbyArgs(q)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.FindNearby(ctx, lon, lat, radius)
}

func nearbyArgs(q *dto.NearbyQuery) (lon, lat, radius float64, err error) {
	if q.Longitude == nil || q.Latitude == nil {
		return 0, 0, 0, apperrors.NewValidationError("location", "longitude and latitude are required")
	}
	lon, lat = *q.Longitude, *q.Latitude
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return 0, 0, 0, apperrors.NewValidationError("location", "coordinates out of range")
	}

	radius = q.Radius
	switch {
	case radius == 0:
		radius = DefaultNearbyRadiusKm
	case radius < 0 || radius > MaxNearbyRadiusKm:
		return 0, 0, 0, apperrors.NewValidationError("radius", "radius must be between 0 and 500 km")
	}
	return lon, lat, radius, nil
}
