package services

import (
	"github.com/rs/zerolog"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/broadcast"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/reconcile"
)

// Options collects the behaviour switches of the services
type Options struct {
	Chat        ChatConfig
	Coordinator CoordinatorConfig
}

// Services bundles the business logic handed to controllers:
// - Chat: chat creation, messaging, read receipts and group membership
// - Event: event lifecycle, attendance and nearby search
// - User: the user directory
// - Membership: the coordinator shared by Chat and Event
type Services struct {
	Chat       ChatService
	Event      EventService
	User       UserService
	Membership *MembershipCoordinator
}

// New wires every service on top of the given stores
func New(
	repos repositories.Repositories,
	broadcaster broadcast.Broadcaster,
	sink reconcile.Sink,
	opts Options,
	logger zerolog.Logger,
) *Services {
	membership := NewMembershipCoordinator(repos, sink, opts.Coordinator, logger)
	return &Services{
		Chat:       NewChatService(repos, membership, broadcaster, opts.Chat, logger.With().Str("service", "chat").Logger()),
		Event:      NewEventService(repos, membership, logger.With().Str("service", "event").Logger()),
		User:       NewUserService(repos.Users, logger.With().Str("service", "user").Logger()),
		Membership: membership,
	}
}
