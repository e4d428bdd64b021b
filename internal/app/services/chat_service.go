package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/broadcast"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/metrics"
)

// ChatService defines the interface for chat operations
type ChatService interface {
	// CreateChat returns the existing chat for the same members when there is
	// one; created reports whether a new chat was stored.
	CreateChat(ctx context.Context, req *dto.CreateChatRequest) (chat *models.Chat, created bool, err error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	ListUserChats(ctx context.Context, userID string, includeArchived bool) ([]*models.Chat, error)
	SearchChats(ctx context.Context, userID, query string) ([]*models.Chat, error)
	ArchiveChat(ctx context.Context, chatID string, archived bool) (*models.Chat, error)
	AddGroupMember(ctx context.Context, chatID string, req *dto.GroupMemberRequest) (*models.Chat, error)
	RemoveGroupMember(ctx context.Context, chatID, userID string) (*models.Chat, error)
	UpdateMemberRole(ctx context.Context, chatID string, req *dto.UpdateRoleRequest) (*models.Chat, error)
	SendMessage(ctx context.Context, chatID string, req *dto.SendMessageRequest) (*models.Chat, error)
	MarkMessageRead(ctx context.Context, chatID, messageID, userID string) (*models.Chat, error)
	ListUnreadChats(ctx context.Context, userID string) ([]*models.Chat, error)
}

// ChatConfig holds the chat behaviour switches
type ChatConfig struct {
	// RequireSenderMembership rejects messages from users outside the chat
	RequireSenderMembership bool
	// Unread decides which chats count as unread, HasUnreadLiteral when nil
	Unread UnreadPredicate
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chatRepo    repositories.ChatRepository
	userRepo    repositories.UserRepository
	membership  *MembershipCoordinator
	broadcaster broadcast.Broadcaster
	cfg         ChatConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	repos repositories.Repositories,
	membership *MembershipCoordinator,
	broadcaster broadcast.Broadcaster,
	cfg ChatConfig,
	logger zerolog.Logger,
) ChatService {
	if cfg.Unread == nil {
		cfg.Unread = HasUnreadLiteral
	}
	return &chatServiceImpl{
		chatRepo:    repos.Chats,
		userRepo:    repos.Users,
		membership:  membership,
		broadcaster: broadcaster,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// CreateChat canonicalises the participants, then reuses or creates the chat
func (s *chatServiceImpl) CreateChat(ctx context.Context, req *dto.CreateChatRequest) (*models.Chat, bool, error) {
	seen := make(map[string]struct{}, len(req.Users))
	ids := make([]string, 0, len(req.Users))
	for _, raw := range req.Users {
		id, err := parseUserID("users", raw)
		if err != nil {
			return nil, false, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, false, apperrors.ErrInvalidParticipants
	}
	sort.Strings(ids)

	chatType := models.ChatType(req.ChatType)
	switch {
	case chatType == "":
		chatType = models.ChatTypeDirect
	case !chatType.IsValid():
		return nil, false, apperrors.NewValidationError("chatType", "chatType must be one of direct, group")
	}
	if len(ids) > 2 {
		chatType = models.ChatTypeGroup
	}

	missing, err := s.userRepo.MissingIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	if len(missing) > 0 {
		s.logger.Debug().Strs("missing", missing).Msg("Chat participants do not exist")
		return nil, false, apperrors.ErrInvalidParticipants
	}

	existing, err := s.chatRepo.FindByMembers(ctx, chatType, ids)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		metrics.RecordChatCreate(false)
		return existing, false, nil
	}

	name := strings.TrimSpace(req.ChatName)
	if chatType == models.ChatTypeGroup && name == "" {
		return nil, false, apperrors.NewValidationError("chatName", "chatName is required for group chats")
	}

	chat := models.NewChat(chatType, name, ids, s.now())
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, false, err
	}
	metrics.RecordChatCreate(true)

	s.logger.Info().
		Str("chatID", chat.ID.Hex()).
		Str("chatType", string(chatType)).
		Int("members", len(ids)).
		Msg("Chat created")
	return chat, true, nil
}

// GetChat returns one chat
func (s *chatServiceImpl) GetChat(ctx context.Context, chatHex string) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	return s.chatRepo.GetByID(ctx, chatID)
}

// ListUserChats returns the user's chats, newest activity first
func (s *chatServiceImpl) ListUserChats(ctx context.Context, userRaw string, includeArchived bool) ([]*models.Chat, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	return s.chatRepo.ListByMember(ctx, userID, includeArchived)
}

// SearchChats matches chat names among the user's chats
func (s *chatServiceImpl) SearchChats(ctx context.Context, userRaw, query string) ([]*models.Chat, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("q", "search query is required")
	}
	return s.chatRepo.SearchByName(ctx, userID, query)
}

// ArchiveChat sets or clears the archived flag
func (s *chatServiceImpl) ArchiveChat(ctx context.Context, chatHex string, archived bool) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	return repositories.UpdateChat(ctx, s.chatRepo, chatID, func(c *models.Chat) error {
		if c.IsArchived == archived {
			return repositories.ErrNoChange
		}
		c.IsArchived = archived
		return nil
	})
}

// AddGroupMember adds a member to a group chat
func (s *chatServiceImpl) AddGroupMember(ctx context.Context, chatID string, req *dto.GroupMemberRequest) (*models.Chat, error) {
	return s.membership.AddGroupMember(ctx, chatID, req.UserID, req.Role)
}

// RemoveGroupMember removes a member from a group chat
func (s *chatServiceImpl) RemoveGroupMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	return s.membership.RemoveGroupMember(ctx, chatID, userID)
}

// UpdateMemberRole changes a group member's role
func (s *chatServiceImpl) UpdateMemberRole(ctx context.Context, chatID string, req *dto.UpdateRoleRequest) (*models.Chat, error) {
	return s.membership.UpdateMemberRole(ctx, chatID, req.UserID, req.Role)
}

// SendMessage appends a message and announces it to connected clients.
// A failed announcement is logged; the message is already stored.
func (s *chatServiceImpl) SendMessage(ctx context.Context, chatHex string, req *dto.SendMessageRequest) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	sender, err := parseUserID("sender", req.Sender)
	if err != nil {
		return nil, err
	}

	attachments := make([]models.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, models.Attachment{URL: a.URL, Name: a.Name, MimeType: a.MimeType})
	}

	var msg models.Message
	chat, err := repositories.UpdateChat(ctx, s.chatRepo, chatID, func(c *models.Chat) error {
		if s.cfg.RequireSenderMembership && !c.HasMember(sender) {
			return apperrors.ErrNotChatMember
		}
		msg = models.Message{
			ID:          primitive.NewObjectID(),
			Sender:      sender,
			Text:        req.Message,
			Timestamp:   s.now(),
			Attachments: attachments,
			ReadBy:      []models.ReadReceipt{},
		}
		c.AppendMessage(msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	evt := broadcast.Event{Type: broadcast.TypeMessage, ChatID: chat.ID.Hex(), Data: msg}
	bErr := s.broadcaster.Broadcast(ctx, evt)
	metrics.RecordBroadcast(bErr)
	if bErr != nil {
		s.logger.Warn().Err(bErr).
			Str("chatID", chat.ID.Hex()).
			Str("messageID", msg.ID.Hex()).
			Msg("Failed to broadcast message")
	}
	return chat, nil
}

// MarkMessageRead adds the user's read receipt if it is not there yet
func (s *chatServiceImpl) MarkMessageRead(ctx context.Context, chatHex, messageHex, userRaw string) (*models.Chat, error) {
	chatID, err := parseObjectID("chatId", chatHex)
	if err != nil {
		return nil, err
	}
	messageID, err := parseObjectID("messageId", messageHex)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}

	chat, err := repositories.UpdateChat(ctx, s.chatRepo, chatID, func(c *models.Chat) error {
		msg := c.FindMessage(messageID)
		if msg == nil {
			return apperrors.ErrMessageNotFound
		}
		if msg.IsReadBy(userID) {
			return repositories.ErrNoChange
		}
		msg.ReadBy = append(msg.ReadBy, models.ReadReceipt{UserID: userID, ReadAt: s.now()})
		return nil
	})
	if errors.Is(err, apperrors.ErrChatNotFound) {
		return nil, apperrors.ErrMessageNotFound
	}
	return chat, err
}

// ListUnreadChats returns the user's non-archived chats with unread messages
func (s *chatServiceImpl) ListUnreadChats(ctx context.Context, userRaw string) ([]*models.Chat, error) {
	userID, err := parseUserID("userId", userRaw)
	if err != nil {
		return nil, err
	}

	chats, err := s.chatRepo.ListByMember(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	unread := make([]*models.Chat, 0, len(chats))
	for _, chat := range chats {
		if s.cfg.Unread(chat, userID) {
			unread = append(unread, chat)
		}
	}
	return unread, nil
}
