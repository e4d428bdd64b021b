// Package memory implements the repository interfaces in process memory. It
// backs the "memory" store driver and the service and controller tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// ChatStore keeps chats in a map. Documents are cloned on the way in and out
// so callers never share state with the store.
type ChatStore struct {
	mu    sync.RWMutex
	chats map[primitive.ObjectID]*models.Chat
}

// NewChatStore creates an empty chat store
func NewChatStore() *ChatStore {
	return &ChatStore{chats: make(map[primitive.ObjectID]*models.Chat)}
}

// Create inserts a chat
func (s *ChatStore) Create(_ context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	if _, exists := s.chats[chat.ID]; exists {
		return apperrors.NewConflictError("chat already exists")
	}
	s.chats[chat.ID] = chat.Clone()
	return nil
}

// GetByID returns a copy of the chat
func (s *ChatStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, apperrors.ErrChatNotFound
	}
	return chat.Clone(), nil
}

// Save replaces the chat when the stored version matches
func (s *ChatStore) Save(_ context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.chats[chat.ID]
	if !ok {
		return apperrors.ErrChatNotFound
	}
	if stored.Version != chat.Version {
		return apperrors.ErrVersionConflict
	}
	chat.Version++
	chat.UpdatedAt = time.Now().UTC()
	s.chats[chat.ID] = chat.Clone()
	return nil
}

// Delete removes a chat
func (s *ChatStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return apperrors.ErrChatNotFound
	}
	delete(s.chats, id)
	return nil
}

// FindByMembers returns the chat of chatType whose member set equals memberIDs
func (s *ChatStore) FindByMembers(_ context.Context, chatType models.ChatType, memberIDs []string) (*models.Chat, error) {
	want := append([]string(nil), memberIDs...)
	sort.Strings(want)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, chat := range s.chats {
		if chat.ChatType != chatType || len(chat.Users) != len(want) {
			continue
		}
		if equalStrings(chat.MemberIDs(), want) {
			return chat.Clone(), nil
		}
	}
	return nil, nil
}

// ListByMember returns userID's chats, newest activity first
func (s *ChatStore) ListByMember(_ context.Context, userID string, includeArchived bool) ([]*models.Chat, error) {
	return s.filter(func(c *models.Chat) bool {
		return c.HasMember(userID) && (includeArchived || !c.IsArchived)
	}), nil
}

// SearchByName matches chatName case-insensitively
func (s *ChatStore) SearchByName(_ context.Context, userID, query string) ([]*models.Chat, error) {
	q := strings.ToLower(query)
	return s.filter(func(c *models.Chat) bool {
		return c.HasMember(userID) && !c.IsArchived && strings.Contains(strings.ToLower(c.ChatName), q)
	}), nil
}

// Count returns the number of stored chats
func (s *ChatStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

func (s *ChatStore) filter(keep func(*models.Chat) bool) []*models.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Chat{}
	for _, chat := range s.chats {
		if keep(chat) {
			out = append(out, chat.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
