package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatType distinguishes two-party conversations from named groups
type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

// IsValid reports whether t is a known chat type
func (t ChatType) IsValid() bool {
	return t == ChatTypeDirect || t == ChatTypeGroup
}

// MemberRole is a chat member's role
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

// IsValid reports whether r is a known role
func (r MemberRole) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// ChatMember is one entry of a chat's ordered member list
type ChatMember struct {
	UserID   string     `bson:"userId" json:"userId"`
	Role     MemberRole `bson:"role" json:"role"`
	JoinedAt time.Time  `bson:"joinedAt" json:"joinedAt"`
}

// Attachment is a reference to a file uploaded elsewhere
type Attachment struct {
	URL      string `bson:"url" json:"url"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	MimeType string `bson:"mimeType,omitempty" json:"mimeType,omitempty"`
}

// ReadReceipt records when a user saw a message
type ReadReceipt struct {
	UserID string    `bson:"user" json:"user"`
	ReadAt time.Time `bson:"readAt" json:"readAt"`
}

// Message is embedded in a Chat
type Message struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Sender      string             `bson:"sender" json:"sender"`
	Text        string             `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Attachments []Attachment       `bson:"attachments" json:"attachments"`
	ReadBy      []ReadReceipt      `bson:"readBy" json:"readBy"`
}

// IsReadBy reports whether userID has a read receipt on the message
func (m *Message) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Chat is a direct or group conversation with its embedded message history.
// Version is the optimistic concurrency token checked on every save.
type Chat struct {
	ID           primitive.ObjectID  `bson:"_id" json:"_id"`
	ChatType     ChatType            `bson:"chatType" json:"chatType"`
	ChatName     string              `bson:"chatName,omitempty" json:"chatName,omitempty"`
	Users        []ChatMember        `bson:"users" json:"users"`
	Messages     []Message           `bson:"messages" json:"messages"`
	LastActivity time.Time           `bson:"lastActivity" json:"lastActivity"`
	IsArchived   bool                `bson:"isArchived" json:"isArchived"`
	EventID      *primitive.ObjectID `bson:"eventId,omitempty" json:"eventId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
	Version      int64               `bson:"version" json:"-"`
}

// NewChat builds an unsaved chat whose members all start with role member.
func NewChat(chatType ChatType, name string, memberIDs []string, now time.Time) *Chat {
	chat := &Chat{
		ID:           primitive.NewObjectID(),
		ChatType:     chatType,
		Users:        make([]ChatMember, 0, len(memberIDs)),
		Messages:     []Message{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if chatType == ChatTypeGroup {
		chat.ChatName = name
	}
	for _, id := range memberIDs {
		chat.AddMember(id, RoleMember, now)
	}
	return chat
}

// HasMember reports whether userID appears in the member list
func (c *Chat) HasMember(userID string) bool {
	return c.memberIndex(userID) >= 0
}

func (c *Chat) memberIndex(userID string) int {
	for i, m := range c.Users {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

// AddMember appends userID unless it is already present. It returns false on
// the no-op path.
func (c *Chat) AddMember(userID string, role MemberRole, now time.Time) bool {
	if c.HasMember(userID) {
		return false
	}
	c.Users = append(c.Users, ChatMember{UserID: userID, Role: role, JoinedAt: now})
	return true
}

// RemoveMember drops every entry for userID and returns how many were removed.
func (c *Chat) RemoveMember(userID string) int {
	kept := c.Users[:0]
	removed := 0
	for _, m := range c.Users {
		if m.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	c.Users = kept
	return removed
}

// SetRole updates the role of an existing member. It returns false when
// userID is not a member.
func (c *Chat) SetRole(userID string, role MemberRole) bool {
	i := c.memberIndex(userID)
	if i < 0 {
		return false
	}
	c.Users[i].Role = role
	return true
}

// MemberIDs returns the member ids sorted ascending
func (c *Chat) MemberIDs() []string {
	ids := make([]string, 0, len(c.Users))
	for _, m := range c.Users {
		ids = append(ids, m.UserID)
	}
	sort.Strings(ids)
	return ids
}

// AppendMessage pushes msg and moves lastActivity to its timestamp
func (c *Chat) AppendMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.LastActivity = msg.Timestamp
}

// FindMessage returns a pointer into the message list, or nil
func (c *Chat) FindMessage(id primitive.ObjectID) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// Clone returns a deep copy, so that callers can mutate without aliasing
// a stored document.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	out := *c
	out.Users = make([]ChatMember, len(c.Users))
	copy(out.Users, c.Users)
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Attachments = make([]Attachment, len(c.Messages[i].Attachments))
		copy(m.Attachments, c.Messages[i].Attachments)
		m.ReadBy = make([]ReadReceipt, len(c.Messages[i].ReadBy))
		copy(m.ReadBy, c.Messages[i].ReadBy)
		out.Messages[i] = m
	}
	if c.EventID != nil {
		id := *c.EventID
		out.EventID = &id
	}
	return &out
}
