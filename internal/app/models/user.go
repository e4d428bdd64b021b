package models

import (
	"time"
)

// User is a member of the directory. Users live in PostgreSQL; chats and
// events refer to them by the string form of ID.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Longitude       float64   `json:"longitude"`
	Latitude        float64   `json:"latitude"`
	Hobbies         []string  `json:"hobbies"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
