package dto

import "time"

// SignUpRequest registers a user in the directory
type SignUpRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8,max=72"`
	Hobbies  []string `json:"hobbies,omitempty" binding:"omitempty,max=20,dive,min=1,max=50,hobby"`
}

// UpdateHobbiesRequest replaces the hobby tags
type UpdateHobbiesRequest struct {
	Hobbies []string `json:"hobbies" binding:"max=20,dive,min=1,max=50,hobby"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Location        *Location `json:"location,omitempty"`
	Hobbies         []string  `json:"hobbies"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Location is a longitude/latitude pair in responses
type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}
