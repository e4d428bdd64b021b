package dto

import "time"

// LocationRequest is a longitude/latitude pair
type LocationRequest struct {
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
}

// CreateEventRequest creates an event together with its group chat
type CreateEventRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description,omitempty" binding:"max=2000"`
	Location    LocationRequest `json:"location"`
	DateTime    time.Time       `json:"dateTime" binding:"required"`
	CreatorID   string          `json:"creatorId" binding:"required"`
	Category    string          `json:"category,omitempty"`
}

// UpdateEventRequest changes mutable event fields. UserID is the acting user
// when no verified token identifies one.
type UpdateEventRequest struct {
	UserID      string           `json:"userId,omitempty"`
	Name        *string          `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=2000"`
	Location    *LocationRequest `json:"location,omitempty"`
	DateTime    *time.Time       `json:"dateTime,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// EventMembershipRequest is the body of join and leave
type EventMembershipRequest struct {
	EventID string `json:"eventId" binding:"required,objectid"`
	UserID  string `json:"userId" binding:"required"`
}

// NearbyQuery is the query string of the nearby searches
type NearbyQuery struct {
	Longitude *float64 `form:"longitude" binding:"required,gte=-180,lte=180"`
	Latitude  *float64 `form:"latitude" binding:"required,gte=-90,lte=90"`
	Radius    float64  `form:"radius" binding:"omitempty,gt=0,lte=500"`
}
