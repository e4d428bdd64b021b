package dto

import "github.com/Nand2004/GeoConnect-sub000/internal/app/models"

// ChatActionResponse is returned by membership and read-receipt mutations
type ChatActionResponse struct {
	Message string       `json:"message" example:"User added to group chat"`
	Chat    *models.Chat `json:"chat"`
}

// EventActionResponse is returned by join and leave
type EventActionResponse struct {
	Message string        `json:"message" example:"Joined event"`
	Event   *models.Event `json:"event"`
}

// EventWithChatResponse is returned when an event and its chat are created together
type EventWithChatResponse struct {
	Event *models.Event `json:"event"`
	Chat  *models.Chat  `json:"chat"`
}

// MessageResponse carries a bare confirmation
type MessageResponse struct {
	Message string `json:"message" example:"Event deleted"`
}
