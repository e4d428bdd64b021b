package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventCategory is the closed set of event categories
type EventCategory string

const (
	CategorySports     EventCategory = "sports"
	CategoryMusic      EventCategory = "music"
	CategoryFood       EventCategory = "food"
	CategorySocial     EventCategory = "social"
	CategoryEducation  EventCategory = "education"
	CategoryTechnology EventCategory = "technology"
	CategoryOutdoors   EventCategory = "outdoors"
	CategoryArts       EventCategory = "arts"
	CategoryOther      EventCategory = "other"
)

var eventCategories = map[EventCategory]struct{}{
	CategorySports: {}, CategoryMusic: {}, CategoryFood: {}, CategorySocial: {}, CategoryEducation: {},
	CategoryTechnology: {}, CategoryOutdoors: {}, CategoryArts: {}, CategoryOther: {},
}

// IsValid reports whether c is one of the known categories
func (c EventCategory) IsValid() bool {
	_, ok := eventCategories[c]
	return ok
}

// Attendee is a user who joined an event
type Attendee struct {
	UserID   string    `bson:"userId" json:"userId"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
}

// Event is a dated, located gathering with an optional linked group chat
type Event struct {
	ID          primitive.ObjectID  `bson:"_id" json:"_id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Creator     string              `bson:"creator" json:"creator"`
	Location    GeoPoint            `bson:"location" json:"location"`
	DateTime    time.Time           `bson:"dateTime" json:"dateTime"`
	Category    EventCategory       `bson:"category" json:"category"`
	Attendees   []Attendee          `bson:"attendees" json:"attendees"`
	ChatID      *primitive.ObjectID `bson:"chatId,omitempty" json:"chatId,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
	Version     int64               `bson:"version" json:"-"`
}

// IsAttending reports whether userID is in the attendee list
func (e *Event) IsAttending(userID string) bool {
	for _, a := range e.Attendees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// AddAttendee appends userID; callers check IsAttending first.
func (e *Event) AddAttendee(userID string, now time.Time) {
	e.Attendees = append(e.Attendees, Attendee{UserID: userID, JoinedAt: now})
}

// RemoveAttendee drops every entry for userID and reports whether any existed
func (e *Event) RemoveAttendee(userID string) bool {
	kept := e.Attendees[:0]
	removed := false
	for _, a := range e.Attendees {
		if a.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	e.Attendees = kept
	return removed
}

// Clone returns a deep copy
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	out := *e
	out.Attendees = make([]Attendee, len(e.Attendees))
	copy(out.Attendees, e.Attendees)
	out.Location.Coordinates = append([]float64(nil), e.Location.Coordinates...)
	if e.ChatID != nil {
		id := *e.ChatID
		out.ChatID = &id
	}
	return &out
}
