// Package dto converts domain records into their JSON wire shape: ids as strings,
// timestamps as RFC 3339 UTC strings.
package dto

import (
	"time"

	"eventbooking/internal/domain"
)

// EventResponse is the wire shape of an event.
type EventResponse struct {
	ID          string   `json:"id" example:"3f1c6a52-7c1e-4b8a-9d6e-0b9b1f1f2a10"`
	Slug        string   `json:"slug" example:"go-conference-2025"`
	Title       string   `json:"title" example:"Go Conference 2025"`
	Description string   `json:"description"`
	Overview    string   `json:"overview"`
	Image       string   `json:"image"`
	Venue       string   `json:"venue"`
	Location    string   `json:"location"`
	Date        string   `json:"date" example:"2025-11-20"`
	Time        string   `json:"time" example:"09:00"`
	Mode        string   `json:"mode" example:"hybrid"`
	Audience    string   `json:"audience"`
	Organizer   string   `json:"organizer"`
	Tags        []string `json:"tags"`
	Agenda      []string `json:"agenda"`
	CreatedAt   string   `json:"created_at" example:"2025-01-02T15:04:05Z"`
	UpdatedAt   string   `json:"updated_at" example:"2025-01-02T15:04:05Z"`
}

// BookingResponse is the wire shape of a booking.
type BookingResponse struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Email     string `json:"email" example:"ada@example.com"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NewEventResponse converts an event for transport.
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		Slug:        e.Slug,
		Title:       e.Title,
		Description: e.Description,
		Overview:    e.Overview,
		Image:       e.Image,
		Venue:       e.Venue,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Mode:        string(e.Mode),
		Audience:    e.Audience,
		Organizer:   e.Organizer,
		Tags:        nonNil(e.Tags),
		Agenda:      nonNil(e.Agenda),
		CreatedAt:   timestamp(e.CreatedAt),
		UpdatedAt:   timestamp(e.UpdatedAt),
	}
}

// NewEventResponses converts events element-wise. The result is never nil.
func NewEventResponses(events []*domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e))
	}
	return out
}

// NewBookingResponse converts a booking for transport.
func NewBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID.String(),
		EventID:   b.EventID.String(),
		Email:     b.Email,
		CreatedAt: timestamp(b.CreatedAt),
		UpdatedAt: timestamp(b.UpdatedAt),
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
