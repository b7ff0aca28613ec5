package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmailPattern is the accepted booking email format.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email matches EmailPattern.
func ValidEmail(email string) bool {
	return EmailPattern.MatchString(email)
}

// Booking is one email's reservation for an event.
type Booking struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBooking returns a new Booking with a normalized email. ID is set by the repository on create.
func NewBooking(eventID uuid.UUID, email string, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		EventID:   eventID,
		Email:     NormalizeEmail(email),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// BookingOutcome classifies the result of a booking attempt.
type BookingOutcome string

const (
	BookingCreated       BookingOutcome = "created"
	BookingInvalidEmail  BookingOutcome = "invalid_email"
	BookingEventNotFound BookingOutcome = "event_not_found"
	BookingAlreadyBooked BookingOutcome = "already_booked"
)

// BookingResult is returned by CreateBooking for every domain outcome.
// Infrastructure failures are returned as errors instead.
type BookingResult struct {
	Success bool
	Outcome BookingOutcome
	Message string
	Booking *Booking
}

// BookingRepository defines storage operations for bookings.
type BookingRepository interface {
	// Create inserts the booking. It returns ErrAlreadyBooked when (event, email) already exists.
	Create(ctx context.Context, booking *Booking) error
	CountByEventID(ctx context.Context, eventID uuid.UUID) (int, error)
}

// BookingService defines booking operations addressed by event slug.
type BookingService interface {
	CreateBooking(ctx context.Context, slug, email string) (*BookingResult, error)
	GetBookingsCount(ctx context.Context, slug string) (int, error)
}
