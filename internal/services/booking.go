package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventbooking/internal/domain"
	"eventbooking/internal/validation"
)

// Messages reported in BookingResult.
const (
	msgBookingCreated = "Successfully booked! Check your email for confirmation."
	msgInvalidEmail   = "Please provide a valid email address"
	msgEventNotFound  = "Event not found"
	msgAlreadyBooked  = "You have already booked this event"
)

type bookingService struct {
	logger         *slog.Logger
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	emailService   domain.EmailService
	validator      *validation.Validator
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService. emailService may be nil to skip confirmations.
func NewBookingService(
	logger *slog.Logger,
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	emailService domain.EmailService,
	validator *validation.Validator,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		logger:         logger,
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		emailService:   emailService,
		validator:      validator,
		contextTimeout: timeout,
	}
}

// CreateBooking books the event identified by slug for email. Domain outcomes come back
// as a BookingResult; only infrastructure failures are returned as errors.
func (s *bookingService) CreateBooking(ctx context.Context, slug, email string) (*domain.BookingResult, error) {
	if err := s.validator.Email(email); err != nil {
		return failure(domain.BookingInvalidEmail, msgInvalidEmail), nil
	}
	if !domain.ValidSlug(slug) {
		return failure(domain.BookingEventNotFound, msgEventNotFound), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return failure(domain.BookingEventNotFound, msgEventNotFound), nil
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}

	now := time.Now().UTC()
	booking := domain.NewBooking(event.ID, email, now, now)
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyBooked):
			return failure(domain.BookingAlreadyBooked, msgAlreadyBooked), nil
		case errors.Is(err, domain.ErrNotFound):
			return failure(domain.BookingEventNotFound, msgEventNotFound), nil
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.sendConfirmation(ctx, event, booking)

	return &domain.BookingResult{
		Success: true,
		Outcome: domain.BookingCreated,
		Message: msgBookingCreated,
		Booking: booking,
	}, nil
}

// sendConfirmation emails the attendee. A delivery failure does not undo the booking.
func (s *bookingService) sendConfirmation(ctx context.Context, event *domain.Event, booking *domain.Booking) {
	if s.emailService == nil {
		return
	}
	err := s.emailService.SendBookingConfirmation(ctx, &domain.BookingConfirmationEmailData{
		Email:     booking.Email,
		EventSlug: event.Slug,
		Title:     event.Title,
		Date:      event.Date,
		Time:      event.Time,
		Venue:     event.Venue,
		Location:  event.Location,
		Mode:      string(event.Mode),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "booking confirmation not sent", "event", event.Slug, "booking_id", booking.ID, "err", err)
	}
}

func (s *bookingService) GetBookingsCount(ctx context.Context, slug string) (int, error) {
	if !domain.ValidSlug(slug) {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get event by slug: %w", err)
	}

	count, err := s.bookingRepo.CountByEventID(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func failure(outcome domain.BookingOutcome, message string) *domain.BookingResult {
	return &domain.BookingResult{Success: false, Outcome: outcome, Message: message}
}
