package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbooking/internal/domain"
	"eventbooking/internal/validation"
)

type eventService struct {
	eventRepo      domain.EventRepository
	validator      *validation.Validator
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, validator *validation.Validator, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		validator:      validator,
		contextTimeout: timeout,
	}
}

// CreateEvent validates the input against the CreateEventInput schema and persists the event.
// A missing slug is derived from the title.
func (s *eventService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if in.Slug == "" && domain.Slugify(in.Title) == "" {
		return nil, domain.NewValidationError("title", domain.CodeInvalidSlugFormat,
			"Title must contain at least one letter or digit to derive a slug")
	}

	now := time.Now().UTC()
	event := domain.NewEvent(in, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if !domain.ValidSlug(slug) {
		return nil, domain.NewValidationError("slug", domain.CodeInvalidSlugFormat,
			"Invalid slug format. Slug must contain only lowercase letters, numbers, and hyphens")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// GetSimilarEventsBySlug returns other events sharing at least one tag with the event.
// An unknown or malformed slug yields an empty list.
func (s *eventService) GetSimilarEventsBySlug(ctx context.Context, slug string) ([]*domain.Event, error) {
	if !domain.ValidSlug(slug) {
		return []*domain.Event{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*domain.Event{}, nil
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}

	similar, err := s.eventRepo.ListSharingTags(ctx, event.ID, event.Tags)
	if err != nil {
		return nil, fmt.Errorf("list similar events: %w", err)
	}
	if similar == nil {
		similar = []*domain.Event{}
	}
	return similar, nil
}
