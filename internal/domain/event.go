package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode is how an event is attended.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeOnline, ModeOffline, ModeHybrid:
		return true
	}
	return false
}

// SlugPattern is the accepted format for event slugs.
var SlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// ValidSlug reports whether s is a well-formed slug.
func ValidSlug(s string) bool {
	return SlugPattern.MatchString(s)
}

// Slugify derives a slug from a title: lowercase, runs of other characters become one hyphen.
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(s, "-")
}

// Event is a listed event. Events are immutable once created.
type Event struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Description string
	Overview    string
	Image       string
	Venue       string
	Location    string
	Date        string
	Time        string
	Mode        Mode
	Audience    string
	Organizer   string
	Tags        []string
	Agenda      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateEventInput is the schema for event creation. The validate tags are the
// single source of truth for required fields and per-field constraints.
type CreateEventInput struct {
	Title       string   `form:"title" json:"title" validate:"nonblank"`
	Description string   `form:"description" json:"description" validate:"nonblank"`
	Overview    string   `form:"overview" json:"overview" validate:"nonblank"`
	Venue       string   `form:"venue" json:"venue" validate:"nonblank"`
	Location    string   `form:"location" json:"location" validate:"nonblank"`
	Date        string   `form:"date" json:"date" validate:"nonblank"`
	Time        string   `form:"time" json:"time" validate:"nonblank"`
	Mode        string   `form:"mode" json:"mode" validate:"nonblank,oneof=online offline hybrid"`
	Audience    string   `form:"audience" json:"audience" validate:"nonblank"`
	Organizer   string   `form:"organizer" json:"organizer" validate:"nonblank"`
	Slug        string   `form:"slug" json:"slug" validate:"omitempty,slug"`
	Image       string   `form:"-" json:"image" validate:"nonblank"`
	Tags        []string `form:"-" json:"tags" validate:"min=1,dive,nonblank"`
	Agenda      []string `form:"-" json:"agenda" validate:"min=1,dive,nonblank"`
}

// Normalize trims every text field in place.
func (in *CreateEventInput) Normalize() {
	for _, p := range []*string{
		&in.Title, &in.Description, &in.Overview, &in.Venue, &in.Location,
		&in.Date, &in.Time, &in.Mode, &in.Audience, &in.Organizer, &in.Slug, &in.Image,
	} {
		*p = strings.TrimSpace(*p)
	}
	in.Tags = trimAll(in.Tags)
	in.Agenda = trimAll(in.Agenda)
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// NewEvent builds an Event from validated input. ID is set by the repository on create.
func NewEvent(in CreateEventInput, createdAt, updatedAt time.Time) *Event {
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Title)
	}
	return &Event{
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Overview:    in.Overview,
		Image:       in.Image,
		Venue:       in.Venue,
		Location:    in.Location,
		Date:        in.Date,
		Time:        in.Time,
		Mode:        Mode(in.Mode),
		Audience:    in.Audience,
		Organizer:   in.Organizer,
		Tags:        in.Tags,
		Agenda:      in.Agenda,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListAll(ctx context.Context) ([]*Event, error)
	// ListSharingTags returns events other than excludeID that have at least one of tags.
	ListSharingTags(ctx context.Context, excludeID uuid.UUID, tags []string) ([]*Event, error)
}

// EventService defines event-facing operations.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	GetAllEvents(ctx context.Context) ([]*Event, error)
	GetSimilarEventsBySlug(ctx context.Context, slug string) ([]*Event, error)
}
