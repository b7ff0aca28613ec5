package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"eventbooking/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu      sync.Mutex
	bySlug  map[string]*domain.Event
	err     error // if set, every method returns this error
	lookups int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{bySlug: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.bySlug[e.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	e.ID = uuid.New()
	f.bySlug[e.Slug] = e
	return nil
}

func (f *fakeEventRepo) GetBySlug(_ context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.bySlug[slug]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListAll(_ context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.bySlug))
	for _, e := range f.bySlug {
		out = append(out, e)
	}
	// Sort by CreatedAt DESC to match repo
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeEventRepo) ListSharingTags(_ context.Context, excludeID uuid.UUID, tags []string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.bySlug {
		if e.ID == excludeID {
			continue
		}
		if slices.ContainsFunc(e.Tags, func(t string) bool { return slices.Contains(tags, t) }) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeBookingRepo is an in-memory BookingRepository enforcing (event, email) uniqueness.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	err      error
	inserts  int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := b.EventID.String() + ":" + b.Email
	if _, ok := f.bookings[key]; ok {
		return domain.ErrAlreadyBooked
	}
	b.ID = uuid.New()
	f.bookings[key] = b
	f.inserts++
	return nil
}

func (f *fakeBookingRepo) CountByEventID(_ context.Context, eventID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, b := range f.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

// fakeEmailService records confirmations.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(_ context.Context, data *domain.BookingConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakeMailer records sent messages.
type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return nil
}

// fakeRenderer returns canned content or an error.
type fakeRenderer struct {
	err  error
	name string
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.name = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}

var errDB = fmt.Errorf("query: %w: %w", domain.ErrStorage, errors.New("connection reset"))
