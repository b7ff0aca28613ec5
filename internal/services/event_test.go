package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
	"eventbooking/internal/validation"
)

func validInput() domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:       "Go Systems Day",
		Description: "A day about Go",
		Overview:    "Talks and workshops",
		Venue:       "Hall A",
		Location:    "Berlin",
		Date:        "2025-11-20",
		Time:        "09:00",
		Mode:        "online",
		Audience:    "Developers",
		Organizer:   "Gophers",
		Image:       "https://cdn.example.com/DevEvent/x.png",
		Tags:        []string{"go", "systems"},
		Agenda:      []string{"9am kickoff"},
	}
}

func newTestEventService(repo domain.EventRepository) domain.EventService {
	return NewEventService(repo, validation.New(), 5*time.Second)
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     func() domain.CreateEventInput
		repoErr   error
		wantSlug  string
		wantField string
		wantCode  string
		wantErr   error
	}{
		{
			name:     "derives slug from title",
			input:    validInput,
			wantSlug: "go-systems-day",
		},
		{
			name: "explicit slug",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Slug = "gsd-2025"
				return in
			},
			wantSlug: "gsd-2025",
		},
		{
			name: "trims fields before validating",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Title = "  Go Systems Day  "
				in.Tags = []string{" go ", "systems"}
				return in
			},
			wantSlug: "go-systems-day",
		},
		{
			name: "missing title names the field",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Title = "   "
				return in
			},
			wantField: "title",
			wantCode:  domain.CodeMissingField,
		},
		{
			name: "first missing field is reported",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Venue = ""
				in.Organizer = ""
				return in
			},
			wantField: "venue",
			wantCode:  domain.CodeMissingField,
		},
		{
			name: "invalid mode",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Mode = "virtual"
				return in
			},
			wantField: "mode",
			wantCode:  domain.CodeInvalidMode,
		},
		{
			name: "empty tags",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Tags = []string{}
				return in
			},
			wantField: "tags",
			wantCode:  domain.CodeInvalidTags,
		},
		{
			name: "nil agenda",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Agenda = nil
				return in
			},
			wantField: "agenda",
			wantCode:  domain.CodeInvalidAgenda,
		},
		{
			name: "blank tag element",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Tags = []string{"go", " "}
				return in
			},
			wantField: "tags",
			wantCode:  domain.CodeInvalidTags,
		},
		{
			name: "malformed explicit slug",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Slug = "Bad Slug"
				return in
			},
			wantField: "slug",
			wantCode:  domain.CodeInvalidSlugFormat,
		},
		{
			name: "title without slug characters",
			input: func() domain.CreateEventInput {
				in := validInput()
				in.Title = "!!!"
				return in
			},
			wantField: "title",
			wantCode:  domain.CodeInvalidSlugFormat,
		},
		{
			name:    "duplicate slug",
			input:   validInput,
			repoErr: domain.ErrDuplicateSlug,
			wantErr: domain.ErrDuplicateSlug,
		},
		{
			name:    "storage error",
			input:   validInput,
			repoErr: errDB,
			wantErr: domain.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			repo.err = tt.repoErr
			svc := newTestEventService(repo)

			got, err := svc.CreateEvent(ctx, tt.input())
			if tt.wantCode != "" {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Equal(t, tt.wantCode, verr.Code)
				assert.Empty(t, repo.bySlug, "nothing written")
				return
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, got.Slug)
			assert.NotZero(t, got.ID)
			assert.Equal(t, "Go Systems Day", got.Title)
			assert.Equal(t, []string{"go", "systems"}, got.Tags)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestEventService_GetEventBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid slug does not query storage", func(t *testing.T) {
		for _, slug := range []string{"", "Upper", "with space", "under_score", "slash/es", "ünï"} {
			repo := newFakeEventRepo()
			svc := newTestEventService(repo)

			_, err := svc.GetEventBySlug(ctx, slug)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr, slug)
			assert.Equal(t, domain.CodeInvalidSlugFormat, verr.Code)
			assert.Zero(t, repo.lookups, slug)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestEventService(newFakeEventRepo())
		_, err := svc.GetEventBySlug(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.err = errDB
		svc := newTestEventService(repo)
		_, err := svc.GetEventBySlug(ctx, "any")
		require.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestEventService_GetAllEvents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of order; listing must come back newest first.
	for i, offset := range []int{2, 0, 3, 1} {
		e := domain.NewEvent(validInput(), base.Add(time.Duration(offset)*time.Hour), base)
		e.Slug = []string{"c", "a", "d", "b"}[i]
		require.NoError(t, repo.Create(ctx, e))
	}

	got, err := svc.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].CreatedAt.After(got[i].CreatedAt))
	}
	assert.Equal(t, "d", got[0].Slug)

	repo.err = errDB
	_, err = svc.GetAllEvents(ctx)
	require.ErrorIs(t, err, domain.ErrStorage)
}

func TestEventService_GetSimilarEventsBySlug(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)

	seed := func(slug string, tags ...string) {
		in := validInput()
		in.Slug = slug
		in.Tags = tags
		_, err := svc.CreateEvent(ctx, in)
		require.NoError(t, err)
	}
	seed("base", "go", "systems")
	seed("shares-go", "go", "web")
	seed("shares-systems", "systems")
	seed("unrelated", "rust")

	got, err := svc.GetSimilarEventsBySlug(ctx, "base")
	require.NoError(t, err)
	slugs := make([]string, 0, len(got))
	for _, e := range got {
		slugs = append(slugs, e.Slug)
	}
	assert.ElementsMatch(t, []string{"shares-go", "shares-systems"}, slugs)
	assert.NotContains(t, slugs, "base")

	got, err = svc.GetSimilarEventsBySlug(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = svc.GetSimilarEventsBySlug(ctx, "Not A Slug")
	require.NoError(t, err)
	assert.Empty(t, got)

	repo.err = errDB
	_, err = svc.GetSimilarEventsBySlug(ctx, "base")
	require.ErrorIs(t, err, domain.ErrStorage)
}
