package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventbooking/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// foreignKeyViolation is the Postgres SQLSTATE for a foreign key violation.
const foreignKeyViolation = "23503"

const eventColumns = `id, slug, title, description, overview, image, venue, location, date, time, mode, audience, organizer, tags, agenda, created_at, updated_at`

type eventRepository struct {
	conn Connector
}

func NewEventRepository(conn Connector) domain.EventRepository {
	return &eventRepository{
		conn: conn,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	db, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (slug, title, description, overview, image, venue, location, date, time, mode, audience, organizer, tags, agenda, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query,
		e.Slug, e.Title, e.Description, e.Overview, e.Image, e.Venue, e.Location,
		e.Date, e.Time, string(e.Mode), e.Audience, e.Organizer,
		pq.Array(e.Tags), pq.Array(e.Agenda), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == uniqueViolation {
			return domain.ErrDuplicateSlug
		}
		return storageErr("insert event", err)
	}
	return nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	db, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("select event by slug", err)
	}
	return e, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	db, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC, id DESC`
	return r.list(ctx, db, "list events", query)
}

func (r *eventRepository) ListSharingTags(ctx context.Context, excludeID uuid.UUID, tags []string) ([]*domain.Event, error) {
	if len(tags) == 0 {
		return []*domain.Event{}, nil
	}
	db, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id <> $1 AND tags && $2
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, db, "list similar events", query, excludeID, pq.Array(tags))
}

func (r *eventRepository) list(ctx context.Context, db *sql.DB, op, query string, args ...any) ([]*domain.Event, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var mode string
	err := row.Scan(
		&e.ID, &e.Slug, &e.Title, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &mode, &e.Audience, &e.Organizer,
		pq.Array(&e.Tags), pq.Array(&e.Agenda), &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Mode = domain.Mode(mode)
	return e, nil
}
