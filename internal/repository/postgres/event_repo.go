package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"navexpo/internal/domain"
)

const eventColumns = `id, title, description, date, start_time, location, organizer, organizer_id, capacity, attendee_count, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Organizer, &e.OrganizerID, &e.Capacity, &e.AttendeeCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, start_time, location, organizer, organizer_id, capacity, attendee_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := executor(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Organizer, e.OrganizerID,
		e.Capacity, e.AttendeeCount, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(executor(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	conn := executor(ctx, r.DB)
	var total int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY date ASC, created_at ASC
		LIMIT $1 OFFSET $2
	`
	events, err := r.queryEvents(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`
	return r.queryEvents(ctx, query, organizerID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *eventRepository) Search(ctx context.Context, term string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE title ILIKE $1 OR description ILIKE $1 OR location ILIKE $1
		ORDER BY date ASC
	`
	pattern := "%" + likeEscaper.Replace(term) + "%"
	return r.queryEvents(ctx, query, pattern)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := executor(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, mapError(err)
		}
		events = append(events, e)
	}
	return events, mapError(rows.Err())
}

func (r *eventRepository) Replace(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, start_time = $4, location = $5, capacity = $6, updated_at = $7
		WHERE id = $8
		RETURNING attendee_count
	`
	err := executor(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Capacity, e.UpdatedAt, e.ID,
	).Scan(&e.AttendeeCount)
	return mapError(err)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := executor(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) TryIncrementIfBelowCapacity(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE events
		SET attendee_count = attendee_count + 1, updated_at = NOW()
		WHERE id = $1 AND attendee_count < capacity
		RETURNING attendee_count
	`
	var count int
	err := executor(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, r.guardFailure(ctx, id, domain.ErrEventFull)
	}
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func (r *eventRepository) DecrementFloorZero(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE events
		SET attendee_count = attendee_count - 1, updated_at = NOW()
		WHERE id = $1 AND attendee_count > 0
		RETURNING attendee_count
	`
	var count int
	err := executor(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, r.guardFailure(ctx, id, domain.ErrCounterUnderflow)
	}
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func (r *eventRepository) CounterSnapshot(ctx context.Context, id string) (int, int, error) {
	// A single statement sees one snapshot, so in-flight admissions are either fully visible or not at all.
	query := `
		SELECT e.attendee_count, (SELECT COUNT(*) FROM attendees a WHERE a.event_id = e.id)
		FROM events e
		WHERE e.id = $1
	`
	var counter, roster int
	if err := executor(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&counter, &roster); err != nil {
		return 0, 0, mapError(err)
	}
	return counter, roster, nil
}

// guardFailure tells a missing event apart from a failed counter guard.
func (r *eventRepository) guardFailure(ctx context.Context, id string, guardErr error) error {
	var exists bool
	err := executor(ctx, r.DB).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return mapError(err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return guardErr
}
