package postgres

import (
	"context"
	"database/sql"

	"navexpo/internal/domain"
)

const attendeeColumns = `id, event_id, name, email, phone, dietary_restrictions, special_requests, registered_at`

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func scanAttendee(row rowScanner) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	var dietary, requests sql.NullString
	if err := row.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.Phone, &dietary, &requests, &a.RegisteredAt); err != nil {
		return nil, err
	}
	if dietary.Valid {
		a.DietaryRestrictions = &dietary.String
	}
	if requests.Valid {
		a.SpecialRequests = &requests.String
	}
	return a, nil
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	a.Email = domain.NormalizeEmail(a.Email)
	query := `
		INSERT INTO attendees (event_id, name, email, phone, dietary_restrictions, special_requests, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := executor(ctx, r.DB).QueryRowContext(ctx, query,
		a.EventID, a.Name, a.Email, a.Phone, nullString(a.DietaryRestrictions), nullString(a.SpecialRequests), a.RegisteredAt,
	).Scan(&a.ID)
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicateRegistration
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	}
	return mapError(err)
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE id = $1
	`
	a, err := scanAttendee(executor(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *attendeeRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE event_id = $1 AND email = $2
	`
	a, err := scanAttendee(executor(ctx, r.DB).QueryRowContext(ctx, query, eventID, domain.NormalizeEmail(email)))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *attendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`
	rows, err := executor(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, mapError(err)
		}
		attendees = append(attendees, a)
	}
	return attendees, mapError(rows.Err())
}

func (r *attendeeRepository) Delete(ctx context.Context, eventID, attendeeID string) error {
	query := `DELETE FROM attendees WHERE id = $1 AND event_id = $2`
	result, err := executor(ctx, r.DB).ExecContext(ctx, query, attendeeID, eventID)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attendeeRepository) DeleteByEvent(ctx context.Context, eventID string) (int, error) {
	result, err := executor(ctx, r.DB).ExecContext(ctx, `DELETE FROM attendees WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, mapError(err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
