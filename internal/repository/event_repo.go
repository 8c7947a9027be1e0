package repository

import (
	"context"
	"database/sql"

	"github.com/community-cert-dashboard/internal/database"
	"github.com/community-cert-dashboard/internal/models"
)

// eventRepo is the concrete implementation of EventRepository
type eventRepo struct {
	db *database.DB
}

// NewEventRepo creates a new event repository
func NewEventRepo(db *database.DB) EventRepository {
	return &eventRepo{db: db}
}

// Create inserts a new event
func (r *eventRepo) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, name, date, description, type, category, community_code, link, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Date, event.Description, event.Type,
		event.Category, event.CommunityCode, event.Link, event.CreatedBy,
	)
	return err
}

// Update replaces an event's fields by id
func (r *eventRepo) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events SET
			name = $2, date = $3, description = $4, type = $5,
			category = $6, community_code = $7, link = $8
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Date, event.Description, event.Type,
		event.Category, event.CommunityCode, event.Link,
	)
	return err
}

// Delete removes an event by id
func (r *eventRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	return err
}

// GetByID retrieves an event by id
func (r *eventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, name, date, description, type, category, community_code, link, created_by
		FROM events WHERE id = $1
	`
	var e models.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Date, &e.Description, &e.Type,
		&e.Category, &e.CommunityCode, &e.Link, &e.CreatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetAll returns all events ordered by date
func (r *eventRepo) GetAll(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT id, name, date, description, type, category, community_code, link, created_by
		FROM events ORDER BY date
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(
			&e.ID, &e.Name, &e.Date, &e.Description, &e.Type,
			&e.Category, &e.CommunityCode, &e.Link, &e.CreatedBy,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
