package repository

import (
	"context"
	"time"

	"github.com/community-cert-dashboard/internal/database"
	"github.com/community-cert-dashboard/internal/models"
)

// developerRepo is the concrete implementation of DeveloperRepository
type developerRepo struct {
	db *database.DB
}

// NewDeveloperRepo creates a new developer repository
func NewDeveloperRepo(db *database.DB) DeveloperRepository {
	return &developerRepo{db: db}
}

// BatchUpsert writes a chunk of roster records in one transaction, keyed by
// developer id: re-uploading the same identifier overwrites the record
// wholesale. Callers chunk the roster and await chunks sequentially; a
// failure mid-sequence leaves earlier chunks committed.
func (r *developerRepo) BatchUpsert(ctx context.Context, records []models.DeveloperRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO developers (
			developer_id, first_name, last_name, community_code, country,
			certification_progress, enrollment_date, completed_at,
			subscribed, accepted_membership, certified, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (developer_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			community_code = EXCLUDED.community_code,
			country = EXCLUDED.country,
			certification_progress = EXCLUDED.certification_progress,
			enrollment_date = EXCLUDED.enrollment_date,
			completed_at = EXCLUDED.completed_at,
			subscribed = EXCLUDED.subscribed,
			accepted_membership = EXCLUDED.accepted_membership,
			certified = EXCLUDED.certified,
			updated_at = EXCLUDED.updated_at
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	written := 0
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.DeveloperID, rec.FirstName, rec.LastName, rec.CommunityCode, rec.Country,
			rec.CertificationProgress, rec.EnrollmentDate, rec.CompletedAt,
			rec.Subscribed, rec.AcceptedMembership, rec.Certified, now,
		)
		if err != nil {
			return 0, err
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

// GetAll returns an immutable snapshot of every developer record, ordered
// by enrollment date so repeated aggregations see a stable input order.
func (r *developerRepo) GetAll(ctx context.Context) ([]models.DeveloperRecord, error) {
	query := `
		SELECT developer_id, first_name, last_name, community_code, country,
		       certification_progress, enrollment_date, completed_at,
		       subscribed, accepted_membership, certified
		FROM developers
		ORDER BY enrollment_date, developer_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.DeveloperRecord
	for rows.Next() {
		var rec models.DeveloperRecord
		err := rows.Scan(
			&rec.DeveloperID, &rec.FirstName, &rec.LastName, &rec.CommunityCode, &rec.Country,
			&rec.CertificationProgress, &rec.EnrollmentDate, &rec.CompletedAt,
			&rec.Subscribed, &rec.AcceptedMembership, &rec.Certified,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of developer records
func (r *developerRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM developers").Scan(&count)
	return count, err
}
