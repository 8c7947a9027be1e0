package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/community-cert-dashboard/internal/database"
	"github.com/community-cert-dashboard/internal/models"
)

// communityRepo is the concrete implementation of CommunityRepository
type communityRepo struct {
	db *database.DB
}

// NewCommunityRepo creates a new community repository
func NewCommunityRepo(db *database.DB) CommunityRepository {
	return &communityRepo{db: db}
}

// UpsertMeta writes a metadata annotation keyed by community code. The
// annotation survives independently of whether the code currently has any
// developers.
func (r *communityRepo) UpsertMeta(ctx context.Context, code string, meta models.CommunityMetaData) error {
	query := `
		INSERT INTO community_metadata (code, is_important, follow_up_date, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			is_important = EXCLUDED.is_important,
			follow_up_date = EXCLUDED.follow_up_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, code, meta.IsImportant, meta.FollowUpDate, time.Now())
	return err
}

// GetAllMeta returns all metadata annotations keyed by community code
func (r *communityRepo) GetAllMeta(ctx context.Context) (map[string]models.CommunityMetaData, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT code, is_important, follow_up_date FROM community_metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]models.CommunityMetaData)
	for rows.Next() {
		var code string
		var m models.CommunityMetaData
		if err := rows.Scan(&code, &m.IsImportant, &m.FollowUpDate); err != nil {
			return nil, err
		}
		meta[code] = m
	}
	return meta, rows.Err()
}

// CreateManaged registers a manual community-code entry. Only manual
// entries are ever persisted; csv-derived ones are synthesized on read.
func (r *communityRepo) CreateManaged(ctx context.Context, community *models.ManagedCommunity) error {
	query := `
		INSERT INTO managed_communities (code, name, description, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description
	`
	_, err := r.db.ExecContext(ctx, query,
		community.Code, community.Name, community.Description,
		community.CreatedAt, community.CreatedBy,
	)
	return err
}

// DeleteManaged removes a manual registry entry by code
func (r *communityRepo) DeleteManaged(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM managed_communities WHERE code = $1", code)
	return err
}

// GetAllManaged returns all manual registry entries
func (r *communityRepo) GetAllManaged(ctx context.Context) ([]models.ManagedCommunity, error) {
	query := `SELECT code, name, description, created_at, created_by FROM managed_communities`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var communities []models.ManagedCommunity
	for rows.Next() {
		c := models.ManagedCommunity{Source: models.SourceManual}
		if err := rows.Scan(&c.Code, &c.Name, &c.Description, &c.CreatedAt, &c.CreatedBy); err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

// SaveRegisteredCodes replaces the legacy registered-community-code list
// held in the settings singleton.
func (r *communityRepo) SaveRegisteredCodes(ctx context.Context, codes []string, updatedBy string) error {
	query := `
		INSERT INTO settings (id, codes, updated_by, updated_at)
		VALUES ('communities', $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			codes = EXCLUDED.codes,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, pq.Array(codes), updatedBy, time.Now())
	return err
}

// GetRegisteredCodes returns the legacy registered code list, or nil if it
// was never written.
func (r *communityRepo) GetRegisteredCodes(ctx context.Context) ([]string, error) {
	var codes pq.StringArray
	err := r.db.QueryRowContext(ctx, "SELECT codes FROM settings WHERE id = 'communities'").Scan(&codes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []string(codes), nil
}
