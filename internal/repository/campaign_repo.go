package repository

import (
	"context"
	"database/sql"

	"github.com/community-cert-dashboard/internal/database"
	"github.com/community-cert-dashboard/internal/models"
)

// campaignRepo is the concrete implementation of CampaignRepository
type campaignRepo struct {
	db *database.DB
}

// NewCampaignRepo creates a new campaign repository
func NewCampaignRepo(db *database.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

// Create inserts a queued campaign request. Status transitions past
// "queued" belong to the external delivery worker, not this service.
func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (
			id, template_name, subject, body, community_code,
			min_progress, max_progress, recipient_count, status, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		campaign.ID, campaign.TemplateName, campaign.Subject, campaign.Body,
		campaign.CommunityCode, campaign.MinProgress, campaign.MaxProgress,
		campaign.RecipientCount, campaign.Status, campaign.CreatedBy, campaign.CreatedAt,
	)
	return err
}

// GetByID retrieves a campaign by id
func (r *campaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `
		SELECT id, template_name, subject, body, community_code,
		       min_progress, max_progress, recipient_count, status, created_by, created_at
		FROM campaigns WHERE id = $1
	`
	var c models.Campaign
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.TemplateName, &c.Subject, &c.Body, &c.CommunityCode,
		&c.MinProgress, &c.MaxProgress, &c.RecipientCount, &c.Status, &c.CreatedBy, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListRecent returns the most recently created campaigns, newest first
func (r *campaignRepo) ListRecent(ctx context.Context, limit int) ([]models.Campaign, error) {
	query := `
		SELECT id, template_name, subject, body, community_code,
		       min_progress, max_progress, recipient_count, status, created_by, created_at
		FROM campaigns ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(
			&c.ID, &c.TemplateName, &c.Subject, &c.Body, &c.CommunityCode,
			&c.MinProgress, &c.MaxProgress, &c.RecipientCount, &c.Status, &c.CreatedBy, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}
