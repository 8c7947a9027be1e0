package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/community-cert-dashboard/internal/database"
	"github.com/community-cert-dashboard/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user profile repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new user profile
func (r *userRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (uid, email, display_name, photo_url, role, allowed_communities, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.UID, profile.Email, profile.DisplayName, profile.PhotoURL,
		profile.Role, pq.Array(profile.AllowedCommunities), profile.CreatedAt, profile.LastLogin,
	)
	return err
}

// GetByUID retrieves a profile by principal id
func (r *userRepo) GetByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	query := `
		SELECT uid, email, display_name, photo_url, role, allowed_communities, created_at, last_login
		FROM user_profiles WHERE uid = $1
	`
	var p models.UserProfile
	var allowed pq.StringArray
	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&p.UID, &p.Email, &p.DisplayName, &p.PhotoURL,
		&p.Role, &allowed, &p.CreatedAt, &p.LastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.AllowedCommunities = []string(allowed)
	return &p, nil
}

// List returns all user profiles ordered by creation time
func (r *userRepo) List(ctx context.Context) ([]models.UserProfile, error) {
	query := `
		SELECT uid, email, display_name, photo_url, role, allowed_communities, created_at, last_login
		FROM user_profiles ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		var allowed pq.StringArray
		err := rows.Scan(
			&p.UID, &p.Email, &p.DisplayName, &p.PhotoURL,
			&p.Role, &allowed, &p.CreatedAt, &p.LastLogin,
		)
		if err != nil {
			return nil, err
		}
		p.AllowedCommunities = []string(allowed)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpdateLastLogin refreshes the last-login timestamp
func (r *userRepo) UpdateLastLogin(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE user_profiles SET last_login = $2 WHERE uid = $1", uid, time.Now())
	return err
}

// UpdateRole sets a profile's role
func (r *userRepo) UpdateRole(ctx context.Context, uid string, role models.UserRole) error {
	_, err := r.db.ExecContext(ctx, "UPDATE user_profiles SET role = $2 WHERE uid = $1", uid, role)
	return err
}

// UpdateAllowedCommunities replaces a profile's community allow-list
func (r *userRepo) UpdateAllowedCommunities(ctx context.Context, uid string, codes []string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE user_profiles SET allowed_communities = $2 WHERE uid = $1", uid, pq.Array(codes))
	return err
}
