package repository

import (
	"context"

	"github.com/community-cert-dashboard/internal/database"
	"github.com/community-cert-dashboard/internal/models"
)

// DeveloperRepository defines the interface for developer record operations
type DeveloperRepository interface {
	BatchUpsert(ctx context.Context, records []models.DeveloperRecord) (int, error)
	GetAll(ctx context.Context) ([]models.DeveloperRecord, error)
	Count(ctx context.Context) (int, error)
}

// EventRepository defines the interface for event operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetAll(ctx context.Context) ([]models.Event, error)
}

// CampaignRepository defines the interface for queued campaign operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	ListRecent(ctx context.Context, limit int) ([]models.Campaign, error)
}

// CommunityRepository covers the persisted community state: metadata
// annotations, the managed-community registry, and the legacy registered
// code list (settings singleton).
type CommunityRepository interface {
	UpsertMeta(ctx context.Context, code string, meta models.CommunityMetaData) error
	GetAllMeta(ctx context.Context) (map[string]models.CommunityMetaData, error)
	CreateManaged(ctx context.Context, community *models.ManagedCommunity) error
	DeleteManaged(ctx context.Context, code string) error
	GetAllManaged(ctx context.Context) ([]models.ManagedCommunity, error)
	SaveRegisteredCodes(ctx context.Context, codes []string, updatedBy string) error
	GetRegisteredCodes(ctx context.Context) ([]string, error)
}

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByUID(ctx context.Context, uid string) (*models.UserProfile, error)
	List(ctx context.Context) ([]models.UserProfile, error)
	UpdateLastLogin(ctx context.Context, uid string) error
	UpdateRole(ctx context.Context, uid string, role models.UserRole) error
	UpdateAllowedCommunities(ctx context.Context, uid string, codes []string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Developer DeveloperRepository
	Event     EventRepository
	Campaign  CampaignRepository
	Community CommunityRepository
	User      UserRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Developer: NewDeveloperRepo(db),
		Event:     NewEventRepo(db),
		Campaign:  NewCampaignRepo(db),
		Community: NewCommunityRepo(db),
		User:      NewUserRepo(db),
	}
}
