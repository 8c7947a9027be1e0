package service

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/config"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// ErrForbidden marks an action attempted outside the principal's role. The
// data-access layer no-ops; handlers translate this to 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound marks a lookup for an id that does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidRole marks a role assignment outside the known role set.
var ErrInvalidRole = errors.New("invalid role")

// RosterService defines the interface for roster upload and export
type RosterService interface {
	Upload(ctx context.Context, profile *models.UserProfile, r io.Reader) (*UploadResult, error)
	Export(ctx context.Context, profile *models.UserProfile, w io.Writer, opts ExportOptions) (int, error)
}

// CommunityService defines the interface for the aggregation pipeline and
// community metadata actions
type CommunityService interface {
	Dashboard(ctx context.Context, profile *models.UserProfile, dateRange models.DateRange) (*Dashboard, error)
	Report(ctx context.Context, profile *models.UserProfile, code string, dateRange models.DateRange) (*CommunityReport, error)
	ToggleImportant(ctx context.Context, profile *models.UserProfile, code string) error
	SetFollowUp(ctx context.Context, profile *models.UserProfile, code string, date *string) error
}

// DirectoryService defines the interface for the community-code registry
type DirectoryService interface {
	Registry(ctx context.Context, profile *models.UserProfile) ([]models.ManagedCommunity, error)
	CreateManaged(ctx context.Context, profile *models.UserProfile, code, name, description string) error
	DeleteManaged(ctx context.Context, profile *models.UserProfile, code string) error
	UploadRegisteredCodes(ctx context.Context, profile *models.UserProfile, r io.Reader) ([]string, error)
	ManagementStats(ctx context.Context, profile *models.UserProfile, dateRange models.DateRange) (*ManagementStats, error)
}

// EventService defines the interface for event CRUD
type EventService interface {
	List(ctx context.Context, profile *models.UserProfile) ([]models.Event, error)
	Save(ctx context.Context, profile *models.UserProfile, event models.Event) (*models.Event, error)
	Delete(ctx context.Context, profile *models.UserProfile, id string) error
}

// CampaignService defines the interface for queued email campaigns
type CampaignService interface {
	Templates() []models.EmailTemplate
	PreviewAudience(ctx context.Context, profile *models.UserProfile, filter AudienceFilter) (*AudiencePreview, error)
	Queue(ctx context.Context, profile *models.UserProfile, req QueueCampaignRequest) (*models.Campaign, error)
	ListRecent(ctx context.Context, profile *models.UserProfile) ([]models.Campaign, error)
}

// UserService defines the interface for profile lifecycle and role admin
type UserService interface {
	Authenticate(ctx context.Context, identity Identity) (*models.UserProfile, error)
	List(ctx context.Context, profile *models.UserProfile) ([]models.UserProfile, error)
	SetRole(ctx context.Context, profile *models.UserProfile, uid string, role models.UserRole) error
	SetAllowedCommunities(ctx context.Context, profile *models.UserProfile, uid string, codes []string) error
}

// Services holds all service interfaces
type Services struct {
	Roster    RosterService
	Community CommunityService
	Directory DirectoryService
	Event     EventService
	Campaign  CampaignService
	User      UserService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Roster:    newRosterService(repos, cfg, log),
		Community: newCommunityService(repos, log),
		Directory: newDirectoryService(repos, log),
		Event:     newEventService(repos.Event, log),
		Campaign:  newCampaignService(repos, log),
		User:      newUserService(repos.User, log),
	}
}
