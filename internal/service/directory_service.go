package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/access"
	"github.com/community-cert-dashboard/internal/ingest"
	"github.com/community-cert-dashboard/internal/metrics"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// ManagementStats reports registered-code activation against the current
// aggregation.
type ManagementStats struct {
	TotalRegistered int      `json:"total_registered"`
	ActiveCount     int      `json:"active_count"`
	InactiveCount   int      `json:"inactive_count"`
	ActivationRate  float64  `json:"activation_rate"`
	InactiveList    []string `json:"inactive_list"`
}

// directoryService is the concrete implementation of DirectoryService
type directoryService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newDirectoryService creates a new DirectoryService
func newDirectoryService(repos *repository.Repositories, log zerolog.Logger) *directoryService {
	return &directoryService{
		repos: repos,
		log:   log.With().Str("service", "directory").Logger(),
	}
}

// Registry returns the canonical community list: manual entries merged with
// codes observed in the unfiltered record set, manual entries winning.
func (s *directoryService) Registry(ctx context.Context, profile *models.UserProfile) ([]models.ManagedCommunity, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}
	managed, err := s.repos.Community.GetAllManaged(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.repos.Developer.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return access.MergeRegistry(managed, records), nil
}

// CreateManaged registers a manual community code. Super admin only.
func (s *directoryService) CreateManaged(ctx context.Context, profile *models.UserProfile, code, name, description string) error {
	if !profile.CanManage() {
		return ErrForbidden
	}
	community := models.NewManualCommunity(code, name, description, profile.Email)
	if err := s.repos.Community.CreateManaged(ctx, &community); err != nil {
		return err
	}
	s.log.Info().Str("code", code).Str("created_by", profile.Email).Msg("Manual community registered")
	return nil
}

// DeleteManaged removes a manual registry entry. Super admin only.
func (s *directoryService) DeleteManaged(ctx context.Context, profile *models.UserProfile, code string) error {
	if !profile.CanManage() {
		return ErrForbidden
	}
	return s.repos.Community.DeleteManaged(ctx, code)
}

// UploadRegisteredCodes parses a community-list CSV and replaces the legacy
// registered code list. Super admin only.
func (s *directoryService) UploadRegisteredCodes(ctx context.Context, profile *models.UserProfile, r io.Reader) ([]string, error) {
	if !profile.CanManage() {
		return nil, ErrForbidden
	}
	codes, err := ingest.ParseCommunityList(r)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Community.SaveRegisteredCodes(ctx, codes, profile.Email); err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(codes)).Msg("Registered community list replaced")
	return codes, nil
}

// ManagementStats compares the registered code list against communities
// active in the current period. Returns zero stats when the legacy list was
// never registered.
func (s *directoryService) ManagementStats(ctx context.Context, profile *models.UserProfile, dateRange models.DateRange) (*ManagementStats, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}
	registered, err := s.repos.Community.GetRegisteredCodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(registered) == 0 {
		return &ManagementStats{}, nil
	}

	records, err := s.repos.Developer.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.repos.Community.GetAllMeta(ctx)
	if err != nil {
		return nil, err
	}
	agg := metrics.Aggregate(access.FilterDevelopers(profile, records), dateRange, meta)

	active := make(map[string]bool, len(agg.Communities))
	for _, c := range agg.Communities {
		active[c.Code] = true
	}

	stats := &ManagementStats{TotalRegistered: len(registered)}
	for _, code := range registered {
		if active[code] {
			stats.ActiveCount++
		} else {
			stats.InactiveList = append(stats.InactiveList, code)
		}
	}
	stats.InactiveCount = len(stats.InactiveList)
	stats.ActivationRate = float64(stats.ActiveCount) / float64(stats.TotalRegistered) * 100
	return stats, nil
}
