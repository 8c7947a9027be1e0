package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/access"
	"github.com/community-cert-dashboard/internal/metrics"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// Dashboard is one full run of the aggregation pipeline over the caller's
// visible records, plus the anomaly passes over the same filtered basis.
type Dashboard struct {
	metrics.Aggregation
	PotentialFakeAccounts metrics.FakeAccountStats      `json:"potential_fake_accounts"`
	RapidCompletions      metrics.RapidCompletionReport `json:"rapid_completions"`
	DateRange             models.DateRange              `json:"date_range"`
}

// CommunityReport is the comparative view for a single community.
type CommunityReport struct {
	Community      *models.CommunityWithMetadata `json:"community"`
	PreviousPeriod *metrics.PeriodStats          `json:"previous_period"`
	PeerAverage    *metrics.PeerAverages         `json:"peer_average"`
}

// communityService is the concrete implementation of CommunityService
type communityService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newCommunityService creates a new CommunityService
func newCommunityService(repos *repository.Repositories, log zerolog.Logger) *communityService {
	return &communityService{
		repos: repos,
		log:   log.With().Str("service", "community").Logger(),
	}
}

// Dashboard recomputes the whole pipeline from an immutable snapshot. It
// never fails on valid records: filtered-to-empty input yields empty lists
// and nil averages. Aggregates are never persisted.
func (s *communityService) Dashboard(ctx context.Context, profile *models.UserProfile, dateRange models.DateRange) (*Dashboard, error) {
	scoped, meta, err := s.snapshot(ctx, profile)
	if err != nil {
		return nil, err
	}

	if !dateRange.Bounded() && dateRange.From == nil && dateRange.To == nil {
		dateRange = models.InitialDateRange(scoped)
	}

	agg := metrics.Aggregate(scoped, dateRange, meta)
	filtered := metrics.FilterByRange(scoped, dateRange)

	return &Dashboard{
		Aggregation:           agg,
		PotentialFakeAccounts: metrics.DetectFakeAccounts(filtered),
		RapidCompletions:      metrics.DetectRapidCompletions(filtered),
		DateRange:             dateRange,
	}, nil
}

// Report computes the comparative view for one community: the current
// rollup, the immediately-preceding equal-length period, and the peer
// benchmark. Previous period and peer average degrade to nil when the
// range is unbounded or there are no peers.
func (s *communityService) Report(ctx context.Context, profile *models.UserProfile, code string, dateRange models.DateRange) (*CommunityReport, error) {
	scoped, meta, err := s.snapshot(ctx, profile)
	if err != nil {
		return nil, err
	}

	agg := metrics.Aggregate(scoped, dateRange, meta)

	report := &CommunityReport{
		PreviousPeriod: metrics.PreviousPeriodStats(scoped, dateRange, code),
		PeerAverage:    metrics.PeerAverage(agg.Communities, code),
	}
	for i := range agg.Communities {
		if agg.Communities[i].Code == code {
			report.Community = &agg.Communities[i]
			break
		}
	}
	if report.Community == nil {
		return nil, ErrNotFound
	}
	return report, nil
}

// ToggleImportant flips the isImportant annotation for a community code.
func (s *communityService) ToggleImportant(ctx context.Context, profile *models.UserProfile, code string) error {
	if !access.CanViewData(profile) {
		return ErrForbidden
	}
	meta, err := s.repos.Community.GetAllMeta(ctx)
	if err != nil {
		return err
	}
	m := meta[code]
	m.IsImportant = !m.IsImportant
	return s.repos.Community.UpsertMeta(ctx, code, m)
}

// SetFollowUp sets or clears the follow-up date annotation.
func (s *communityService) SetFollowUp(ctx context.Context, profile *models.UserProfile, code string, date *string) error {
	if !access.CanViewData(profile) {
		return ErrForbidden
	}
	meta, err := s.repos.Community.GetAllMeta(ctx)
	if err != nil {
		return err
	}
	m := meta[code]
	m.FollowUpDate = date
	return s.repos.Community.UpsertMeta(ctx, code, m)
}

// snapshot loads the records and metadata the pipeline runs over, with the
// visibility rule applied once, here, for every consumer.
func (s *communityService) snapshot(ctx context.Context, profile *models.UserProfile) ([]models.DeveloperRecord, map[string]models.CommunityMetaData, error) {
	if !access.CanViewData(profile) {
		return nil, nil, ErrForbidden
	}
	records, err := s.repos.Developer.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	meta, err := s.repos.Community.GetAllMeta(ctx)
	if err != nil {
		return nil, nil, err
	}
	return access.FilterDevelopers(profile, records), meta, nil
}
