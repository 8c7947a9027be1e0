package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/access"
	"github.com/community-cert-dashboard/internal/config"
	"github.com/community-cert-dashboard/internal/ingest"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// UploadResult summarizes one roster upload.
type UploadResult struct {
	Total   int `json:"total"`
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

// ExportOptions narrows a roster export.
type ExportOptions struct {
	// CommunityCode limits the export to one community; empty exports all
	// visible records.
	CommunityCode string
	// Filter is one of "all", "certified", "subscribers".
	Filter string
}

// rosterService is the concrete implementation of RosterService
type rosterService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newRosterService creates a new RosterService
func newRosterService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *rosterService {
	return &rosterService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "roster").Logger(),
	}
}

// Upload parses a roster CSV and writes the records in sequential chunks.
// The whole file is rejected on any validation error before anything is
// written. Records outside a community admin's allow-list are silently
// skipped, not errors. A chunk failure mid-sequence leaves earlier chunks
// committed; there is no compensating rollback.
func (s *rosterService) Upload(ctx context.Context, profile *models.UserProfile, r io.Reader) (*UploadResult, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}

	records, err := ingest.ParseRoster(r)
	if err != nil {
		return nil, err
	}

	allowed := make([]models.DeveloperRecord, 0, len(records))
	for _, rec := range records {
		if access.CanUploadRecord(profile, rec.CommunityCode) {
			allowed = append(allowed, rec)
		}
	}

	result := &UploadResult{
		Total:   len(records),
		Skipped: len(records) - len(allowed),
	}

	batchSize := s.cfg.Upload.BatchSize
	start := time.Now()
	for i := 0; i < len(allowed); i += batchSize {
		end := i + batchSize
		if end > len(allowed) {
			end = len(allowed)
		}
		written, err := s.repos.Developer.BatchUpsert(ctx, allowed[i:end])
		if err != nil {
			s.log.Error().Err(err).
				Int("written", result.Written).
				Int("chunk_start", i).
				Msg("Roster chunk write failed, partial upload committed")
			return result, err
		}
		result.Written += written
	}

	s.log.Info().
		Int("total", result.Total).
		Int("written", result.Written).
		Int("skipped", result.Skipped).
		Dur("duration", time.Since(start)).
		Str("uploaded_by", profile.Email).
		Msg("Roster upload completed")

	return result, nil
}

// exportHeaders is the fixed column projection for roster exports, matching
// the import format so exports round-trip.
var exportHeaders = []string{
	"Email", "Code", "Country", "Percentage Completed",
	"Created At", "Accepted Marketing", "Accepted Membership", "Completed At",
}

// Export streams the visible records as CSV and returns the row count.
func (s *rosterService) Export(ctx context.Context, profile *models.UserProfile, w io.Writer, opts ExportOptions) (int, error) {
	if !access.CanViewData(profile) {
		return 0, ErrForbidden
	}

	records, err := s.repos.Developer.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	scoped := access.FilterDevelopers(profile, records)

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return 0, err
	}

	count := 0
	for _, rec := range scoped {
		if opts.CommunityCode != "" && rec.CommunityCode != opts.CommunityCode {
			continue
		}
		switch opts.Filter {
		case "certified":
			if !rec.Certified {
				continue
			}
		case "subscribers":
			if !rec.Subscribed {
				continue
			}
		}

		completedAt := ""
		if rec.CompletedAt != nil {
			completedAt = rec.CompletedAt.Format(time.RFC3339)
		}
		row := []string{
			rec.DeveloperID,
			rec.CommunityCode,
			rec.Country,
			strconv.Itoa(rec.CertificationProgress),
			rec.EnrollmentDate.Format(time.RFC3339),
			strconv.FormatBool(rec.Subscribed),
			strconv.FormatBool(rec.AcceptedMembership),
			completedAt,
		}
		if err := writer.Write(row); err != nil {
			return count, err
		}
		count++
	}

	writer.Flush()
	return count, writer.Error()
}
