package metrics

import (
	"time"

	"github.com/community-cert-dashboard/internal/models"
)

// PeriodStats is the rollup of one community over a derived previous
// period.
type PeriodStats struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	Count           int       `json:"count"`
	Certified       int       `json:"certified"`
	AverageProgress float64   `json:"average_progress"`
}

// PeerAverages holds unweighted means of per-community statistics across
// all communities other than the one being examined. A 2-developer
// community counts the same as a 2000-developer one.
type PeerAverages struct {
	DeveloperCount  float64 `json:"developer_count"`
	CertifiedCount  float64 `json:"certified_count"`
	AverageProgress float64 `json:"average_progress"`
}

// PreviousPeriodStats computes the target community's rollup over an
// equal-length window ending exactly one millisecond before the current
// range starts. Returns nil when the current range is unbounded on either
// side or no community is selected; this is display support, not an
// invariant other code relies on.
func PreviousPeriodStats(records []models.DeveloperRecord, current models.DateRange, code string) *PeriodStats {
	if !current.Bounded() || code == "" {
		return nil
	}

	duration := current.To.Sub(*current.From)
	prevTo := current.From.Add(-time.Millisecond)
	prevFrom := prevTo.Add(-duration)

	stats := &PeriodStats{From: prevFrom, To: prevTo}
	progressSum := 0
	for _, r := range records {
		if r.CommunityCode != code {
			continue
		}
		if r.EnrollmentDate.Before(prevFrom) || r.EnrollmentDate.After(prevTo) {
			continue
		}
		stats.Count++
		if r.Certified {
			stats.Certified++
		}
		progressSum += r.CertificationProgress
	}
	if stats.Count > 0 {
		stats.AverageProgress = float64(progressSum) / float64(stats.Count)
	}
	return stats
}

// PeerAverage computes the peer benchmark for code from an existing
// aggregation of the current period. Returns nil when no community is
// selected or there are no peers to average.
func PeerAverage(communities []models.CommunityWithMetadata, code string) *PeerAverages {
	if code == "" {
		return nil
	}
	var devs, certified int
	var progressSum float64
	peers := 0
	for _, c := range communities {
		if c.Code == code {
			continue
		}
		devs += c.DeveloperCount
		certified += c.CertifiedCount
		progressSum += c.AverageProgress
		peers++
	}
	if peers == 0 {
		return nil
	}
	return &PeerAverages{
		DeveloperCount:  float64(devs) / float64(peers),
		CertifiedCount:  float64(certified) / float64(peers),
		AverageProgress: progressSum / float64(peers),
	}
}
