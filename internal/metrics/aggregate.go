package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/community-cert-dashboard/internal/models"
)

// rapidCompletionWindow is the threshold under which a completion is
// treated as an anomaly signal rather than a legitimate fast learner.
const rapidCompletionWindow = 5 * time.Hour

// topPerformerLimit caps the ranked top-performing community list.
const topPerformerLimit = 5

// Aggregation is the full output of one pipeline run over a record
// snapshot. It is recomputed from scratch on every invocation; nothing here
// is persisted or mutated in place.
type Aggregation struct {
	Communities                  []models.CommunityWithMetadata `json:"communities"`
	TopPerforming                []models.CommunityWithMetadata `json:"top_performing"`
	OverallAverageCompletionDays *float64                       `json:"overall_average_completion_days"`
}

// Aggregate filters records to the date range (inclusive bounds, nil sides
// unbounded), groups them by community code in first-appearance order, and
// computes per-community rollups plus the cross-community statistics. It is
// a pure function: identical input yields identical output, and empty or
// filtered-to-empty input degrades to empty lists and a nil overall
// average rather than an error.
func Aggregate(records []models.DeveloperRecord, dateRange models.DateRange, meta map[string]models.CommunityMetaData) Aggregation {
	filtered := FilterByRange(records, dateRange)

	groups := make(map[string]*models.Community)
	var order []string
	for _, r := range filtered {
		c, ok := groups[r.CommunityCode]
		if !ok {
			c = &models.Community{Code: r.CommunityCode}
			groups[r.CommunityCode] = c
			order = append(order, r.CommunityCode)
		}
		c.DeveloperCount++
		if r.Subscribed {
			c.SubscribedCount++
		}
		if r.Certified {
			c.CertifiedCount++
		}
		c.AverageProgress += float64(r.CertificationProgress)
		c.Developers = append(c.Developers, r)
	}

	communities := make([]models.CommunityWithMetadata, 0, len(order))
	var totalDays, totalCompleted int
	for _, code := range order {
		c := groups[code]
		c.AverageProgress /= float64(c.DeveloperCount)

		var days, completed int
		rapid := false
		for _, d := range c.Developers {
			if d.Certified && d.CompletedAt != nil {
				days += completionDays(d)
				completed++
			}
			if isRapid(d) {
				rapid = true
			}
		}
		if completed > 0 {
			avg := float64(days) / float64(completed)
			c.AverageCompletionDays = &avg
		}
		totalDays += days
		totalCompleted += completed

		m, ok := meta[code]
		if !ok {
			m = models.CommunityMetaData{}
		}
		communities = append(communities, models.CommunityWithMetadata{
			Community:           *c,
			Meta:                m,
			HasRapidCompletions: rapid,
		})
	}

	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].DeveloperCount > communities[j].DeveloperCount
	})

	var overall *float64
	if totalCompleted > 0 {
		avg := float64(totalDays) / float64(totalCompleted)
		overall = &avg
	}

	return Aggregation{
		Communities:                  communities,
		TopPerforming:                topPerforming(communities),
		OverallAverageCompletionDays: overall,
	}
}

// FilterByRange returns the records whose enrollment date falls in the
// range, preserving input order. The same filtered basis feeds both the
// aggregation and the anomaly passes, so their record counts agree.
func FilterByRange(records []models.DeveloperRecord, dateRange models.DateRange) []models.DeveloperRecord {
	var filtered []models.DeveloperRecord
	for _, r := range records {
		if dateRange.Contains(r.EnrollmentDate) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// topPerforming ranks communities with any progress or certifications by
// averageProgress * (certifiedCount + 1) and keeps the top five. The +1
// lets communities with progress but zero certifications still outrank
// zero-progress ones.
func topPerforming(communities []models.CommunityWithMetadata) []models.CommunityWithMetadata {
	var eligible []models.CommunityWithMetadata
	for _, c := range communities {
		if c.AverageProgress > 0 || c.CertifiedCount > 0 {
			eligible = append(eligible, c)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return performanceScore(eligible[i]) > performanceScore(eligible[j])
	})
	if len(eligible) > topPerformerLimit {
		eligible = eligible[:topPerformerLimit]
	}
	return eligible
}

func performanceScore(c models.CommunityWithMetadata) float64 {
	return c.AverageProgress * float64(c.CertifiedCount+1)
}

// completionDays is the whole-day duration between enrollment and
// completion. The absolute value guards against residual inverted
// timestamps that the ingestion heuristic could not repair.
func completionDays(d models.DeveloperRecord) int {
	diff := d.CompletedAt.Sub(d.EnrollmentDate)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

func isRapid(d models.DeveloperRecord) bool {
	return d.CompletedAt != nil && d.CompletedAt.Sub(d.EnrollmentDate) < rapidCompletionWindow
}
