package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/community-cert-dashboard/internal/metrics"
	"github.com/community-cert-dashboard/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC)
}

func completed(t time.Time) *time.Time {
	return &t
}

// Two communities: A has two developers, one certified in two days; B has
// one uncertified developer with zero progress.
func sampleRecords() []models.DeveloperRecord {
	return []models.DeveloperRecord{
		{
			DeveloperID:           "x@a.com",
			CommunityCode:         "A",
			CertificationProgress: 100,
			Certified:             true,
			EnrollmentDate:        day(1),
			CompletedAt:           completed(day(3)),
			Subscribed:            true,
		},
		{
			DeveloperID:           "y@a.com",
			CommunityCode:         "A",
			CertificationProgress: 50,
			EnrollmentDate:        day(2),
		},
		{
			DeveloperID:           "z@b.com",
			CommunityCode:         "B",
			CertificationProgress: 0,
			EnrollmentDate:        day(2),
		},
	}
}

func TestAggregate_CommunityRollups(t *testing.T) {
	agg := metrics.Aggregate(sampleRecords(), models.DateRange{}, nil)

	require.Len(t, agg.Communities, 2)

	// Sorted by developer count, A first.
	a := agg.Communities[0]
	assert.Equal(t, "A", a.Code)
	assert.Equal(t, 2, a.DeveloperCount)
	assert.Equal(t, 1, a.SubscribedCount)
	assert.Equal(t, 1, a.CertifiedCount)
	assert.InDelta(t, 75.0, a.AverageProgress, 0.001)
	require.NotNil(t, a.AverageCompletionDays)
	assert.InDelta(t, 2.0, *a.AverageCompletionDays, 0.001)

	b := agg.Communities[1]
	assert.Equal(t, "B", b.Code)
	assert.Equal(t, 1, b.DeveloperCount)
	assert.Nil(t, b.AverageCompletionDays)

	require.NotNil(t, agg.OverallAverageCompletionDays)
	assert.InDelta(t, 2.0, *agg.OverallAverageCompletionDays, 0.001)
}

func TestAggregate_TopPerformingExcludesZeroProgress(t *testing.T) {
	agg := metrics.Aggregate(sampleRecords(), models.DateRange{}, nil)

	require.Len(t, agg.TopPerforming, 1)
	assert.Equal(t, "A", agg.TopPerforming[0].Code)
}

func TestAggregate_TopPerformingRankingAndLimit(t *testing.T) {
	var records []models.DeveloperRecord
	codes := []string{"C1", "C2", "C3", "C4", "C5", "C6", "C7"}
	for i, code := range codes {
		records = append(records, models.DeveloperRecord{
			DeveloperID:           code + "@x.com",
			CommunityCode:         code,
			CertificationProgress: 10 * (i + 1),
			EnrollmentDate:        day(1),
		})
	}

	agg := metrics.Aggregate(records, models.DateRange{}, nil)

	require.Len(t, agg.TopPerforming, 5)
	assert.Equal(t, "C7", agg.TopPerforming[0].Code)
	assert.Equal(t, "C3", agg.TopPerforming[4].Code)
}

func TestAggregate_CertificationOutweighsProgress(t *testing.T) {
	records := []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "HIGH", CertificationProgress: 90, EnrollmentDate: day(1)},
		{DeveloperID: "b@x.com", CommunityCode: "CERT", CertificationProgress: 100, Certified: true,
			EnrollmentDate: day(1), CompletedAt: completed(day(2))},
	}

	agg := metrics.Aggregate(records, models.DateRange{}, nil)

	// CERT scores 100*(1+1)=200 against HIGH's 90*(0+1)=90.
	require.Len(t, agg.TopPerforming, 2)
	assert.Equal(t, "CERT", agg.TopPerforming[0].Code)
}

func TestAggregate_DateRangeFiltering(t *testing.T) {
	from, to := day(2).Add(-9*time.Hour), day(2).Add(15*time.Hour)
	agg := metrics.Aggregate(sampleRecords(), models.DateRange{From: &from, To: &to}, nil)

	total := 0
	for _, c := range agg.Communities {
		total += c.DeveloperCount
	}
	assert.Equal(t, 2, total)
	assert.Nil(t, agg.OverallAverageCompletionDays)
}

func TestAggregate_SumPreservation(t *testing.T) {
	records := sampleRecords()
	agg := metrics.Aggregate(records, models.DateRange{}, nil)

	total := 0
	for _, c := range agg.Communities {
		total += c.DeveloperCount
	}
	assert.Equal(t, len(records), total)
}

func TestAggregate_Idempotent(t *testing.T) {
	records := sampleRecords()
	first := metrics.Aggregate(records, models.DateRange{}, nil)
	second := metrics.Aggregate(records, models.DateRange{}, nil)
	assert.Equal(t, first, second)
}

func TestAggregate_EmptyInput(t *testing.T) {
	agg := metrics.Aggregate(nil, models.DateRange{}, nil)

	assert.Empty(t, agg.Communities)
	assert.Empty(t, agg.TopPerforming)
	assert.Nil(t, agg.OverallAverageCompletionDays)
}

func TestAggregate_MetadataMergedByCode(t *testing.T) {
	date := "2024-02-01"
	meta := map[string]models.CommunityMetaData{
		"A": {IsImportant: true, FollowUpDate: &date},
	}

	agg := metrics.Aggregate(sampleRecords(), models.DateRange{}, meta)

	require.Len(t, agg.Communities, 2)
	assert.True(t, agg.Communities[0].Meta.IsImportant)
	require.NotNil(t, agg.Communities[0].Meta.FollowUpDate)
	assert.False(t, agg.Communities[1].Meta.IsImportant)
}

func TestAggregate_InvertedIntervalUsesAbsoluteDays(t *testing.T) {
	enrolled := day(5)
	done := day(3) // two days before enrollment, unrepairable inversion
	records := []models.DeveloperRecord{
		{
			DeveloperID:           "inv@x.com",
			CommunityCode:         "A",
			CertificationProgress: 100,
			Certified:             true,
			EnrollmentDate:        enrolled,
			CompletedAt:           &done,
		},
	}

	agg := metrics.Aggregate(records, models.DateRange{}, nil)

	require.Len(t, agg.Communities, 1)
	require.NotNil(t, agg.Communities[0].AverageCompletionDays)
	assert.InDelta(t, 2.0, *agg.Communities[0].AverageCompletionDays, 0.001)
}
