package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/community-cert-dashboard/internal/metrics"
	"github.com/community-cert-dashboard/internal/models"
)

func TestIsSuspiciousIdentifier(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"someone@mailinator.com", true},
		{"someone@MAILINATOR.COM", true},
		{"user+tag@gmail.com", true},
		{"12345@gmail.com", true},
		{"jane.doe@example.com", false},
		{"jane123@example.com", false},
		{"plainstring", false},
		{"trailing@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, metrics.IsSuspiciousIdentifier(tt.id))
		})
	}
}

func TestDetectFakeAccounts(t *testing.T) {
	records := []models.DeveloperRecord{
		{DeveloperID: "real@example.com"},
		{DeveloperID: "fake@yopmail.com"},
		{DeveloperID: "alias+x@example.com"},
		{DeveloperID: "another@example.com"},
	}

	stats := metrics.DetectFakeAccounts(records)

	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 50.0, stats.Percentage, 0.001)
}

func TestDetectFakeAccounts_EmptyInput(t *testing.T) {
	stats := metrics.DetectFakeAccounts(nil)
	assert.Equal(t, 0, stats.Count)
	assert.Zero(t, stats.Percentage)
}

func TestDetectRapidCompletions_Boundary(t *testing.T) {
	enrolled := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	under := enrolled.Add(4*time.Hour + 59*time.Minute)
	exact := enrolled.Add(5 * time.Hour)

	records := []models.DeveloperRecord{
		{DeveloperID: "under@x.com", EnrollmentDate: enrolled, CompletedAt: &under},
		{DeveloperID: "exact@x.com", EnrollmentDate: enrolled, CompletedAt: &exact},
		{DeveloperID: "open@x.com", EnrollmentDate: enrolled},
	}

	report := metrics.DetectRapidCompletions(records)

	require.Equal(t, 1, report.Count)
	assert.Equal(t, "under@x.com", report.Developers[0].DeveloperID)
}
