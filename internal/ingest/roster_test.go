package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/community-cert-dashboard/internal/ingest"
	"github.com/community-cert-dashboard/internal/models"
)

const rosterHeader = "Email,First Name,Last Name,Code,Country,Percentage Completed,Created At,Accepted Marketing,Accepted Membership,Completed At\n"

func parseOne(t *testing.T, row string) models.DeveloperRecord {
	t.Helper()
	records, err := ingest.ParseRoster(strings.NewReader(rosterHeader + row + "\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestParseRoster_BasicRow(t *testing.T) {
	rec := parseOne(t, "jane.doe@example.com,Jane,Doe,NY,USA,80,2024-01-05T09:00:00,yes,no,")

	assert.Equal(t, "jane.doe@example.com", rec.DeveloperID)
	assert.Equal(t, "Jane", rec.FirstName)
	assert.Equal(t, "Doe", rec.LastName)
	assert.Equal(t, "NY", rec.CommunityCode)
	assert.Equal(t, "USA", rec.Country)
	assert.Equal(t, 80, rec.CertificationProgress)
	assert.True(t, rec.Subscribed)
	assert.False(t, rec.AcceptedMembership)
	assert.False(t, rec.Certified)
	assert.Nil(t, rec.CompletedAt)
}

func TestParseRoster_CertifiedAtFullProgress(t *testing.T) {
	rec := parseOne(t, "a@b.com,A,B,NY,USA,100,2024-01-05T09:00:00,no,no,2024-01-07T09:00:00")
	assert.True(t, rec.Certified)
	require.NotNil(t, rec.CompletedAt)
}

func TestParseRoster_ClockRepairSameDay(t *testing.T) {
	// 06:55 recorded where 18:55 was meant: completion lands before the
	// 12:13 enrollment, and adding 12 hours restores the ordering.
	rec := parseOne(t, "a@b.com,A,B,NY,USA,100,2024-01-05T12:13:00,no,no,2024-01-05T06:55:00")

	require.NotNil(t, rec.CompletedAt)
	want := time.Date(2024, 1, 5, 18, 55, 0, 0, time.UTC)
	assert.Equal(t, want, *rec.CompletedAt)
}

func TestParseRoster_ClockRepairNotAdoptedAcrossDays(t *testing.T) {
	// Completion a full day before enrollment is not a clock ambiguity;
	// the 12-hour shift does not fix it, so the original value is kept.
	rec := parseOne(t, "a@b.com,A,B,NY,USA,100,2024-01-05T12:13:00,no,no,2024-01-04T06:55:00")

	require.NotNil(t, rec.CompletedAt)
	want := time.Date(2024, 1, 4, 6, 55, 0, 0, time.UTC)
	assert.Equal(t, want, *rec.CompletedAt)
}

func TestParseRoster_NamesDerivedFromIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		row       string
		wantFirst string
		wantLast  string
	}{
		{
			name:      "dot separated local part",
			row:       "john.smith@example.com,,,NY,USA,50,2024-01-05,no,no,",
			wantFirst: "John",
			wantLast:  "Smith",
		},
		{
			name:      "underscore separated",
			row:       "mary_jones@example.com,,,NY,USA,50,2024-01-05,no,no,",
			wantFirst: "Mary",
			wantLast:  "Jones",
		},
		{
			name:      "single segment keeps last name blank",
			row:       "admin@example.com,,,NY,USA,50,2024-01-05,no,no,",
			wantFirst: "Admin",
			wantLast:  "",
		},
		{
			name:      "explicit last name wins over derivation",
			row:       "john.smith@example.com,,Carter,NY,USA,50,2024-01-05,no,no,",
			wantFirst: "John",
			wantLast:  "Carter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := parseOne(t, tt.row)
			assert.Equal(t, tt.wantFirst, rec.FirstName)
			assert.Equal(t, tt.wantLast, rec.LastName)
		})
	}
}

func TestParseRoster_BlankCountryDefaults(t *testing.T) {
	rec := parseOne(t, "a@b.com,A,B,NY,,50,2024-01-05,no,no,")
	assert.Equal(t, "Unknown", rec.Country)
}

func TestParseRoster_FlagParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"Yes", true},
		{"1", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		rec := parseOne(t, "a@b.com,A,B,NY,USA,50,2024-01-05,"+tt.raw+",no,")
		assert.Equal(t, tt.want, rec.Subscribed, "flag %q", tt.raw)
	}
}

func TestParseRoster_RejectsWholeFile(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "missing required header",
			csv:  "Email,Code,Country\na@b.com,NY,USA\n",
		},
		{
			name: "empty file",
			csv:  "",
		},
		{
			name: "progress out of range",
			csv:  rosterHeader + "a@b.com,A,B,NY,USA,120,2024-01-05,no,no,\n",
		},
		{
			name: "progress not numeric",
			csv:  rosterHeader + "a@b.com,A,B,NY,USA,high,2024-01-05,no,no,\n",
		},
		{
			name: "unparseable enrollment date",
			csv:  rosterHeader + "a@b.com,A,B,NY,USA,50,not-a-date,no,no,\n",
		},
		{
			name: "bad row after good rows",
			csv: rosterHeader +
				"a@b.com,A,B,NY,USA,50,2024-01-05,no,no,\n" +
				"c@d.com,C,D,NY,USA,bad,2024-01-05,no,no,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ingest.ParseRoster(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Nil(t, records)

			var verr *ingest.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestParseRoster_HeaderCaseInsensitive(t *testing.T) {
	csv := "email,first name,last name,code,country,percentage completed,created at,accepted marketing,accepted membership,completed at\n" +
		"a@b.com,A,B,NY,USA,50,2024-01-05,no,no,\n"
	records, err := ingest.ParseRoster(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseRoster_PreservesInputOrder(t *testing.T) {
	csv := rosterHeader +
		"c@x.com,C,X,SF,USA,10,2024-01-03,no,no,\n" +
		"a@x.com,A,X,NY,USA,20,2024-01-01,no,no,\n" +
		"b@x.com,B,X,LA,USA,30,2024-01-02,no,no,\n"
	records, err := ingest.ParseRoster(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c@x.com", records[0].DeveloperID)
	assert.Equal(t, "a@x.com", records[1].DeveloperID)
	assert.Equal(t, "b@x.com", records[2].DeveloperID)
}
