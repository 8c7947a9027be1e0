package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/community-cert-dashboard/internal/access"
	"github.com/community-cert-dashboard/internal/models"
)

func TestMergeRegistry_ManualEntriesWin(t *testing.T) {
	managed := []models.ManagedCommunity{
		models.NewManualCommunity("NY", "New York", "east coast", "admin@x.com"),
	}
	records := []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "NY"},
		{DeveloperID: "b@x.com", CommunityCode: "SF"},
	}

	merged := access.MergeRegistry(managed, records)

	require.Len(t, merged, 2)
	assert.Equal(t, "NY", merged[0].Code)
	assert.Equal(t, "New York", merged[0].Name)
	assert.Equal(t, models.SourceManual, merged[0].Source)

	assert.Equal(t, "SF", merged[1].Code)
	assert.Equal(t, "SF", merged[1].Name)
	assert.Equal(t, models.SourceCSV, merged[1].Source)
}

func TestMergeRegistry_SortedByCode(t *testing.T) {
	records := []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "SF"},
		{DeveloperID: "b@x.com", CommunityCode: "LA"},
		{DeveloperID: "c@x.com", CommunityCode: "NY"},
	}

	merged := access.MergeRegistry(nil, records)

	require.Len(t, merged, 3)
	assert.Equal(t, "LA", merged[0].Code)
	assert.Equal(t, "NY", merged[1].Code)
	assert.Equal(t, "SF", merged[2].Code)
}

func TestMergeRegistry_SkipsBlankCodes(t *testing.T) {
	records := []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: ""},
		{DeveloperID: "b@x.com", CommunityCode: "NY"},
	}

	merged := access.MergeRegistry(nil, records)
	require.Len(t, merged, 1)
	assert.Equal(t, "NY", merged[0].Code)
}

func TestMergeRegistry_Empty(t *testing.T) {
	assert.Empty(t, access.MergeRegistry(nil, nil))
}
