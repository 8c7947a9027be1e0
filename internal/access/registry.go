package access

import (
	"sort"

	"github.com/community-cert-dashboard/internal/models"
)

// MergeRegistry builds the canonical community list: the union, by code, of
// administrator-declared entries and codes observed in the unfiltered
// developer record set. Manual entries are applied first and are never
// overwritten by synthesized ones, so administrator-declared name and
// description always win. The result is sorted by code for deterministic
// display.
func MergeRegistry(managed []models.ManagedCommunity, records []models.DeveloperRecord) []models.ManagedCommunity {
	byCode := make(map[string]models.ManagedCommunity, len(managed))
	for _, c := range managed {
		byCode[c.Code] = c
	}
	for _, r := range records {
		if r.CommunityCode == "" {
			continue
		}
		if _, ok := byCode[r.CommunityCode]; !ok {
			byCode[r.CommunityCode] = models.NewDerivedCommunity(r.CommunityCode)
		}
	}

	merged := make([]models.ManagedCommunity, 0, len(byCode))
	for _, c := range byCode {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Code < merged[j].Code
	})
	return merged
}
