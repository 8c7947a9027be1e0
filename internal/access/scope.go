// Package access centralizes the role-based visibility rule. Every consumer
// of developer or event data goes through these functions; the rule is never
// re-implemented at call sites.
package access

import (
	"github.com/community-cert-dashboard/internal/models"
)

// FilterDevelopers returns the subset of records the principal may see.
// Super admins see everything, community admins see their allow-list, and
// viewers see nothing regardless of allow-list content.
func FilterDevelopers(profile *models.UserProfile, records []models.DeveloperRecord) []models.DeveloperRecord {
	if profile == nil {
		return nil
	}
	switch profile.Role {
	case models.RoleSuperAdmin:
		return records
	case models.RoleCommunityAdmin:
		var scoped []models.DeveloperRecord
		for _, r := range records {
			if profile.AllowsCommunity(r.CommunityCode) {
				scoped = append(scoped, r)
			}
		}
		return scoped
	}
	return nil
}

// FilterEvents applies the same rule to events, with one extension: events
// addressed to "All" are visible to every community admin.
func FilterEvents(profile *models.UserProfile, events []models.Event) []models.Event {
	if profile == nil {
		return nil
	}
	switch profile.Role {
	case models.RoleSuperAdmin:
		return events
	case models.RoleCommunityAdmin:
		var scoped []models.Event
		for _, e := range events {
			if e.CommunityCode == models.EventCommunityAll || profile.AllowsCommunity(e.CommunityCode) {
				scoped = append(scoped, e)
			}
		}
		return scoped
	}
	return nil
}

// CanUploadRecord reports whether the principal may write a roster record
// with the given community code. During an upload, records failing this
// check are silently skipped rather than failing the batch. This is an
// application-level check; a server-side rule must enforce the same
// constraint for it to be a guarantee.
func CanUploadRecord(profile *models.UserProfile, communityCode string) bool {
	if profile == nil {
		return false
	}
	switch profile.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleCommunityAdmin:
		return profile.AllowsCommunity(communityCode)
	}
	return false
}

// CanViewData reports whether the principal has any read access at all.
func CanViewData(profile *models.UserProfile) bool {
	return profile != nil && profile.Role != models.RoleViewer
}
