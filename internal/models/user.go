package models

import (
	"time"
)

// UserRole determines data visibility for a principal.
type UserRole string

const (
	// RoleSuperAdmin has full unfiltered access and is the only role that
	// may mutate profiles or the community registry.
	RoleSuperAdmin UserRole = "super_admin"
	// RoleCommunityAdmin sees only data for codes in its allow-list.
	RoleCommunityAdmin UserRole = "community_admin"
	// RoleViewer has no data access; it denotes "awaiting assignment" and
	// is the default for first-time principals.
	RoleViewer UserRole = "viewer"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[UserRole]bool{
	RoleSuperAdmin:     true,
	RoleCommunityAdmin: true,
	RoleViewer:         true,
}

// UserProfile is one per authenticated principal. Created with RoleViewer
// on first authentication; role and allow-list are mutated only by a
// super admin.
type UserProfile struct {
	UID                string    `json:"uid" db:"uid"`
	Email              string    `json:"email" db:"email"`
	DisplayName        string    `json:"display_name" db:"display_name"`
	PhotoURL           string    `json:"photo_url,omitempty" db:"photo_url"`
	Role               UserRole  `json:"role" db:"role"`
	AllowedCommunities []string  `json:"allowed_communities" db:"allowed_communities"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	LastLogin          time.Time `json:"last_login" db:"last_login"`
}

// CanManage reports whether the profile may perform super-admin-only
// mutations (role changes, registry writes).
func (p *UserProfile) CanManage() bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// AllowsCommunity reports whether the profile's allow-list contains code.
// The allow-list is only meaningful for community admins.
func (p *UserProfile) AllowsCommunity(code string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.AllowedCommunities {
		if c == code {
			return true
		}
	}
	return false
}
