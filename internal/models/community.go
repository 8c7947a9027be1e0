package models

import (
	"time"
)

// Community is a per-code rollup computed from the filtered record set.
// It is recomputed from scratch on every change and never persisted.
type Community struct {
	Code                  string            `json:"code"`
	DeveloperCount        int               `json:"developer_count"`
	SubscribedCount       int               `json:"subscribed_count"`
	CertifiedCount        int               `json:"certified_count"`
	AverageProgress       float64           `json:"average_progress"`
	AverageCompletionDays *float64          `json:"average_completion_days"`
	Developers            []DeveloperRecord `json:"developers"`
}

// CommunityMetaData is an administrator annotation merged onto a Community
// by code. It is the only part of a community rollup that is persisted, and
// it survives independently of whether the code currently has developers.
type CommunityMetaData struct {
	IsImportant  bool    `json:"is_important" db:"is_important"`
	FollowUpDate *string `json:"follow_up_date" db:"follow_up_date"`
}

// CommunityWithMetadata decorates a rollup with its annotation and the
// rapid-completion signal.
type CommunityWithMetadata struct {
	Community
	Meta                CommunityMetaData `json:"meta"`
	HasRapidCompletions bool              `json:"has_rapid_completions"`
}

// CommunitySource discriminates how a registry entry came to exist.
type CommunitySource string

const (
	// SourceManual marks entries registered explicitly by an administrator.
	SourceManual CommunitySource = "manual"
	// SourceCSV marks entries synthesized from codes observed in developer
	// records. These are never persisted.
	SourceCSV CommunitySource = "csv"
)

// ManagedCommunity is one entry in the community-code registry. Manual
// entries carry administrator-declared name/description and win over
// synthesized ones; use NewManualCommunity / NewDerivedCommunity rather
// than constructing the struct directly.
type ManagedCommunity struct {
	Code        string          `json:"code" db:"code"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Source      CommunitySource `json:"source" db:"source"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty" db:"created_by"`
}

// NewManualCommunity builds an administrator-declared registry entry.
func NewManualCommunity(code, name, description, createdBy string) ManagedCommunity {
	if name == "" {
		name = code
	}
	return ManagedCommunity{
		Code:        code,
		Name:        name,
		Description: description,
		Source:      SourceManual,
		CreatedAt:   time.Now(),
		CreatedBy:   createdBy,
	}
}

// NewDerivedCommunity builds a transient entry for a code observed only in
// developer records.
func NewDerivedCommunity(code string) ManagedCommunity {
	return ManagedCommunity{
		Code:      code,
		Name:      code,
		Source:    SourceCSV,
		CreatedAt: time.Now(),
	}
}
