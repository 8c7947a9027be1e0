package models

import (
	"time"
)

// CampaignStatus tracks delivery of a queued email campaign. This service
// only ever writes StatusQueued; the remaining transitions are driven by an
// external delivery worker.
type CampaignStatus string

const (
	CampaignQueued     CampaignStatus = "queued"
	CampaignProcessing CampaignStatus = "processing"
	CampaignSent       CampaignStatus = "sent"
	CampaignFailed     CampaignStatus = "failed"
)

// Campaign is one queued email campaign request.
type Campaign struct {
	ID             string         `json:"id" db:"id"`
	TemplateName   string         `json:"template_name" db:"template_name"`
	Subject        string         `json:"subject" db:"subject"`
	Body           string         `json:"body" db:"body"`
	CommunityCode  string         `json:"community_code" db:"community_code"`
	MinProgress    int            `json:"min_progress" db:"min_progress"`
	MaxProgress    int            `json:"max_progress" db:"max_progress"`
	RecipientCount int            `json:"recipient_count" db:"recipient_count"`
	Status         CampaignStatus `json:"status" db:"status"`
	CreatedBy      string         `json:"created_by" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// EmailTemplate is a reusable campaign template with {{tag}} placeholders.
type EmailTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
