package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/access"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// recentCampaignLimit caps the campaign history listing.
const recentCampaignLimit = 50

// starterTemplates ship with the service so a new deployment can build a
// campaign immediately.
var starterTemplates = []models.EmailTemplate{
	{
		ID:      "1",
		Name:    "Progress Nudge (50% mark)",
		Subject: "Great Progress, {{first_name}}!",
		Body:    "Hi {{first_name}} {{last_name}},\n\nJust a quick note to say great work on reaching {{completion_percentage}}% in the certification program. Keep up the momentum!\n\nBest,\nCommunity Manager",
	},
	{
		ID:      "2",
		Name:    "Almost There! (80% mark)",
		Subject: "You're so close, {{first_name}}!",
		Body:    "Hi {{first_name}},\n\nWow, you are at {{completion_percentage}}% completion. You are so close to the finish line! Let us know if you need any help with the final modules.\n\nBest,\nCommunity Manager",
	},
	{
		ID:      "3",
		Name:    "Community Event Invitation",
		Subject: "Join us for {{event_name}}!",
		Body:    "Hi {{first_name}},\n\nWe are excited to invite you to our upcoming event: {{event_name}}.\n\nIt will take place on {{event_date}}.\n\nJoin here: {{event_link}}\n\nSee you there,\nCommunity Manager",
	},
}

// AudienceFilter selects campaign recipients. Only subscribed developers
// are ever addressable.
type AudienceFilter struct {
	// CommunityCode limits recipients to one community; "all" or empty
	// means every visible community.
	CommunityCode string `json:"community_code"`
	MinProgress   int    `json:"min_progress"`
	MaxProgress   int    `json:"max_progress"`
}

// AudiencePreview is the resolved recipient set plus a rendered sample.
type AudiencePreview struct {
	Count         int                      `json:"count"`
	Recipients    []models.DeveloperRecord `json:"recipients"`
	SampleSubject string                   `json:"sample_subject,omitempty"`
}

// QueueCampaignRequest describes a campaign to queue.
type QueueCampaignRequest struct {
	TemplateID string         `json:"template_id"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Filter     AudienceFilter `json:"filter"`
	EventID    string         `json:"event_id,omitempty"`
}

// campaignService is the concrete implementation of CampaignService
type campaignService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newCampaignService creates a new CampaignService
func newCampaignService(repos *repository.Repositories, log zerolog.Logger) *campaignService {
	return &campaignService{
		repos: repos,
		log:   log.With().Str("service", "campaign").Logger(),
	}
}

// Templates returns the built-in starter templates
func (s *campaignService) Templates() []models.EmailTemplate {
	return starterTemplates
}

// PreviewAudience resolves the recipient set for a filter without queueing
// anything.
func (s *campaignService) PreviewAudience(ctx context.Context, profile *models.UserProfile, filter AudienceFilter) (*AudiencePreview, error) {
	recipients, err := s.audience(ctx, profile, filter)
	if err != nil {
		return nil, err
	}
	preview := &AudiencePreview{Count: len(recipients), Recipients: recipients}
	return preview, nil
}

// Queue resolves the audience and persists a campaign request with status
// "queued". Event placeholders are resolved now, while the event still
// exists; per-recipient tags are stored verbatim for the external delivery
// worker, which also owns all later status transitions.
func (s *campaignService) Queue(ctx context.Context, profile *models.UserProfile, req QueueCampaignRequest) (*models.Campaign, error) {
	subject, body := req.Subject, req.Body
	templateName := "custom"
	if req.TemplateID != "" {
		for _, t := range starterTemplates {
			if t.ID == req.TemplateID {
				subject, body, templateName = t.Subject, t.Body, t.Name
				break
			}
		}
	}
	if subject == "" || body == "" {
		return nil, &invalidCampaignError{"subject and body are required"}
	}

	recipients, err := s.audience(ctx, profile, req.Filter)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, &invalidCampaignError{"no subscribed developers match the filters"}
	}

	if req.EventID != "" {
		event, err := s.repos.Event.GetByID(ctx, req.EventID)
		if err != nil {
			return nil, err
		}
		if event != nil {
			subject = RenderEventTags(subject, event)
			body = RenderEventTags(body, event)
		}
	}

	campaign := &models.Campaign{
		ID:             uuid.New().String(),
		TemplateName:   templateName,
		Subject:        subject,
		Body:           body,
		CommunityCode:  req.Filter.CommunityCode,
		MinProgress:    req.Filter.MinProgress,
		MaxProgress:    req.Filter.MaxProgress,
		RecipientCount: len(recipients),
		Status:         models.CampaignQueued,
		CreatedBy:      profile.Email,
		CreatedAt:      time.Now(),
	}
	if err := s.repos.Campaign.Create(ctx, campaign); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("campaign_id", campaign.ID).
		Int("recipients", campaign.RecipientCount).
		Str("created_by", campaign.CreatedBy).
		Msg("Campaign queued")

	return campaign, nil
}

// ListRecent returns the newest campaigns for the history view
func (s *campaignService) ListRecent(ctx context.Context, profile *models.UserProfile) ([]models.Campaign, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}
	return s.repos.Campaign.ListRecent(ctx, recentCampaignLimit)
}

// audience applies the addressability rules: visible to the caller,
// subscribed, community match, progress within [min, max].
func (s *campaignService) audience(ctx context.Context, profile *models.UserProfile, filter AudienceFilter) ([]models.DeveloperRecord, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}
	records, err := s.repos.Developer.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	scoped := access.FilterDevelopers(profile, records)

	maxProgress := filter.MaxProgress
	if maxProgress == 0 {
		maxProgress = 100
	}

	var recipients []models.DeveloperRecord
	for _, r := range scoped {
		if !r.Subscribed {
			continue
		}
		if filter.CommunityCode != "" && filter.CommunityCode != "all" && r.CommunityCode != filter.CommunityCode {
			continue
		}
		if r.CertificationProgress < filter.MinProgress || r.CertificationProgress > maxProgress {
			continue
		}
		recipients = append(recipients, r)
	}
	return recipients, nil
}

// RenderTags substitutes per-developer placeholders in a template string.
func RenderTags(text string, dev models.DeveloperRecord) string {
	replacer := strings.NewReplacer(
		"{{first_name}}", dev.FirstName,
		"{{last_name}}", dev.LastName,
		"{{email}}", dev.DeveloperID,
		"{{completion_percentage}}", strconv.Itoa(dev.CertificationProgress),
		"{{community_code}}", dev.CommunityCode,
	)
	return replacer.Replace(text)
}

// RenderEventTags substitutes event placeholders in a template string.
func RenderEventTags(text string, event *models.Event) string {
	link := event.Link
	if link == "" {
		link = "#"
	}
	replacer := strings.NewReplacer(
		"{{event_name}}", event.Name,
		"{{event_date}}", event.Date,
		"{{event_link}}", link,
	)
	return replacer.Replace(text)
}

// invalidCampaignError rejects a malformed queue request.
type invalidCampaignError struct {
	reason string
}

func (e *invalidCampaignError) Error() string {
	return e.reason
}

// IsInvalidCampaign reports whether err is a campaign validation failure.
func IsInvalidCampaign(err error) bool {
	_, ok := err.(*invalidCampaignError)
	return ok
}
