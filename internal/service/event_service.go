package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/access"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// eventService is the concrete implementation of EventService
type eventService struct {
	events repository.EventRepository
	log    zerolog.Logger
}

// newEventService creates a new EventService
func newEventService(events repository.EventRepository, log zerolog.Logger) *eventService {
	return &eventService{
		events: events,
		log:    log.With().Str("service", "event").Logger(),
	}
}

// List returns the events visible to the principal, through the same
// scoping rule as developer records plus the "All" broadcast code.
func (s *eventService) List(ctx context.Context, profile *models.UserProfile) ([]models.Event, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}
	events, err := s.events.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return access.FilterEvents(profile, events), nil
}

// Save creates or updates an event. A community admin may only write
// events addressed to communities on their allow-list.
func (s *eventService) Save(ctx context.Context, profile *models.UserProfile, event models.Event) (*models.Event, error) {
	if !access.CanViewData(profile) {
		return nil, ErrForbidden
	}
	if event.CommunityCode != models.EventCommunityAll && !access.CanUploadRecord(profile, event.CommunityCode) {
		return nil, ErrForbidden
	}
	if event.Date == "" {
		event.Date = time.Now().Format("2006-01-02")
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
		event.CreatedBy = profile.Email
		if err := s.events.Create(ctx, &event); err != nil {
			return nil, err
		}
		return &event, nil
	}

	existing, err := s.events.GetByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	event.CreatedBy = existing.CreatedBy
	if err := s.events.Update(ctx, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes an event by id
func (s *eventService) Delete(ctx context.Context, profile *models.UserProfile, id string) error {
	if !access.CanViewData(profile) {
		return ErrForbidden
	}
	existing, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if existing.CommunityCode != models.EventCommunityAll && !access.CanUploadRecord(profile, existing.CommunityCode) {
		return ErrForbidden
	}
	return s.events.Delete(ctx, id)
}
