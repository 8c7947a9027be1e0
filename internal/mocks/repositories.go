package mocks

import (
	"context"
	"sort"

	"github.com/community-cert-dashboard/internal/models"
)

// MockDeveloperRepository is a mock implementation of DeveloperRepository
type MockDeveloperRepository struct {
	Records          map[string]models.DeveloperRecord
	Order            []string
	UpsertError      error
	BatchUpsertCalls int
	BatchSizes       []int
}

func NewMockDeveloperRepository() *MockDeveloperRepository {
	return &MockDeveloperRepository{
		Records: make(map[string]models.DeveloperRecord),
	}
}

func (m *MockDeveloperRepository) BatchUpsert(ctx context.Context, records []models.DeveloperRecord) (int, error) {
	m.BatchUpsertCalls++
	m.BatchSizes = append(m.BatchSizes, len(records))
	if m.UpsertError != nil {
		return 0, m.UpsertError
	}
	for _, r := range records {
		if _, ok := m.Records[r.DeveloperID]; !ok {
			m.Order = append(m.Order, r.DeveloperID)
		}
		m.Records[r.DeveloperID] = r
	}
	return len(records), nil
}

func (m *MockDeveloperRepository) GetAll(ctx context.Context) ([]models.DeveloperRecord, error) {
	records := make([]models.DeveloperRecord, 0, len(m.Order))
	for _, id := range m.Order {
		records = append(records, m.Records[id])
	}
	return records, nil
}

func (m *MockDeveloperRepository) Count(ctx context.Context) (int, error) {
	return len(m.Records), nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	Events map[string]models.Event
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{Events: make(map[string]models.Event)}
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	m.Events[event.ID] = *event
	return nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *models.Event) error {
	m.Events[event.ID] = *event
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	delete(m.Events, id)
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.Events[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *MockEventRepository) GetAll(ctx context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0, len(m.Events))
	for _, e := range m.Events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events, nil
}

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	Campaigns []models.Campaign
}

func NewMockCampaignRepository() *MockCampaignRepository {
	return &MockCampaignRepository{}
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	m.Campaigns = append(m.Campaigns, *campaign)
	return nil
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	for _, c := range m.Campaigns {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockCampaignRepository) ListRecent(ctx context.Context, limit int) ([]models.Campaign, error) {
	campaigns := make([]models.Campaign, len(m.Campaigns))
	copy(campaigns, m.Campaigns)
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt) })
	if limit > 0 && len(campaigns) > limit {
		campaigns = campaigns[:limit]
	}
	return campaigns, nil
}

// MockCommunityRepository is a mock implementation of CommunityRepository
type MockCommunityRepository struct {
	Meta            map[string]models.CommunityMetaData
	Managed         map[string]models.ManagedCommunity
	RegisteredCodes []string
}

func NewMockCommunityRepository() *MockCommunityRepository {
	return &MockCommunityRepository{
		Meta:    make(map[string]models.CommunityMetaData),
		Managed: make(map[string]models.ManagedCommunity),
	}
}

func (m *MockCommunityRepository) UpsertMeta(ctx context.Context, code string, meta models.CommunityMetaData) error {
	m.Meta[code] = meta
	return nil
}

func (m *MockCommunityRepository) GetAllMeta(ctx context.Context) (map[string]models.CommunityMetaData, error) {
	meta := make(map[string]models.CommunityMetaData, len(m.Meta))
	for k, v := range m.Meta {
		meta[k] = v
	}
	return meta, nil
}

func (m *MockCommunityRepository) CreateManaged(ctx context.Context, community *models.ManagedCommunity) error {
	m.Managed[community.Code] = *community
	return nil
}

func (m *MockCommunityRepository) DeleteManaged(ctx context.Context, code string) error {
	delete(m.Managed, code)
	return nil
}

func (m *MockCommunityRepository) GetAllManaged(ctx context.Context) ([]models.ManagedCommunity, error) {
	communities := make([]models.ManagedCommunity, 0, len(m.Managed))
	for _, c := range m.Managed {
		communities = append(communities, c)
	}
	sort.Slice(communities, func(i, j int) bool { return communities[i].Code < communities[j].Code })
	return communities, nil
}

func (m *MockCommunityRepository) SaveRegisteredCodes(ctx context.Context, codes []string, updatedBy string) error {
	m.RegisteredCodes = codes
	return nil
}

func (m *MockCommunityRepository) GetRegisteredCodes(ctx context.Context) ([]string, error) {
	return m.RegisteredCodes, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Profiles         map[string]*models.UserProfile
	CreateCalls      int
	LastLoginUpdates int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Profiles: make(map[string]*models.UserProfile)}
}

func (m *MockUserRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	m.CreateCalls++
	cp := *profile
	m.Profiles[profile.UID] = &cp
	return nil
}

func (m *MockUserRepository) GetByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	if p, ok := m.Profiles[uid]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	profiles := make([]models.UserProfile, 0, len(m.Profiles))
	for _, p := range m.Profiles {
		profiles = append(profiles, *p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UID < profiles[j].UID })
	return profiles, nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, uid string) error {
	m.LastLoginUpdates++
	return nil
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, uid string, role models.UserRole) error {
	if p, ok := m.Profiles[uid]; ok {
		p.Role = role
	}
	return nil
}

func (m *MockUserRepository) UpdateAllowedCommunities(ctx context.Context, uid string, codes []string) error {
	if p, ok := m.Profiles[uid]; ok {
		p.AllowedCommunities = codes
	}
	return nil
}
