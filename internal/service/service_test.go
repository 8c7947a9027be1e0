package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/config"
	"github.com/community-cert-dashboard/internal/mocks"
	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
	"github.com/community-cert-dashboard/internal/service"
)

const testRosterHeader = "Email,First Name,Last Name,Code,Country,Percentage Completed,Created At,Accepted Marketing,Accepted Membership,Completed At\n"

func testSetup(batchSize int) (*service.Services, *repository.Repositories) {
	repos := &repository.Repositories{
		Developer: mocks.NewMockDeveloperRepository(),
		Event:     mocks.NewMockEventRepository(),
		Campaign:  mocks.NewMockCampaignRepository(),
		Community: mocks.NewMockCommunityRepository(),
		User:      mocks.NewMockUserRepository(),
	}
	cfg := &config.Config{
		Upload: config.UploadConfig{BatchSize: batchSize, MaxUploadSize: 50 * 1024 * 1024},
	}
	return service.NewServices(repos, cfg, zerolog.Nop()), repos
}

func superAdmin() *models.UserProfile {
	return &models.UserProfile{UID: "su", Email: "su@x.com", Role: models.RoleSuperAdmin}
}

func communityAdmin(codes ...string) *models.UserProfile {
	return &models.UserProfile{UID: "ca", Email: "ca@x.com", Role: models.RoleCommunityAdmin, AllowedCommunities: codes}
}

func viewerProfile() *models.UserProfile {
	return &models.UserProfile{UID: "v", Email: "v@x.com", Role: models.RoleViewer}
}

func rosterCSV(rows ...string) *strings.Reader {
	return strings.NewReader(testRosterHeader + strings.Join(rows, "\n") + "\n")
}

func TestRosterUpload_ChunkedWrites(t *testing.T) {
	services, repos := testSetup(2)

	result, err := services.Roster.Upload(context.Background(), superAdmin(), rosterCSV(
		"a@x.com,A,X,NY,USA,10,2024-01-01,no,no,",
		"b@x.com,B,X,NY,USA,20,2024-01-02,no,no,",
		"c@x.com,C,X,SF,USA,30,2024-01-03,no,no,",
		"d@x.com,D,X,SF,USA,40,2024-01-04,no,no,",
		"e@x.com,E,X,LA,USA,50,2024-01-05,no,no,",
	))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if result.Total != 5 || result.Written != 5 || result.Skipped != 0 {
		t.Errorf("Expected 5/5/0, got %d/%d/%d", result.Total, result.Written, result.Skipped)
	}

	mock := repos.Developer.(*mocks.MockDeveloperRepository)
	if mock.BatchUpsertCalls != 3 {
		t.Errorf("Expected 3 chunks, got %d", mock.BatchUpsertCalls)
	}
	expectedSizes := []int{2, 2, 1}
	for i, size := range expectedSizes {
		if mock.BatchSizes[i] != size {
			t.Errorf("Chunk %d: expected size %d, got %d", i, size, mock.BatchSizes[i])
		}
	}
}

func TestRosterUpload_SilentlySkipsOutOfScope(t *testing.T) {
	services, repos := testSetup(500)

	result, err := services.Roster.Upload(context.Background(), communityAdmin("NY"), rosterCSV(
		"a@x.com,A,X,NY,USA,10,2024-01-01,no,no,",
		"b@x.com,B,X,SF,USA,20,2024-01-02,no,no,",
		"c@x.com,C,X,NY,USA,30,2024-01-03,no,no,",
	))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if result.Total != 3 || result.Written != 2 || result.Skipped != 1 {
		t.Errorf("Expected 3/2/1, got %d/%d/%d", result.Total, result.Written, result.Skipped)
	}

	mock := repos.Developer.(*mocks.MockDeveloperRepository)
	if _, ok := mock.Records["b@x.com"]; ok {
		t.Error("Out-of-scope record should not have been written")
	}
}

func TestRosterUpload_RejectsWholeFileBeforeWriting(t *testing.T) {
	services, repos := testSetup(500)

	_, err := services.Roster.Upload(context.Background(), superAdmin(), rosterCSV(
		"a@x.com,A,X,NY,USA,10,2024-01-01,no,no,",
		"b@x.com,B,X,SF,USA,not-a-number,2024-01-02,no,no,",
	))
	if err == nil {
		t.Fatal("Expected validation error")
	}

	mock := repos.Developer.(*mocks.MockDeveloperRepository)
	if mock.BatchUpsertCalls != 0 {
		t.Errorf("Nothing should be written on a rejected file, got %d calls", mock.BatchUpsertCalls)
	}
}

func TestRosterUpload_ViewerForbidden(t *testing.T) {
	services, _ := testSetup(500)

	_, err := services.Roster.Upload(context.Background(), viewerProfile(), rosterCSV(
		"a@x.com,A,X,NY,USA,10,2024-01-01,no,no,",
	))
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestRosterUpload_PartialWriteGapRetained(t *testing.T) {
	services, repos := testSetup(1)
	mock := repos.Developer.(*mocks.MockDeveloperRepository)

	// First chunk succeeds, then the repository starts failing. Written
	// count must reflect the committed chunk only.
	_, err := services.Roster.Upload(context.Background(), superAdmin(), rosterCSV(
		"a@x.com,A,X,NY,USA,10,2024-01-01,no,no,",
	))
	if err != nil {
		t.Fatalf("Seed upload failed: %v", err)
	}

	mock.UpsertError = errors.New("connection reset")
	result, err := services.Roster.Upload(context.Background(), superAdmin(), rosterCSV(
		"b@x.com,B,X,NY,USA,20,2024-01-02,no,no,",
	))
	if err == nil {
		t.Fatal("Expected chunk write error")
	}
	if result == nil || result.Written != 0 {
		t.Errorf("Expected partial result with 0 written, got %+v", result)
	}
	if len(mock.Records) != 1 {
		t.Errorf("Earlier committed records must survive, got %d", len(mock.Records))
	}
}

func TestRosterExport_ScopedAndFiltered(t *testing.T) {
	services, repos := testSetup(500)
	mock := repos.Developer.(*mocks.MockDeveloperRepository)
	mock.BatchUpsert(context.Background(), []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "NY", Certified: true, EnrollmentDate: time.Now()},
		{DeveloperID: "b@x.com", CommunityCode: "NY", EnrollmentDate: time.Now()},
		{DeveloperID: "c@x.com", CommunityCode: "SF", Certified: true, EnrollmentDate: time.Now()},
	})

	var buf bytes.Buffer
	count, err := services.Roster.Export(context.Background(), communityAdmin("NY"), &buf, service.ExportOptions{Filter: "certified"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 exported row, got %d", count)
	}
	if !strings.Contains(buf.String(), "a@x.com") || strings.Contains(buf.String(), "c@x.com") {
		t.Errorf("Export content wrong:\n%s", buf.String())
	}
}

func TestEventSave_CommunityScoping(t *testing.T) {
	services, _ := testSetup(500)
	ctx := context.Background()

	// Community admin can write an event for an allowed code.
	saved, err := services.Event.Save(ctx, communityAdmin("NY"), models.Event{Name: "Meetup", Date: "2024-02-01", CommunityCode: "NY"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("Created event should receive an id")
	}
	if saved.CreatedBy != "ca@x.com" {
		t.Errorf("Expected creator ca@x.com, got %s", saved.CreatedBy)
	}

	// But not for someone else's community.
	_, err = services.Event.Save(ctx, communityAdmin("NY"), models.Event{Name: "Meetup", Date: "2024-02-01", CommunityCode: "SF"})
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	// Broadcast events are writable by any admin.
	if _, err := services.Event.Save(ctx, communityAdmin("NY"), models.Event{Name: "Summit", Date: "2024-03-01", CommunityCode: models.EventCommunityAll}); err != nil {
		t.Errorf("Broadcast event save failed: %v", err)
	}
}

func TestEventSave_UpdatePreservesCreator(t *testing.T) {
	services, _ := testSetup(500)
	ctx := context.Background()

	created, err := services.Event.Save(ctx, superAdmin(), models.Event{Name: "Meetup", Date: "2024-02-01", CommunityCode: "NY"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	created.Name = "Renamed Meetup"
	created.CreatedBy = "intruder@x.com"
	updated, err := services.Event.Save(ctx, superAdmin(), *created)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.CreatedBy != "su@x.com" {
		t.Errorf("Creator must be preserved on update, got %s", updated.CreatedBy)
	}
	if updated.Name != "Renamed Meetup" {
		t.Errorf("Name not updated, got %s", updated.Name)
	}
}

func TestEventDelete_NotFound(t *testing.T) {
	services, _ := testSetup(500)
	err := services.Event.Delete(context.Background(), superAdmin(), "missing")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCampaignQueue_WritesQueuedStatus(t *testing.T) {
	services, repos := testSetup(500)
	ctx := context.Background()

	repos.Developer.BatchUpsert(ctx, []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "NY", Subscribed: true, CertificationProgress: 60, EnrollmentDate: time.Now()},
		{DeveloperID: "b@x.com", CommunityCode: "NY", Subscribed: false, CertificationProgress: 60, EnrollmentDate: time.Now()},
		{DeveloperID: "c@x.com", CommunityCode: "NY", Subscribed: true, CertificationProgress: 10, EnrollmentDate: time.Now()},
	})

	campaign, err := services.Campaign.Queue(ctx, superAdmin(), service.QueueCampaignRequest{
		Subject: "Hello {{first_name}}",
		Body:    "You are at {{completion_percentage}}%",
		Filter:  service.AudienceFilter{CommunityCode: "NY", MinProgress: 50},
	})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}

	if campaign.Status != models.CampaignQueued {
		t.Errorf("Expected status queued, got %s", campaign.Status)
	}
	if campaign.RecipientCount != 1 {
		t.Errorf("Expected 1 recipient (subscribed, >=50%%), got %d", campaign.RecipientCount)
	}
	if campaign.CreatedBy != "su@x.com" {
		t.Errorf("Expected creator su@x.com, got %s", campaign.CreatedBy)
	}

	mock := repos.Campaign.(*mocks.MockCampaignRepository)
	if len(mock.Campaigns) != 1 {
		t.Fatalf("Expected 1 persisted campaign, got %d", len(mock.Campaigns))
	}
	// Per-recipient tags are stored verbatim for the delivery worker.
	if !strings.Contains(mock.Campaigns[0].Subject, "{{first_name}}") {
		t.Errorf("Per-recipient tags must be stored unrendered, got %q", mock.Campaigns[0].Subject)
	}
}

func TestCampaignQueue_EmptyAudienceRejected(t *testing.T) {
	services, _ := testSetup(500)

	_, err := services.Campaign.Queue(context.Background(), superAdmin(), service.QueueCampaignRequest{
		Subject: "S",
		Body:    "B",
	})
	if !service.IsInvalidCampaign(err) {
		t.Errorf("Expected invalid campaign error, got %v", err)
	}
}

func TestCampaignQueue_EventTagsRenderedAtQueueTime(t *testing.T) {
	services, repos := testSetup(500)
	ctx := context.Background()

	repos.Developer.BatchUpsert(ctx, []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "NY", Subscribed: true, CertificationProgress: 60, EnrollmentDate: time.Now()},
	})
	event, err := services.Event.Save(ctx, superAdmin(), models.Event{Name: "Go Summit", Date: "2024-03-01", CommunityCode: "NY", Link: "https://example.com"})
	if err != nil {
		t.Fatalf("Event save failed: %v", err)
	}

	campaign, err := services.Campaign.Queue(ctx, superAdmin(), service.QueueCampaignRequest{
		Subject: "Join {{event_name}}",
		Body:    "On {{event_date}}: {{event_link}}",
		EventID: event.ID,
	})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}

	if campaign.Subject != "Join Go Summit" {
		t.Errorf("Event tags not rendered in subject: %q", campaign.Subject)
	}
	if !strings.Contains(campaign.Body, "2024-03-01") || !strings.Contains(campaign.Body, "https://example.com") {
		t.Errorf("Event tags not rendered in body: %q", campaign.Body)
	}
}

func TestUserAuthenticate_Lifecycle(t *testing.T) {
	services, repos := testSetup(500)
	ctx := context.Background()
	mock := repos.User.(*mocks.MockUserRepository)

	identity := service.Identity{UID: "uid-1", Email: "new@x.com", DisplayName: "New User"}

	profile, err := services.User.Authenticate(ctx, identity)
	if err != nil {
		t.Fatalf("First authenticate failed: %v", err)
	}
	if profile.Role != models.RoleViewer {
		t.Errorf("First-time principal must be a viewer, got %s", profile.Role)
	}
	if len(profile.AllowedCommunities) != 0 {
		t.Errorf("First-time principal must have an empty allow-list, got %v", profile.AllowedCommunities)
	}
	if mock.CreateCalls != 1 {
		t.Errorf("Expected 1 profile creation, got %d", mock.CreateCalls)
	}

	// Second sight refreshes last login without re-creating.
	if _, err := services.User.Authenticate(ctx, identity); err != nil {
		t.Fatalf("Second authenticate failed: %v", err)
	}
	if mock.CreateCalls != 1 {
		t.Errorf("Repeat authentication must not create again, got %d creations", mock.CreateCalls)
	}
	if mock.LastLoginUpdates != 1 {
		t.Errorf("Expected 1 last-login refresh, got %d", mock.LastLoginUpdates)
	}
}

func TestUserAdmin_SuperAdminOnly(t *testing.T) {
	services, _ := testSetup(500)
	ctx := context.Background()

	if _, err := services.User.List(ctx, communityAdmin("NY")); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("List: expected ErrForbidden, got %v", err)
	}
	if err := services.User.SetRole(ctx, communityAdmin("NY"), "uid-1", models.RoleSuperAdmin); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("SetRole: expected ErrForbidden, got %v", err)
	}
	if err := services.User.SetRole(ctx, superAdmin(), "uid-1", "owner"); !errors.Is(err, service.ErrInvalidRole) {
		t.Errorf("SetRole with bad role: expected ErrInvalidRole, got %v", err)
	}
}

func TestUserAdmin_RoleAssignment(t *testing.T) {
	services, repos := testSetup(500)
	ctx := context.Background()

	if _, err := services.User.Authenticate(ctx, service.Identity{UID: "uid-1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if err := services.User.SetRole(ctx, superAdmin(), "uid-1", models.RoleCommunityAdmin); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	if err := services.User.SetAllowedCommunities(ctx, superAdmin(), "uid-1", []string{"NY", "SF"}); err != nil {
		t.Fatalf("SetAllowedCommunities failed: %v", err)
	}

	mock := repos.User.(*mocks.MockUserRepository)
	stored := mock.Profiles["uid-1"]
	if stored.Role != models.RoleCommunityAdmin {
		t.Errorf("Expected community_admin, got %s", stored.Role)
	}
	if len(stored.AllowedCommunities) != 2 {
		t.Errorf("Expected 2 allowed communities, got %v", stored.AllowedCommunities)
	}
}

func TestDirectory_RegistryAndStats(t *testing.T) {
	services, repos := testSetup(500)
	ctx := context.Background()

	repos.Developer.BatchUpsert(ctx, []models.DeveloperRecord{
		{DeveloperID: "a@x.com", CommunityCode: "NY", CertificationProgress: 50, EnrollmentDate: time.Now()},
	})
	if err := services.Directory.CreateManaged(ctx, superAdmin(), "SF", "San Francisco", "west coast"); err != nil {
		t.Fatalf("CreateManaged failed: %v", err)
	}

	registry, err := services.Directory.Registry(ctx, superAdmin())
	if err != nil {
		t.Fatalf("Registry failed: %v", err)
	}
	if len(registry) != 2 {
		t.Fatalf("Expected 2 registry entries, got %d", len(registry))
	}
	if registry[0].Code != "NY" || registry[0].Source != models.SourceCSV {
		t.Errorf("Expected derived NY first, got %+v", registry[0])
	}
	if registry[1].Code != "SF" || registry[1].Source != models.SourceManual {
		t.Errorf("Expected manual SF second, got %+v", registry[1])
	}

	if _, err := services.Directory.UploadRegisteredCodes(ctx, superAdmin(), strings.NewReader("Code\nNY\nSF\nLA\n")); err != nil {
		t.Fatalf("UploadRegisteredCodes failed: %v", err)
	}

	stats, err := services.Directory.ManagementStats(ctx, superAdmin(), models.DateRange{})
	if err != nil {
		t.Fatalf("ManagementStats failed: %v", err)
	}
	if stats.TotalRegistered != 3 || stats.ActiveCount != 1 || stats.InactiveCount != 2 {
		t.Errorf("Expected 3 registered / 1 active / 2 inactive, got %+v", stats)
	}
}

func TestDirectory_MutationsRequireSuperAdmin(t *testing.T) {
	services, _ := testSetup(500)
	ctx := context.Background()

	if err := services.Directory.CreateManaged(ctx, communityAdmin("NY"), "NY", "", ""); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("CreateManaged: expected ErrForbidden, got %v", err)
	}
	if err := services.Directory.DeleteManaged(ctx, communityAdmin("NY"), "NY"); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("DeleteManaged: expected ErrForbidden, got %v", err)
	}
	if _, err := services.Directory.UploadRegisteredCodes(ctx, communityAdmin("NY"), strings.NewReader("Code\nNY\n")); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("UploadRegisteredCodes: expected ErrForbidden, got %v", err)
	}
}

func TestCommunityDashboard_ViewerForbidden(t *testing.T) {
	services, _ := testSetup(500)

	_, err := services.Community.Dashboard(context.Background(), viewerProfile(), models.DateRange{})
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestCommunityReport_UnknownCode(t *testing.T) {
	services, _ := testSetup(500)

	_, err := services.Community.Report(context.Background(), superAdmin(), "NOPE", models.DateRange{})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCommunityMeta_ToggleAndFollowUp(t *testing.T) {
	services, repos := testSetup(500)
	ctx := context.Background()

	if err := services.Community.ToggleImportant(ctx, superAdmin(), "NY"); err != nil {
		t.Fatalf("ToggleImportant failed: %v", err)
	}
	mock := repos.Community.(*mocks.MockCommunityRepository)
	if !mock.Meta["NY"].IsImportant {
		t.Error("Expected NY flagged important")
	}
	if err := services.Community.ToggleImportant(ctx, superAdmin(), "NY"); err != nil {
		t.Fatalf("Second toggle failed: %v", err)
	}
	if mock.Meta["NY"].IsImportant {
		t.Error("Expected NY unflagged after second toggle")
	}

	date := "2024-02-15"
	if err := services.Community.SetFollowUp(ctx, superAdmin(), "NY", &date); err != nil {
		t.Fatalf("SetFollowUp failed: %v", err)
	}
	if mock.Meta["NY"].FollowUpDate == nil || *mock.Meta["NY"].FollowUpDate != date {
		t.Errorf("Follow-up not persisted: %+v", mock.Meta["NY"])
	}
	if err := services.Community.SetFollowUp(ctx, superAdmin(), "NY", nil); err != nil {
		t.Fatalf("Clearing follow-up failed: %v", err)
	}
	if mock.Meta["NY"].FollowUpDate != nil {
		t.Error("Expected follow-up cleared")
	}
}
