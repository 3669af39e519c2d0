package testutil

import (
	"github.com/mselser95/sportsbook-boot/pkg/types"
)

// CreateTestSports returns a small sports catalog.
func CreateTestSports() []types.Sport {
	return []types.Sport{
		{ID: "1", Name: "Football", EventsCount: 120, Live: true},
		{ID: "3", Name: "Tennis", EventsCount: 45},
		{ID: "8", Name: "Basketball", EventsCount: 30, Live: true},
	}
}

// CreateTestUser returns a logged-in user profile.
func CreateTestUser(id string) *types.UserProfile {
	return &types.UserProfile{
		UserID:   id,
		Username: "punter-" + id,
		Currency: "XAF",
	}
}

// Collaborators bundles every mock collaborator of the orchestrator.
type Collaborators struct {
	Reachability   *MockReachability
	Settings       *MockSettingsFeed
	Gateway        *MockGateway
	Catalog        *MockCatalog
	UserSession    *MockUserSession
	Configuration  *MockCounter
	Theme          *MockCounter
	Favorites      *MockCounter
	BettingSession *MockCounter
	Localizer      *MockLocalizer
}

// NewCollaborators creates a fresh set of mocks.
func NewCollaborators() *Collaborators {
	return &Collaborators{
		Reachability:   NewMockReachability(),
		Settings:       NewMockSettingsFeed(),
		Gateway:        NewMockGateway(),
		Catalog:        NewMockCatalog(),
		UserSession:    NewMockUserSession(),
		Configuration:  &MockCounter{},
		Theme:          &MockCounter{},
		Favorites:      &MockCounter{},
		BettingSession: &MockCounter{},
		Localizer:      NewMockLocalizer("en", "en", "fr"),
	}
}
