package models

// EventCommunityAll is the sentinel community code for events visible to
// every community admin.
const EventCommunityAll = "All"

// EventType is the temporal status of an event.
type EventType string

const (
	EventUpcoming EventType = "upcoming"
	EventPast     EventType = "past"
)

// Event is a community calendar entry. Events carry no aggregation logic;
// they are included here because reads pass through the same access scoping
// as developer records.
type Event struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Date          string    `json:"date" db:"date"`
	Description   string    `json:"description" db:"description"`
	Type          EventType `json:"type" db:"type"`
	Category      string    `json:"category" db:"category"`
	CommunityCode string    `json:"community_code" db:"community_code"`
	Link          string    `json:"link" db:"link"`
	CreatedBy     string    `json:"created_by,omitempty" db:"created_by"`
}
