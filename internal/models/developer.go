package models

import (
	"time"
)

// DeveloperRecord is one enrollment event for one person in one community.
// The developer identifier (email-shaped) is the natural key; re-uploading
// the same identifier overwrites the record wholesale.
type DeveloperRecord struct {
	DeveloperID           string     `json:"developer_id" db:"developer_id"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	CommunityCode         string     `json:"community_code" db:"community_code"`
	Country               string     `json:"country" db:"country"`
	CertificationProgress int        `json:"certification_progress" db:"certification_progress"`
	EnrollmentDate        time.Time  `json:"enrollment_date" db:"enrollment_date"`
	CompletedAt           *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Subscribed            bool       `json:"subscribed" db:"subscribed"`
	AcceptedMembership    bool       `json:"accepted_membership" db:"accepted_membership"`
	Certified             bool       `json:"certified" db:"certified"`
}

// DateRange bounds a query on enrollment date. A nil side is unbounded.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Bounded reports whether both sides of the range are set.
func (r DateRange) Bounded() bool {
	return r.From != nil && r.To != nil
}

// Contains reports whether t falls within the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// InitialDateRange derives a range spanning the data: min enrollment date
// normalized to start of day through max enrollment date at end of day.
// Empty input yields an unbounded range.
func InitialDateRange(records []DeveloperRecord) DateRange {
	if len(records) == 0 {
		return DateRange{}
	}
	min, max := records[0].EnrollmentDate, records[0].EnrollmentDate
	for _, r := range records[1:] {
		if r.EnrollmentDate.Before(min) {
			min = r.EnrollmentDate
		}
		if r.EnrollmentDate.After(max) {
			max = r.EnrollmentDate
		}
	}
	from := time.Date(min.Year(), min.Month(), min.Day(), 0, 0, 0, 0, min.Location())
	to := time.Date(max.Year(), max.Month(), max.Day(), 23, 59, 59, int(time.Millisecond*999), max.Location())
	return DateRange{From: &from, To: &to}
}
