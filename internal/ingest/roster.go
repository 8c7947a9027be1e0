package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/community-cert-dashboard/internal/models"
)

// Required roster columns. First Name / Last Name are optional.
var RequiredHeaders = []string{
	"Email",
	"Code",
	"Country",
	"Percentage Completed",
	"Created At",
	"Accepted Marketing",
	"Accepted Membership",
	"Completed At",
}

// Timestamp layouts accepted in roster cells, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseRoster reads a developer roster CSV and returns one DeveloperRecord
// per data row, in input order. It is a pure transform: no side effects, and
// any invalid row rejects the whole file.
func ParseRoster(r io.Reader) ([]models.DeveloperRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ValidationError{Field: "header", Message: "file is empty"}
	}
	if err != nil {
		return nil, &ValidationError{Field: "header", Message: err.Error()}
	}

	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := headerMap[strings.ToLower(h)]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Field:   "header",
			Message: fmt.Sprintf("missing required headers: %s", strings.Join(missing, ", ")),
		}
	}

	var records []models.DeveloperRecord
	lineNum := 1 // header is line 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rowError(lineNum+1, "row", err.Error(), "")
		}
		lineNum++

		rec, verr := parseRow(row, headerMap, lineNum)
		if verr != nil {
			return nil, verr
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, headerMap map[string]int, lineNum int) (models.DeveloperRecord, *ValidationError) {
	var rec models.DeveloperRecord

	email := getField(row, headerMap, "email")

	progressRaw := getField(row, headerMap, "percentage completed")
	progress, err := strconv.Atoi(progressRaw)
	if err != nil || progress < 0 || progress > 100 {
		return rec, rowError(lineNum, "Percentage Completed", "must be an integer between 0 and 100", progressRaw)
	}

	enrolledRaw := getField(row, headerMap, "created at")
	enrolled, ok := parseTimestamp(enrolledRaw)
	if !ok {
		return rec, rowError(lineNum, "Created At", "unparseable timestamp", enrolledRaw)
	}

	var completedAt *time.Time
	if completedRaw := getField(row, headerMap, "completed at"); completedRaw != "" {
		completed, ok := parseTimestamp(completedRaw)
		if !ok {
			return rec, rowError(lineNum, "Completed At", "unparseable timestamp", completedRaw)
		}
		completed = repairClockAmbiguity(completed, enrolled)
		completedAt = &completed
	}

	firstName := getField(row, headerMap, "first name")
	lastName := getField(row, headerMap, "last name")
	if firstName == "" {
		firstName, lastName = deriveNames(email, lastName)
	}

	country := getField(row, headerMap, "country")
	if country == "" {
		country = "Unknown"
	}

	rec = models.DeveloperRecord{
		DeveloperID:           email,
		FirstName:             firstName,
		LastName:              lastName,
		CommunityCode:         getField(row, headerMap, "code"),
		Country:               country,
		CertificationProgress: progress,
		EnrollmentDate:        enrolled,
		CompletedAt:           completedAt,
		Subscribed:            parseFlag(getField(row, headerMap, "accepted marketing")),
		AcceptedMembership:    parseFlag(getField(row, headerMap, "accepted membership")),
		Certified:             progress == 100,
	}
	return rec, nil
}

// repairClockAmbiguity applies a best-effort fix for 12-hour-clock data: a
// completion before enrollment ("06:55" recorded where "18:55" was meant)
// gets 12 hours added, but only if that resolves the ordering. Otherwise the
// original value is kept, inverted interval and all; downstream duration
// math takes absolute values. This is a heuristic, not a guarantee.
func repairClockAmbiguity(completed, enrolled time.Time) time.Time {
	if !completed.Before(enrolled) {
		return completed
	}
	adjusted := completed.Add(12 * time.Hour)
	if !adjusted.Before(enrolled) {
		return adjusted
	}
	return completed
}

// parseFlag accepts true/yes/1 case-insensitively; anything else is false.
func parseFlag(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// deriveNames falls back to the identifier's local part when name columns
// are absent or blank, splitting on dot/underscore/hyphen/space. Derivation
// never fails a row; a malformed identifier just leaves names blank.
func deriveNames(email, lastName string) (string, string) {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "", lastName
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return "", lastName
	}
	first := capitalize(parts[0])
	if lastName == "" && len(parts) > 1 {
		lastName = capitalize(parts[len(parts)-1])
	}
	return first, lastName
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func getField(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
