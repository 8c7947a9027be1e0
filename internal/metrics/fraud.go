package metrics

import (
	"regexp"
	"strings"

	"github.com/community-cert-dashboard/internal/models"
)

// disposableEmailDomains is a fixed denylist of throwaway-mail providers,
// matched case-insensitively against the identifier's domain part.
var disposableEmailDomains = map[string]bool{
	"mailinator.com":    true,
	"temp-mail.org":     true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"yopmail.com":       true,
	"sharklasers.com":   true,
	"getnada.com":       true,
	"throwawaymail.com": true,
	"tempmailo.com":     true,
	"incognitomail.org": true,
	"tempr.email":       true,
	"moakt.com":         true,
	"maildrop.cc":       true,
}

var numericLocalRegex = regexp.MustCompile(`^\d+$`)

// FakeAccountStats summarizes the disposable/suspicious-account pass.
type FakeAccountStats struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RapidCompletionReport summarizes the rapid-completion pass. Developers
// keeps input order.
type RapidCompletionReport struct {
	Count      int                      `json:"count"`
	Developers []models.DeveloperRecord `json:"developers"`
}

// DetectFakeAccounts flags records whose identifier looks disposable: the
// domain is on the denylist, the local part carries a '+' alias, or the
// local part is entirely digits. The input is expected to be the already
// date- and access-scoped set; no further filtering happens here.
func DetectFakeAccounts(records []models.DeveloperRecord) FakeAccountStats {
	count := 0
	for _, r := range records {
		if IsSuspiciousIdentifier(r.DeveloperID) {
			count++
		}
	}
	stats := FakeAccountStats{Count: count}
	if len(records) > 0 {
		stats.Percentage = float64(count) / float64(len(records)) * 100
	}
	return stats
}

// IsSuspiciousIdentifier applies the three disposable-account criteria to a
// single identifier. Identifiers without a domain part are never flagged.
func IsSuspiciousIdentifier(id string) bool {
	local, domain, found := strings.Cut(id, "@")
	if !found || domain == "" {
		return false
	}
	if disposableEmailDomains[strings.ToLower(domain)] {
		return true
	}
	if strings.Contains(local, "+") {
		return true
	}
	return numericLocalRegex.MatchString(local)
}

// DetectRapidCompletions flags records completed strictly under five hours
// after enrollment. Like the fake-account pass it is stateless and operates
// on whatever set is currently in scope.
func DetectRapidCompletions(records []models.DeveloperRecord) RapidCompletionReport {
	report := RapidCompletionReport{}
	for _, r := range records {
		if isRapid(r) {
			report.Developers = append(report.Developers, r)
		}
	}
	report.Count = len(report.Developers)
	return report
}
