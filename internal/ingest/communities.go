package ingest

import (
	"encoding/csv"
	"io"
	"strings"
)

// Accepted header names for the community-list CSV, matched
// case-insensitively.
var communityHeaders = []string{"code", "community code", "community"}

// ParseCommunityList reads a CSV of community codes and returns the unique
// codes in first-appearance order. The file must contain a header named
// "Code", "Community Code", or "Community".
func ParseCommunityList(r io.Reader) ([]string, error) {
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

	codeIdx := -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, want := range communityHeaders {
			if name == want {
				codeIdx = i
				break
			}
		}
		if codeIdx >= 0 {
			break
		}
	}
	if codeIdx < 0 {
		return nil, &ValidationError{
			Field:   "header",
			Message: `must contain a header named "Code", "Community Code", or "Community"`,
		}
	}

	seen := make(map[string]bool)
	var codes []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if codeIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	return codes, nil
}
