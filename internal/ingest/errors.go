package ingest

import (
	"fmt"
)

// ValidationError rejects an entire upload: imports are all-or-nothing per
// file, so the first bad row or missing header aborts the batch before any
// records are produced.
type ValidationError struct {
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func rowError(line int, field, message, value string) *ValidationError {
	return &ValidationError{Line: line, Field: field, Message: message, Value: value}
}
