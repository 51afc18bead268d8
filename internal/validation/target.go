package validation

import (
	"math"
	"strings"

	"github.com/habitedge/habitedge/internal/model"
)

// ValidateTarget checks a target before create or edit.
func ValidateTarget(t *model.Target) error {
	if strings.TrimSpace(t.Title) == "" {
		return &Error{Field: "title", Message: "title is required"}
	}
	if len(t.Title) > 200 {
		return &Error{Field: "title", Message: "title is too long (max 200 characters)"}
	}

	switch t.Kind {
	case model.TargetKindNumeric:
		if t.TargetValue <= 0 {
			return &Error{Field: "targetValue", Message: "target value is required for numeric targets"}
		}
		if math.IsNaN(t.TargetValue) || math.IsInf(t.TargetValue, 0) {
			return &Error{Field: "targetValue", Message: "target value must be a finite number"}
		}
	case model.TargetKindBoolean:
		// no target value needed, completion is a single flag
	default:
		return &Error{Field: "kind", Message: `kind must be "numeric" or "boolean"`}
	}

	return nil
}

// ValidateProgressEntry checks one progress contribution.
func ValidateProgressEntry(e model.ProgressEntry) error {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return &Error{Field: "value", Message: "value must be a finite number"}
	}
	if e.Timestamp.IsZero() {
		return &Error{Field: "timestamp", Message: "timestamp is required"}
	}
	if len(e.Note) > 500 {
		return &Error{Field: "note", Message: "note is too long (max 500 characters)"}
	}
	return nil
}
