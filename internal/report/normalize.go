package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

// requiredFields must be present and non-empty on every raw record.
// resolved_at is intentionally absent: it is optional even for resolved
// incidents (a data-quality condition, not a schema violation).
var requiredFields = []string{
	"id",
	"title",
	"priority",
	"department",
	"category",
	"status",
	"created_at",
	"sla_status",
}

// timestampLayouts are tried in order when parsing created_at/resolved_at
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize validates a raw incident batch and converts it into typed
// records, preserving input order. An empty batch or missing required fields
// fail with a SchemaError; a present but unparsable timestamp fails with a
// FormatError naming the record and field. Non-fatal data-quality conditions
// (resolved without a timestamp, resolved before created) are returned as
// warnings alongside the records.
func Normalize(raw []map[string]any) ([]domain.IncidentRecord, []domain.DataQualityWarning, error) {
	if len(raw) == 0 {
		return nil, nil, domain.NewEmptyBatchError()
	}

	var violations []domain.FieldViolation
	for i, m := range raw {
		var missing []string
		for _, field := range requiredFields {
			if !hasValue(m, field) {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			violations = append(violations, domain.FieldViolation{
				RecordID: recordLabel(m, i),
				Fields:   missing,
			})
		}
	}
	if len(violations) > 0 {
		return nil, nil, domain.NewMissingFieldsError(violations)
	}

	records := make([]domain.IncidentRecord, 0, len(raw))
	var warnings []domain.DataQualityWarning
	for _, m := range raw {
		id := stringValue(m["id"])

		createdAt, err := parseTimestamp(m["created_at"])
		if err != nil {
			return nil, nil, &domain.FormatError{RecordID: id, Field: "created_at", Value: stringValue(m["created_at"])}
		}

		rec := domain.IncidentRecord{
			ID:         id,
			Title:      stringValue(m["title"]),
			Priority:   stringValue(m["priority"]),
			Department: stringValue(m["department"]),
			Category:   stringValue(m["category"]),
			Status:     domain.IncidentStatus(stringValue(m["status"])),
			CreatedAt:  createdAt,
			SLAStatus:  stringValue(m["sla_status"]),
		}

		if hasValue(m, "resolved_at") {
			resolvedAt, err := parseTimestamp(m["resolved_at"])
			if err != nil {
				return nil, nil, &domain.FormatError{RecordID: id, Field: "resolved_at", Value: stringValue(m["resolved_at"])}
			}
			rec.ResolvedAt = &resolvedAt
			if rec.IsResolved() && resolvedAt.Before(createdAt) {
				warnings = append(warnings, domain.DataQualityWarning{
					RecordID: id,
					Field:    "resolved_at",
					Reason:   "resolution timestamp precedes creation; excluded from resolution-time statistics",
				})
			}
		} else if rec.IsResolved() {
			warnings = append(warnings, domain.DataQualityWarning{
				RecordID: id,
				Field:    "resolved_at",
				Reason:   "resolved incident has no resolution timestamp; excluded from resolution-time statistics",
			})
		}

		records = append(records, rec)
	}

	return records, warnings, nil
}

// hasValue reports whether the field is present with a usable value
func hasValue(m map[string]any, field string) bool {
	v, ok := m[field]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// recordLabel prefers the record's own id; falls back to its batch position
func recordLabel(m map[string]any, index int) string {
	if id := stringValue(m["id"]); id != "" {
		return id
	}
	return fmt.Sprintf("record[%d]", index)
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func parseTimestamp(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s := strings.TrimSpace(stringValue(v))
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
