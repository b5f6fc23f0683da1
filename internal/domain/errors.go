package domain

import (
	"fmt"
	"strings"
)

// FieldViolation lists the required fields a single record is missing
type FieldViolation struct {
	RecordID string   `json:"record_id"`
	Fields   []string `json:"fields"`
}

// SchemaError reports an empty batch or records missing required fields.
// It is fatal: no report is produced.
type SchemaError struct {
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

func (e *SchemaError) Error() string {
	if len(e.Violations) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: missing %s", v.RecordID, strings.Join(v.Fields, ", ")))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// NewEmptyBatchError reports that the input batch contained no records
func NewEmptyBatchError() *SchemaError {
	return &SchemaError{Message: "empty incident batch"}
}

// NewMissingFieldsError reports records that failed required-field validation
func NewMissingFieldsError(violations []FieldViolation) *SchemaError {
	return &SchemaError{Message: "incident records missing required fields", Violations: violations}
}

// FormatError reports a timestamp field that was present but unparsable.
// It is fatal: no report is produced.
type FormatError struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("record %s: field %s: cannot parse %q as timestamp", e.RecordID, e.Field, e.Value)
}

// DataQualityWarning flags a record that stays in the totals but is excluded
// from time-sensitive statistics. Warnings never abort report generation.
type DataQualityWarning struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

func (w DataQualityWarning) String() string {
	return fmt.Sprintf("record %s: %s: %s", w.RecordID, w.Field, w.Reason)
}
