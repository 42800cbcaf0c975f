package course

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

func (k fieldKind) String() string {
	if k == kindNumber {
		return "number"
	}
	return "string"
}

type schemaField struct {
	name string
	kind fieldKind
}

// courseSchema lists the recognized payload keys in the order updates are applied.
var courseSchema = []schemaField{
	{FieldName, kindString},
	{FieldStart, kindString},
	{FieldEnd, kindString},
	{FieldLectures, kindNumber},
}

type FieldError struct {
	Field   string
	Problem string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Problem)
}

type ValidationResult struct {
	Errors []FieldError
}

func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

func (r ValidationResult) String() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// ValidateCourse checks a create payload: every recognized key present with its
// declared type. Unknown keys are ignored.
func ValidateCourse(payload map[string]any, logger *slog.Logger) ValidationResult {
	var result ValidationResult
	for _, f := range courseSchema {
		value, ok := payload[f.name]
		if !ok {
			result.Errors = append(result.Errors, FieldError{Field: f.name, Problem: "is required"})
			continue
		}
		if problem := f.kind.check(value); problem != "" {
			result.Errors = append(result.Errors, FieldError{Field: f.name, Problem: problem})
		}
	}
	logResult(logger, "create", result)
	return result
}

// ValidateCoursePatch checks an update payload: recognized keys that are present
// must have their declared type, and at least one must be present.
func ValidateCoursePatch(payload map[string]any, logger *slog.Logger) ValidationResult {
	var result ValidationResult
	present := 0
	for _, f := range courseSchema {
		value, ok := payload[f.name]
		if !ok {
			continue
		}
		present++
		if problem := f.kind.check(value); problem != "" {
			result.Errors = append(result.Errors, FieldError{Field: f.name, Problem: problem})
		}
	}
	if present == 0 {
		result.Errors = append(result.Errors, FieldError{Field: "payload", Problem: "contains none of the course fields"})
	}
	logResult(logger, "update", result)
	return result
}

// check returns the problem with value, or "" when it fits the field.
// Numbers must convert to int without overflow.
func (k fieldKind) check(value any) string {
	switch v := value.(type) {
	case string:
		if k == kindString {
			return ""
		}
	case float64:
		if k != kindNumber {
			break
		}
		if math.IsNaN(v) || v < math.MinInt || v >= -math.MinInt {
			return "is out of range"
		}
		return ""
	}
	return "must be a " + k.String()
}

func logResult(logger *slog.Logger, op string, result ValidationResult) {
	if logger == nil || result.OK() {
		return
	}
	for _, e := range result.Errors {
		logger.Info("course payload rejected", "operation", op, "field", e.Field, "problem", e.Problem)
	}
}

// inputFromPayload converts a payload that passed ValidateCourse.
func inputFromPayload(payload map[string]any) CourseInput {
	return CourseInput{
		Name:           payload[FieldName].(string),
		DateStart:      payload[FieldStart].(string),
		DateEnd:        payload[FieldEnd].(string),
		LecturesNumber: int(payload[FieldLectures].(float64)),
	}
}

// patchFromPayload converts a payload that passed ValidateCoursePatch.
func patchFromPayload(payload map[string]any) CoursePatch {
	var patch CoursePatch
	if v, ok := payload[FieldName].(string); ok {
		patch.Name = &v
	}
	if v, ok := payload[FieldStart].(string); ok {
		patch.DateStart = &v
	}
	if v, ok := payload[FieldEnd].(string); ok {
		patch.DateEnd = &v
	}
	if v, ok := payload[FieldLectures].(float64); ok {
		n := int(v)
		patch.LecturesNumber = &n
	}
	return patch
}
