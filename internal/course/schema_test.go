package course_test

import (
	"testing"

	"github.com/iurii2002/CoursesManager/internal/course"

	"github.com/stretchr/testify/assert"
)

func validPayload() map[string]any {
	return map[string]any{
		"Course Name":        "Algorithms",
		"Date start":         "01/09/2024",
		"Date end":           "20/12/2024",
		"Number of lectures": float64(30),
	}
}

func TestValidateCourse(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		result := course.ValidateCourse(validPayload(), nil)
		assert.True(t, result.OK())
		assert.Empty(t, result.String())
	})

	t.Run("ExtraKeysIgnored", func(t *testing.T) {
		payload := validPayload()
		payload["Lecturer"] = "Knuth"
		assert.True(t, course.ValidateCourse(payload, nil).OK())
	})

	t.Run("NoSemanticChecks", func(t *testing.T) {
		payload := validPayload()
		payload["Date start"] = "not a date"
		payload["Number of lectures"] = float64(-2.5)
		assert.True(t, course.ValidateCourse(payload, nil).OK())
	})

	t.Run("MissingKey", func(t *testing.T) {
		payload := validPayload()
		delete(payload, "Date end")

		result := course.ValidateCourse(payload, nil)
		assert.False(t, result.OK())
		assert.Equal(t, []course.FieldError{{Field: "Date end", Problem: "is required"}}, result.Errors)
	})

	t.Run("WrongTypes", func(t *testing.T) {
		payload := validPayload()
		payload["Course Name"] = float64(12)
		payload["Number of lectures"] = "30"

		result := course.ValidateCourse(payload, nil)
		assert.False(t, result.OK())
		assert.Equal(t, "Course Name: must be a string; Number of lectures: must be a number", result.String())
	})

	t.Run("NullAndBoolRejected", func(t *testing.T) {
		payload := validPayload()
		payload["Date start"] = nil
		payload["Number of lectures"] = true

		result := course.ValidateCourse(payload, nil)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("Empty", func(t *testing.T) {
		result := course.ValidateCourse(map[string]any{}, nil)
		assert.Len(t, result.Errors, 4)
	})

	t.Run("LecturesOutOfIntRange", func(t *testing.T) {
		for _, n := range []float64{1e300, -1e300, 9.3e18, -9.3e18} {
			payload := validPayload()
			payload["Number of lectures"] = n

			result := course.ValidateCourse(payload, nil)
			assert.Equal(t, []course.FieldError{{Field: "Number of lectures", Problem: "is out of range"}}, result.Errors, n)
		}
	})

	t.Run("LecturesLargeButInRange", func(t *testing.T) {
		payload := validPayload()
		payload["Number of lectures"] = float64(9.2e18)
		assert.True(t, course.ValidateCourse(payload, nil).OK())
	})
}

func TestValidateCoursePatch(t *testing.T) {
	t.Run("SingleField", func(t *testing.T) {
		result := course.ValidateCoursePatch(map[string]any{"Number of lectures": float64(10)}, nil)
		assert.True(t, result.OK())
	})

	t.Run("AllFields", func(t *testing.T) {
		assert.True(t, course.ValidateCoursePatch(validPayload(), nil).OK())
	})

	t.Run("NoRecognizedKeys", func(t *testing.T) {
		result := course.ValidateCoursePatch(map[string]any{"Lecturer": "Knuth"}, nil)
		assert.False(t, result.OK())
		assert.Equal(t, "payload: contains none of the course fields", result.String())
	})

	t.Run("LecturesOutOfIntRange", func(t *testing.T) {
		result := course.ValidateCoursePatch(map[string]any{"Number of lectures": 1e300}, nil)
		assert.False(t, result.OK())
		assert.Equal(t, "Number of lectures: is out of range", result.String())
	})

	t.Run("WrongType", func(t *testing.T) {
		result := course.ValidateCoursePatch(map[string]any{"Date start": float64(1)}, nil)
		assert.False(t, result.OK())
		assert.Equal(t, []course.FieldError{{Field: "Date start", Problem: "must be a string"}}, result.Errors)
	})
}
