package course

import (
	"time"

	"github.com/uptrace/bun"
)

// Wire field names used by every request and response body.
const (
	FieldName     = "Course Name"
	FieldStart    = "Date start"
	FieldEnd      = "Date end"
	FieldLectures = "Number of lectures"
)

// DateLayout is the dd/mm/yyyy format accepted in request bodies. Day and
// month may omit the leading zero.
const DateLayout = "2/1/2006"

// Dates are echoed back in ISO form.
const isoDateLayout = "2006-01-02"

// Course dates are calendar dates stored as midnight UTC.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID             int       `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,type:varchar(200),notnull"`
	DateStart      time.Time `bun:"date_start,type:date,notnull"`
	DateEnd        time.Time `bun:"date_end,type:date,notnull"`
	LecturesNumber int       `bun:"lectures_number,notnull"`
}

// CourseInput is a validated create payload.
type CourseInput struct {
	Name           string
	DateStart      string
	DateEnd        string
	LecturesNumber int
}

// CoursePatch holds the fields present in an update payload; nil means untouched.
type CoursePatch struct {
	Name           *string
	DateStart      *string
	DateEnd        *string
	LecturesNumber *int
}

func (p CoursePatch) Empty() bool {
	return p.Name == nil && p.DateStart == nil && p.DateEnd == nil && p.LecturesNumber == nil
}

type CourseSummary struct {
	ID   int    `json:"ID"`
	Name string `json:"Course Name"`
}

type CourseList struct {
	Courses []CourseSummary `json:"current courses"`
}

type CourseDetail struct {
	Name           string `json:"Course Name"`
	DateStart      string `json:"Date start"`
	DateEnd        string `json:"Date end"`
	LecturesNumber int    `json:"Number of lectures"`
}

// CourseEvent is published after every successful mutation.
type CourseEvent struct {
	Type       string    `json:"type"`
	ID         int       `json:"id"`
	Name       string    `json:"name,omitempty"`
	Fields     []string  `json:"fields,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

func NewCourseList(courses []Course) CourseList {
	list := CourseList{Courses: make([]CourseSummary, 0, len(courses))}
	for _, c := range courses {
		list.Courses = append(list.Courses, CourseSummary{ID: c.ID, Name: c.Name})
	}
	return list
}

func NewCourseDetail(c *Course) CourseDetail {
	return CourseDetail{
		Name:           c.Name,
		DateStart:      c.DateStart.Format(isoDateLayout),
		DateEnd:        c.DateEnd.Format(isoDateLayout),
		LecturesNumber: c.LecturesNumber,
	}
}

// calendarDate drops the clock and zone of t, keeping its local calendar day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
