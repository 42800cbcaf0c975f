package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iurii2002/CoursesManager/internal/metrics"

	"github.com/go-playground/validator/v10"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidDate    = errors.New("invalid date")
	ErrNoFields       = errors.New("no course fields to update")
)

// DateFormatError reports a date field that is not in dd/mm/yyyy form.
type DateFormatError struct {
	Field string
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("wrong date format in %q: %q, expected dd/mm/yyyy", e.Field, e.Value)
}

func (e *DateFormatError) Unwrap() error {
	return ErrInvalidDate
}

// EventPublisher delivers course events to subscribers outside the service.
type EventPublisher interface {
	Publish(ctx context.Context, event CourseEvent) error
}

type Service interface {
	ListCourses(ctx context.Context) ([]Course, error)
	SearchByName(ctx context.Context, name string) ([]Course, error)
	FilterByDates(ctx context.Context, startTS, endTS int64) ([]Course, error)
	CreateCourse(ctx context.Context, input CourseInput) (*Course, error)
	GetCourse(ctx context.Context, id int) (*Course, error)
	CourseExists(ctx context.Context, id int) (bool, error)
	UpdateCourse(ctx context.Context, id int, patch CoursePatch) ([]string, error)
	DeleteCourse(ctx context.Context, id int) error
}

type service struct {
	repo      Repository
	publisher EventPublisher
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService wires the course use cases. publisher may be nil.
func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

type createRequest struct {
	Name      string `validate:"required"`
	DateStart string `validate:"datetime=2/1/2006"`
	DateEnd   string `validate:"datetime=2/1/2006"`
}

func (s *service) ListCourses(ctx context.Context) ([]Course, error) {
	courses, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCoursesListed(ctx, "all")
	return courses, nil
}

func (s *service) SearchByName(ctx context.Context, name string) ([]Course, error) {
	courses, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCoursesListed(ctx, "name")
	return courses, nil
}

// FilterByDates returns courses lying strictly inside the window. Both bounds
// are epoch seconds reduced to their calendar date in local time.
func (s *service) FilterByDates(ctx context.Context, startTS, endTS int64) ([]Course, error) {
	after := calendarDate(time.Unix(startTS, 0).Local())
	before := calendarDate(time.Unix(endTS, 0).Local())

	courses, err := s.repo.GetWithinDates(ctx, after, before)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCoursesListed(ctx, "dates")
	return courses, nil
}

func (s *service) CreateCourse(ctx context.Context, input CourseInput) (*Course, error) {
	req := createRequest{Name: input.Name, DateStart: input.DateStart, DateEnd: input.DateEnd}
	if err := s.validate.Struct(&req); err != nil {
		return nil, s.translateValidation(err)
	}

	dateStart, err := parseDate(FieldStart, input.DateStart)
	if err != nil {
		return nil, err
	}
	dateEnd, err := parseDate(FieldEnd, input.DateEnd)
	if err != nil {
		return nil, err
	}

	course := &Course{
		Name:           input.Name,
		DateStart:      dateStart,
		DateEnd:        dateEnd,
		LecturesNumber: input.LecturesNumber,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to store course: %w", err)
	}

	s.metrics.RecordCourseCreated(ctx)
	s.publish(ctx, CourseEvent{Type: EventCreated, ID: course.ID, Name: course.Name})

	return course, nil
}

func (s *service) GetCourse(ctx context.Context, id int) (*Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCourseViewed(ctx)
	return course, nil
}

func (s *service) CourseExists(ctx context.Context, id int) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrCourseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateCourse overwrites the fields present in patch and returns their wire
// names in application order. The read and the write share one transaction.
func (s *service) UpdateCourse(ctx context.Context, id int, patch CoursePatch) ([]string, error) {
	if patch.Empty() {
		return nil, ErrNoFields
	}

	var (
		applied []string
		name    string
	)
	err := s.repo.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		course, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		var columns []string
		if patch.Name != nil {
			if *patch.Name == "" {
				return fmt.Errorf("%w: %q must not be empty", ErrInvalidInput, FieldName)
			}
			course.Name = *patch.Name
			columns = append(columns, "name")
			applied = append(applied, FieldName)
		}
		if patch.DateStart != nil {
			d, err := parseDate(FieldStart, *patch.DateStart)
			if err != nil {
				return err
			}
			course.DateStart = d
			columns = append(columns, "date_start")
			applied = append(applied, FieldStart)
		}
		if patch.DateEnd != nil {
			d, err := parseDate(FieldEnd, *patch.DateEnd)
			if err != nil {
				return err
			}
			course.DateEnd = d
			columns = append(columns, "date_end")
			applied = append(applied, FieldEnd)
		}
		if patch.LecturesNumber != nil {
			course.LecturesNumber = *patch.LecturesNumber
			columns = append(columns, "lectures_number")
			applied = append(applied, FieldLectures)
		}

		name = course.Name
		return repo.Update(ctx, course, columns...)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCourseUpdated(ctx)
	s.publish(ctx, CourseEvent{Type: EventUpdated, ID: id, Name: name, Fields: applied})

	return applied, nil
}

func (s *service) DeleteCourse(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordCourseDeleted(ctx)
	s.publish(ctx, CourseEvent{Type: EventDeleted, ID: id})

	return nil
}

// publish never fails the caller; the mutation is already committed.
func (s *service) publish(ctx context.Context, event CourseEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.now().UTC()

	err := s.publisher.Publish(ctx, event)
	s.metrics.RecordEventPublished(ctx, event.Type, err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish course event", "type", event.Type, "id", event.ID, "error", err)
	}
}

func (s *service) translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch fe := verrs[0]; fe.StructField() {
	case "DateStart":
		return &DateFormatError{Field: FieldStart, Value: fmt.Sprint(fe.Value())}
	case "DateEnd":
		return &DateFormatError{Field: FieldEnd, Value: fmt.Sprint(fe.Value())}
	default:
		return fmt.Errorf("%w: %q must not be empty", ErrInvalidInput, FieldName)
	}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &DateFormatError{Field: field, Value: value}
	}
	return t, nil
}
