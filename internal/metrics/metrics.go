package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics

	coursesCreated  metric.Int64Counter
	coursesUpdated  metric.Int64Counter
	coursesDeleted  metric.Int64Counter
	coursesViewed   metric.Int64Counter
	coursesListed   metric.Int64Counter
	eventsPublished metric.Int64Counter
	eventsFailed    metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database}

	m.coursesCreated, err = meter.Int64Counter(
		"course_service.courses.created",
		metric.WithDescription("Total number of courses created"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesUpdated, err = meter.Int64Counter(
		"course_service.courses.updated",
		metric.WithDescription("Total number of course updates"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesDeleted, err = meter.Int64Counter(
		"course_service.courses.deleted",
		metric.WithDescription("Total number of courses deleted"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesViewed, err = meter.Int64Counter(
		"course_service.courses.viewed",
		metric.WithDescription("Total number of course detail views"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesListed, err = meter.Int64Counter(
		"course_service.courses.listed",
		metric.WithDescription("Total number of course list queries by kind"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventsPublished, err = meter.Int64Counter(
		"course_service.events.published",
		metric.WithDescription("Total number of course events published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventsFailed, err = meter.Int64Counter(
		"course_service.events.failed",
		metric.WithDescription("Total number of course events that failed to publish"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordCourseCreated(ctx context.Context) {
	if m != nil && m.coursesCreated != nil {
		m.coursesCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCourseUpdated(ctx context.Context) {
	if m != nil && m.coursesUpdated != nil {
		m.coursesUpdated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCourseDeleted(ctx context.Context) {
	if m != nil && m.coursesDeleted != nil {
		m.coursesDeleted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCourseViewed(ctx context.Context) {
	if m != nil && m.coursesViewed != nil {
		m.coursesViewed.Add(ctx, 1)
	}
}

// RecordCoursesListed counts list queries; kind is "all", "name" or "dates".
func (m *Metrics) RecordCoursesListed(ctx context.Context, kind string) {
	if m != nil && m.coursesListed != nil {
		m.coursesListed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("type", eventType))
	if err != nil {
		if m.eventsFailed != nil {
			m.eventsFailed.Add(ctx, 1, attrs)
		}
		return
	}
	if m.eventsPublished != nil {
		m.eventsPublished.Add(ctx, 1, attrs)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
