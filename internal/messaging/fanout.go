package messaging

import (
	"context"
	"errors"

	"github.com/iurii2002/CoursesManager/internal/course"
)

// Fanout publishes every event to all publishers and joins their errors.
type Fanout []course.EventPublisher

func (f Fanout) Publish(ctx context.Context, event course.CourseEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
