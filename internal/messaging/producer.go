package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/iurii2002/CoursesManager/internal/course"

	"github.com/nats-io/nats.go"
)

// EventTypeHeader carries the event type so subscribers can route without decoding.
const EventTypeHeader = "Course-Event-Type"

// Producer publishes course events to NATS under <subject>.<event type>.
type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewProducer(url string, subject string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url, nats.Name("course-service"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *Producer) Subject(eventType string) string {
	return p.subject + "." + eventType
}

func (p *Producer) Publish(ctx context.Context, event course.CourseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal course event", "error", err)
		return err
	}

	msg := nats.NewMsg(p.Subject(event.Type))
	msg.Header.Set(EventTypeHeader, event.Type)
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to send course event to NATS", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "course event sent to NATS", "subject", msg.Subject, "id", event.ID)
	return nil
}

// HealthCheck reports whether events can still be published. A draining
// connection accepts no new messages.
func (p *Producer) HealthCheck() error {
	if p.conn == nil || p.conn.IsClosed() || p.conn.IsDraining() {
		return nats.ErrConnectionClosed
	}
	if !p.conn.IsConnected() {
		return nats.ErrDisconnected
	}
	return nil
}

func (p *Producer) Close() error {
	if p.conn == nil {
		return nil
	}
	// Drain flushes pending publishes before closing
	if err := p.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		p.conn.Close()
		return err
	}
	return nil
}
