//go:build integration

package messaging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/iurii2002/CoursesManager/internal/course"
	"github.com/iurii2002/CoursesManager/internal/messaging"
	"github.com/iurii2002/CoursesManager/testing/testnats"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSProducerIntegration(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	producer, err := messaging.NewProducer(natsContainer.URL, "courses", logger)
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.HealthCheck())

	nc := natsContainer.Connect(t)

	t.Run("Publish_RoutesByEventType", func(t *testing.T) {
		received := make(chan *nats.Msg, 1)
		_, err := nc.Subscribe("courses.created", func(msg *nats.Msg) {
			received <- msg
		})
		require.NoError(t, err)
		require.NoError(t, nc.Flush())

		err = producer.Publish(context.Background(), course.CourseEvent{
			Type:       course.EventCreated,
			ID:         1,
			Name:       "Algorithms",
			OccurredAt: time.Now().UTC(),
		})
		require.NoError(t, err)

		select {
		case msg := <-received:
			assert.Equal(t, course.EventCreated, msg.Header.Get(messaging.EventTypeHeader))

			var event course.CourseEvent
			require.NoError(t, json.Unmarshal(msg.Data, &event))
			assert.Equal(t, 1, event.ID)
			assert.Equal(t, "Algorithms", event.Name)
		case <-time.After(2 * time.Second):
			t.Fatal("course event not received on NATS within timeout")
		}
	})

	t.Run("Publish_WildcardSubscriberSeesAllTypes", func(t *testing.T) {
		received := make(chan *nats.Msg, 3)
		_, err := nc.Subscribe("courses.*", func(msg *nats.Msg) {
			received <- msg
		})
		require.NoError(t, err)
		require.NoError(t, nc.Flush())

		for _, eventType := range []string{course.EventCreated, course.EventUpdated, course.EventDeleted} {
			require.NoError(t, producer.Publish(context.Background(), course.CourseEvent{Type: eventType, ID: 9}))
		}

		subjects := make([]string, 0, 3)
		for i := 0; i < 3; i++ {
			select {
			case msg := <-received:
				subjects = append(subjects, msg.Subject)
			case <-time.After(2 * time.Second):
				t.Fatal("course events not received on NATS within timeout")
			}
		}
		assert.ElementsMatch(t, []string{"courses.created", "courses.updated", "courses.deleted"}, subjects)
	})

	t.Run("HealthCheck_FailsAfterClose", func(t *testing.T) {
		closing, err := messaging.NewProducer(natsContainer.URL, "courses", logger)
		require.NoError(t, err)
		require.NoError(t, closing.HealthCheck())

		require.NoError(t, closing.Close())
		assert.Error(t, closing.HealthCheck())
	})
}
