package application

import (
	"context"

	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
)

// MessagePostCreated is the AMQP type of a queued PostCreated event.
const MessagePostCreated = "post.created"

// JSONPublisher sends a typed JSON message to a queue.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// QueueSubscriber forwards PostCreated events to a message queue for the
// notify worker.
type QueueSubscriber struct {
	Publisher JSONPublisher
}

func (q QueueSubscriber) Name() string { return "post-queue" }

func (q QueueSubscriber) HandlePostCreated(ctx context.Context, ev event.PostCreated) error {
	if q.Publisher == nil {
		return nil
	}
	return q.Publisher.PublishJSON(ctx, MessagePostCreated, ev)
}

// NewPostEventBus registers the post subscribers in order: cache first so a
// slow downstream never delays read-your-own-write. Nil entries are skipped.
func NewPostEventBus(subs ...event.Subscriber) *event.Bus {
	bus := event.NewBus()
	for _, s := range subs {
		bus.Subscribe(s)
	}
	return bus
}

var _ event.Subscriber = QueueSubscriber{}
