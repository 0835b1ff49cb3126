// Package event carries domain events from the write path to explicit subscribers.
package event

import (
	"context"
	"errors"
	"time"
)

// PostCreated is emitted after a post row has been committed.
type PostCreated struct {
	PostID    string    `json:"post_id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriber reacts to PostCreated. Name is used in logs.
type Subscriber interface {
	Name() string
	HandlePostCreated(ctx context.Context, ev PostCreated) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc struct {
	Label string
	Fn    func(ctx context.Context, ev PostCreated) error
}

func (f SubscriberFunc) Name() string { return f.Label }

func (f SubscriberFunc) HandlePostCreated(ctx context.Context, ev PostCreated) error {
	return f.Fn(ctx, ev)
}

// Bus dispatches synchronously, in registration order. Subscribers are
// registered during wiring, before the bus is shared.
type Bus struct {
	subs []Subscriber
}

func NewBus(subs ...Subscriber) *Bus {
	return &Bus{subs: subs}
}

func (b *Bus) Subscribe(s Subscriber) {
	if s != nil {
		b.subs = append(b.subs, s)
	}
}

// SubscriberError names the subscriber that failed.
type SubscriberError struct {
	Subscriber string
	Err        error
}

func (e *SubscriberError) Error() string { return e.Subscriber + ": " + e.Err.Error() }
func (e *SubscriberError) Unwrap() error { return e.Err }

// PublishPostCreated runs every subscriber even if an earlier one fails and
// joins the failures.
func (b *Bus) PublishPostCreated(ctx context.Context, ev PostCreated) error {
	if b == nil {
		return nil
	}
	var errs []error
	for _, s := range b.subs {
		if err := s.HandlePostCreated(ctx, ev); err != nil {
			errs = append(errs, &SubscriberError{Subscriber: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}
