package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

type outcome int

const (
	ack outcome = iota
	retry
	drop
)

type postNotifier interface {
	NotifyPostCreated(ctx context.Context, data mailtpl.PostCreatedData) error
}

type worker struct {
	notifier postNotifier
	logger   *logrus.Logger
	timeout  time.Duration
}

// handle decides the fate of one delivery: unknown types and bad bodies are
// dropped, send failures are requeued.
func (w *worker) handle(ctx context.Context, msgType string, body []byte) outcome {
	if msgType != application.MessagePostCreated {
		w.logger.WithField("type", msgType).Warn("unexpected message type")
		return drop
	}
	var ev event.PostCreated
	if err := json.Unmarshal(body, &ev); err != nil || ev.PostID == "" {
		w.logger.WithError(err).Warn("bad post.created message")
		return drop
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	err := w.notifier.NotifyPostCreated(sendCtx, mailtpl.PostCreatedData{
		PostID:    ev.PostID,
		Title:     ev.Title,
		OwnerID:   ev.OwnerID,
		CreatedAt: ev.CreatedAt,
	})
	if err != nil {
		w.logger.WithError(err).WithField("post_id", ev.PostID).Warn("notification send failed")
		return retry
	}
	w.logger.WithField("post_id", ev.PostID).Info("notification sent")
	return ack
}
