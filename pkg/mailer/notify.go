package mailer

import (
	"context"
	"errors"
	"strings"

	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

// PostNotifier emails a fixed recipient whenever a post is published.
type PostNotifier struct {
	Sender  Sender
	To      string
	AppName string
	BaseURL string
}

func (n *PostNotifier) NotifyPostCreated(ctx context.Context, data mailtpl.PostCreatedData) error {
	if n.Sender == nil || n.To == "" {
		return errors.New("post notifier not configured")
	}
	if data.AppName == "" {
		data.AppName = n.AppName
	}
	if data.PostURL == "" && n.BaseURL != "" {
		data.PostURL = strings.TrimRight(n.BaseURL, "/") + "/posts/" + data.PostID
	}
	subject, text, html, err := mailtpl.Render(mailtpl.PostCreated, data)
	if err != nil {
		return err
	}
	return n.Sender.Send(ctx, n.To, subject, text, html)
}
