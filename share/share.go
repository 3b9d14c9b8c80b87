// Package share recommends posts to readers by email.
package share

import (
	"context"
	"fmt"

	"github.com/nasermirzaei89/blog/mailer"
)

type Service struct {
	sender mailer.Sender
	from   string
}

func NewService(sender mailer.Sender, from string) *Service {
	return &Service{
		sender: sender,
		from:   from,
	}
}

type SharePostRequest struct {
	PostTitle string
	PostURL   string
	Name      string
	Email     string
	To        string
	Comments  string
}

// SharePost mails a recommendation of the post to req.To only.
func (svc *Service) SharePost(ctx context.Context, req SharePostRequest) error {
	msg := &mailer.Message{
		From:    svc.from,
		To:      []string{req.To},
		Subject: fmt.Sprintf("%s recommends you read %s", req.Name, req.PostTitle),
		Body: fmt.Sprintf(
			"Read %s at %s\n\n%s's comments: %s",
			req.PostTitle, req.PostURL, req.Name, req.Comments,
		),
	}

	err := svc.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send post recommendation: %w", err)
	}

	return nil
}
