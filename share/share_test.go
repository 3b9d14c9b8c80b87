package share_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nasermirzaei89/blog/mailer"
	"github.com/nasermirzaei89/blog/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	messages []*mailer.Message
	err      error
}

func (s *stubSender) Send(_ context.Context, msg *mailer.Message) error {
	if s.err != nil {
		return s.err
	}

	s.messages = append(s.messages, msg)

	return nil
}

func TestService_SharePost(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	svc := share.NewService(sender, "blog@example.com")

	err := svc.SharePost(context.Background(), share.SharePostRequest{
		PostTitle: "Hello World",
		PostURL:   "http://example.com/blog/2024/3/15/hello-world/",
		Name:      "Alice",
		Email:     "alice@example.com",
		To:        "bob@example.com",
		Comments:  "Worth it",
	})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, "blog@example.com", msg.From)
	assert.Equal(t, []string{"bob@example.com"}, msg.To)
	assert.Equal(t, "Alice recommends you read Hello World", msg.Subject)
	assert.Equal(
		t,
		"Read Hello World at http://example.com/blog/2024/3/15/hello-world/\n\nAlice's comments: Worth it",
		msg.Body,
	)
}

func TestService_SharePost_SendError(t *testing.T) {
	t.Parallel()

	errTransport := errors.New("connection refused")
	svc := share.NewService(&stubSender{err: errTransport}, "blog@example.com")

	err := svc.SharePost(context.Background(), share.SharePostRequest{
		PostTitle: "Hello World",
		Name:      "Alice",
		To:        "bob@example.com",
	})
	require.ErrorIs(t, err, errTransport)
}
