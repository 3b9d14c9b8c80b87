package mailer_test

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/nasermirzaei89/blog/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sender := mailer.NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.Send(context.Background(), &mailer.Message{
		From:    "blog@example.com",
		To:      []string{"friend@example.com"},
		Subject: "Bob recommends you read Hello",
		Body:    "Read Hello",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Bob recommends you read Hello")
	assert.Contains(t, buf.String(), "friend@example.com")

	err = sender.Send(context.Background(), &mailer.Message{
		From: "blog@example.com",
		To:   []string{"not an address"},
	})
	require.Error(t, err)
}

func TestSMTPSender_TransportError(t *testing.T) {
	t.Parallel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{Host: "127.0.0.1", Port: port})

	err = sender.Send(context.Background(), &mailer.Message{
		From:    "blog@example.com",
		To:      []string{"friend@example.com"},
		Subject: "subject",
		Body:    "body",
	})
	require.Error(t, err)

	transportErr := mailer.TransportError{}
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, []string{"friend@example.com"}, transportErr.To)
}
