package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"contentdesk/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoginCode(t *testing.T) {
	msg, err := LoginCode("Content Desk", "a@example.com", "482913", 10*time.Minute)
	require.NoError(t, err)

	require.Equal(t, "a@example.com", msg.To)
	require.Equal(t, "Your Content Desk sign-in code", msg.Subject)
	require.Contains(t, msg.Text, "482913")
	require.Contains(t, msg.Text, "10 minutes")
	require.Contains(t, msg.HTML, "<strong>482913</strong>")
}

func TestPasswordResetCode(t *testing.T) {
	msg, err := PasswordResetCode("<Desk>", "a@example.com", "100200", 10*time.Minute)
	require.NoError(t, err)

	require.Equal(t, "Reset your <Desk> password", msg.Subject)
	require.Contains(t, msg.Text, "100200")
	// HTML body escapes the app name
	require.Contains(t, msg.HTML, "&lt;Desk&gt;")
	require.NotContains(t, msg.HTML, "<Desk>")
}

func TestBuildMIME(t *testing.T) {
	raw, err := buildMIME("noreply@example.com", Message{
		To:      "a@example.com",
		Subject: "Hello",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	})
	require.NoError(t, err)

	s := string(raw)
	require.True(t, strings.HasPrefix(s, "To: a@example.com\r\nFrom: noreply@example.com\r\nSubject: Hello\r\n"))
	require.Contains(t, s, "Content-Type: multipart/alternative; boundary=")
	require.Contains(t, s, "text/plain; charset=UTF-8")
	require.Contains(t, s, "plain body")
	require.Contains(t, s, "<p>html body</p>")
}

func TestService_RequiresConfiguration(t *testing.T) {
	svc := NewService(config.EmailConfig{}, nil)
	err := svc.Send(context.Background(), Message{To: "a@example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "incomplete email configuration")
	require.NoError(t, svc.Close())
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{To: "a@example.com", Subject: "s", Text: "code 123456"}))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "a@example.com", logs.All()[0].ContextMap()["to"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sender.Send(ctx, Message{}), context.Canceled)
}

func TestSenderFunc(t *testing.T) {
	boom := errors.New("boom")
	var got Message
	s := SenderFunc(func(ctx context.Context, msg Message) error {
		got = msg
		return boom
	})

	require.ErrorIs(t, s.Send(context.Background(), Message{To: "x@example.com"}), boom)
	require.Equal(t, "x@example.com", got.To)
}
