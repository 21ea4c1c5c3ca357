package email

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"sync"

	"contentdesk/internal/config"

	"go.uber.org/zap"
)

// Service delivers messages over SMTP, reusing one connection
type Service struct {
	config config.EmailConfig
	log    *zap.Logger
	client *smtp.Client
	mu     sync.Mutex
}

func NewService(cfg config.EmailConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		config: cfg,
		log:    log.Named("email"),
	}
}

// dialSMTP establishes an SMTP connection; callers hold s.mu
func (s *Service) dialSMTP() (*smtp.Client, error) {
	// Reuse existing connection if it's still alive
	if s.client != nil {
		if err := s.client.Noop(); err == nil {
			return s.client, nil
		}
		s.client.Close()
		s.client = nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	if s.config.SMTPUsername != "" {
		if err := client.Auth(smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to authenticate with SMTP server: %w", err)
		}
	}

	s.client = client
	return client, nil
}

// sendMail sends one message on the pooled connection
func (s *Service) sendMail(to string, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.dialSMTP()
	if err != nil {
		return err
	}

	if err := client.Mail(s.config.FromAddress); err != nil {
		client.Reset()
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		client.Reset()
		return fmt.Errorf("failed to add recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to create message writer: %w", err)
	}

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message writer: %w", err)
	}

	return nil
}

// Close closes the SMTP connection
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		err := s.client.Quit()
		s.client = nil
		return err
	}
	return nil
}

// Send delivers msg as a multipart/alternative email
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.config.SMTPConfigured() {
		return fmt.Errorf("incomplete email configuration")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := buildMIME(s.config.FromAddress, msg)
	if err != nil {
		return err
	}

	s.log.Debug("sending email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("smtp_host", s.config.SMTPHost),
	)
	if err := s.sendMail(msg.To, raw); err != nil {
		s.log.Error("smtp delivery failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMIME(from string, msg Message) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, fmt.Errorf("failed to create message part: %w", err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("failed to write message part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: multipart/alternative; boundary=%s\r\n"+
		"\r\n", msg.To, from, msg.Subject, mw.Boundary())
	out.Write(body.Bytes())
	return out.Bytes(), nil
}
