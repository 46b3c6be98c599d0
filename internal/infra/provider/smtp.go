package provider

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"

	"herald/internal/domain"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP delivers email through a single SMTP-compatible transport.
type SMTP struct {
	cfg  SMTPConfig
	auth smtp.Auth
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: smtp host and from address", domain.ErrConfigurationMissing)
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTP{cfg: cfg, auth: auth, send: smtp.SendMail}, nil
}

func (s *SMTP) Name() string { return "smtp" }

func (s *SMTP) ValidateRecipient(address string) error {
	if _, err := mail.ParseAddress(address); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecipient, err)
	}
	return nil
}

func (s *SMTP) Send(ctx context.Context, address string, msg domain.Message) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}
	body := buildMIME(s.cfg.From, address, msg)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, s.auth, s.cfg.From, []string{address}, body); err != nil {
		return domain.Receipt{}, classifySMTPError(err)
	}
	// SMTP assigns no message identifier we can observe.
	return domain.Receipt{}, nil
}

// 4yz SMTP replies and network errors are worth retrying; 5yz replies
// mean the server rejected the message for good. Anything else, such
// as an unsupported auth mechanism, retries cannot cure.
func classifySMTPError(err error) error {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		if proto.Code >= 400 && proto.Code < 500 {
			return domain.Transient(err)
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.Transient(err)
	}
	return err
}

func buildMIME(from, to string, msg domain.Message) []byte {
	const boundary = "herald-alt-0001"

	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
	b.WriteString("\r\n")

	part := func(contentType, body string) {
		b.WriteString("--" + boundary + "\r\n")
		header("Content-Type", contentType)
		b.WriteString("\r\n")
		b.WriteString(body)
		b.WriteString("\r\n")
	}
	part("text/plain; charset=utf-8", msg.Text)
	part("text/html; charset=utf-8", msg.HTML)
	b.WriteString("--" + boundary + "--\r\n")

	return []byte(b.String())
}

var _ domain.Provider = (*SMTP)(nil)
