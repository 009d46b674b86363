// internal/app/system/mailer/mailer.go

// Package mailer delivers plain-text email over SMTP and renders the
// reminder messages the notification scheduler sends.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds SMTP connection settings. User/Pass may be empty for
// unauthenticated local relays (Mailpit and friends).
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string // from address, e.g. noreply@musclub.app
	FromName string // display name, e.g. MusClub

	// TLSConfig overrides the STARTTLS client configuration. Leave nil
	// for the default, which verifies the server certificate against
	// Host; set it for relays with a private CA.
	TLSConfig *tls.Config
}

// Mailer sends one message per call. It opens a fresh connection per send;
// reminder volume is low enough that pooling would buy nothing.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger}
}

// Send delivers a plain-text message to a single recipient. The context
// bounds the whole exchange via the connection deadline.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.cfg.User != "" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsCfg := m.cfg.TLSConfig
			if tlsCfg == nil {
				tlsCfg = &tls.Config{ServerName: m.cfg.Host}
			}
			if err := client.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(m.message(to, subject, body))); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	if err := client.Quit(); err != nil {
		// Delivery already succeeded; a noisy QUIT is not a send failure.
		m.log.Debug("smtp quit failed", zap.Error(err))
	}

	m.log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// message assembles the RFC 5322 payload: headers, blank line, body.
func (m *Mailer) message(to, subject, body string) string {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}
	domain := m.cfg.From
	if i := strings.LastIndex(domain, "@"); i >= 0 {
		domain = domain[i+1:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mimeEncodeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")
	b.WriteString(wrapBase64(body))
	b.WriteString("\r\n")
	return b.String()
}
