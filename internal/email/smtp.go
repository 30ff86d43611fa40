// Package email sends plain-text notifications over SMTP. When no transport
// is configured the notifier degrades to a logged no-op so that the primary
// action (task creation, validation) still commits.
package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"regexp"
	"strconv"
	"strings"

	"github.com/hcardin/mesada/internal/config"
)

// ErrNotConfigured is returned when no SMTP host is set. Callers treat it as
// a warning, never as a failure of the operation that triggered the email.
var ErrNotConfigured = errors.New("email: smtp transport not configured")

var addressRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Notifier wraps an SMTP transport.
type Notifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger

	// send is swapped out in tests.
	send func(to []string, msg []byte) error
}

func NewNotifier(cfg config.SMTPConfig, logger *slog.Logger) *Notifier {
	n := &Notifier{cfg: cfg, logger: logger}
	n.send = n.sendSMTP
	return n
}

// Configured reports whether a transport is set up.
func (n *Notifier) Configured() bool {
	return n.cfg.Configured()
}

// Send delivers a plain-text message to the valid addresses among
// recipients. Invalid addresses are dropped; if none remain, that is an
// error. Without a configured transport the message is logged and
// ErrNotConfigured returned.
func (n *Notifier) Send(recipients []string, subject, body string) error {
	to := validAddresses(recipients)
	if len(to) == 0 {
		return errors.New("email: no valid recipients")
	}

	if !n.Configured() {
		n.logger.Info("email transport not configured, skipping send",
			"to", strings.Join(to, ","), "subject", subject)
		return ErrNotConfigured
	}

	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := n.send(to, []byte(msg.String())); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	n.logger.Info("email sent", "to", strings.Join(to, ","), "subject", subject)
	return nil
}

func (n *Notifier) sendSMTP(to []string, msg []byte) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	var client *smtp.Client
	var err error
	if n.cfg.UseSSL {
		conn, dialErr := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.Host})
		if dialErr != nil {
			return fmt.Errorf("dial tls: %w", dialErr)
		}
		client, err = smtp.NewClient(conn, n.cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
				client.Close()
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	defer client.Close()

	if n.cfg.Username != "" && n.cfg.Password != "" {
		a := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(a); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}

// validAddresses filters out blanks and anything that is not shaped like an
// email address.
func validAddresses(addrs []string) []string {
	var out []string
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a != "" && addressRegexp.MatchString(a) {
			out = append(out, a)
		}
	}
	return out
}
