package email

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hcardin/mesada/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendNotConfigured(t *testing.T) {
	n := NewNotifier(config.SMTPConfig{}, discardLogger())

	err := n.Send([]string{"alice@example.com"}, "Test", "body")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSendNoValidRecipients(t *testing.T) {
	n := NewNotifier(config.SMTPConfig{Host: "smtp.example.com"}, discardLogger())

	err := n.Send([]string{"", "not-an-address", "also@bad"}, "Test", "body")
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want invalid-recipients error", err)
	}
}

func TestSendBuildsMessage(t *testing.T) {
	cfg := config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "mesada@example.com",
	}
	n := NewNotifier(cfg, discardLogger())

	var gotTo []string
	var gotMsg string
	n.send = func(to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	err := n.Send([]string{"pai@example.com", "bogus", "mae@example.com"}, "Nova tarefa", "Tarefa: Dishes\nPontos: 5")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(gotTo) != 2 || gotTo[0] != "pai@example.com" || gotTo[1] != "mae@example.com" {
		t.Errorf("recipients = %v, want the two valid addresses", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Nova tarefa\r\n") {
		t.Errorf("message missing subject header: %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "From: mesada@example.com\r\n") {
		t.Errorf("message missing from header: %q", gotMsg)
	}
	if !strings.HasSuffix(gotMsg, "Tarefa: Dishes\nPontos: 5") {
		t.Errorf("message missing body: %q", gotMsg)
	}
}

func TestSendTransportError(t *testing.T) {
	n := NewNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, discardLogger())
	n.send = func(to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := n.Send([]string{"alice@example.com"}, "Test", "body")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, ErrNotConfigured) {
		t.Error("transport error must not read as not-configured")
	}
}

func TestValidAddresses(t *testing.T) {
	got := validAddresses([]string{" alice@example.com ", "", "no-at-sign", "b@c", "ok@example.org"})
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 valid addresses", got)
	}
	if got[0] != "alice@example.com" || got[1] != "ok@example.org" {
		t.Errorf("got %v", got)
	}
}
