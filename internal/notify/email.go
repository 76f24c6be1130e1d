package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

var _ Channel = (*EmailChannel)(nil)

// EmailChannel sends the digest as a plain-text email over SMTP with
// STARTTLS. It is the usual primary channel.
type EmailChannel struct {
	cfg      config.EmailConfig
	password string
	logger   *slog.Logger
}

// NewEmailChannel builds the channel. password may be empty; delivery then
// reports failure instead of crashing the run.
func NewEmailChannel(cfg config.EmailConfig, password string, logger *slog.Logger) *EmailChannel {
	return &EmailChannel{cfg: cfg, password: password, logger: logger}
}

func (e *EmailChannel) Name() string { return "email" }

// Deliver sends the digest. An empty digest is skipped (success) unless
// send_empty is configured.
func (e *EmailChannel) Deliver(_ context.Context, listings []model.Listing, dryRun bool) bool {
	if len(listings) == 0 && !e.cfg.SendEmpty {
		e.logger.Info("no new listings, skipping email")
		return true
	}

	subject := e.subject(len(listings))
	body := buildDigest(listings)

	if dryRun {
		e.logger.Info("dry run, email not sent", "subject", subject, "listings", len(listings))
		return true
	}

	if e.cfg.Sender == "" || e.password == "" {
		e.logger.Error("email credentials missing, cannot send")
		return false
	}

	msg := e.message(subject, body)
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)
	auth := smtp.PlainAuth("", e.cfg.Sender, e.password, e.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, e.cfg.Sender, e.cfg.Recipients, msg); err != nil {
		e.logger.Error("sending email failed", "host", e.cfg.SMTPHost, "error", err)
		return false
	}

	e.logger.Info("email sent", "recipients", len(e.cfg.Recipients), "listings", len(listings))
	return true
}

func (e *EmailChannel) subject(n int) string {
	if n == 0 {
		return "Job digest: no new listings"
	}
	return fmt.Sprintf("Job digest: %d new listing(s) — %s", n, time.Now().UTC().Format("2006-01-02"))
}

func (e *EmailChannel) message(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.cfg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.cfg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// buildDigest renders the plain-text digest body, most relevant first
// within the already discovery-ordered set.
func buildDigest(listings []model.Listing) string {
	if len(listings) == 0 {
		return "No new job listings this run.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d job listing(s) awaiting your review:\n\n", len(listings))
	for _, l := range listings {
		fmt.Fprintf(&b, "• %s — %s", l.Title, l.Company)
		if l.Location != "" {
			fmt.Fprintf(&b, " (%s)", l.Location)
		}
		fmt.Fprintf(&b, "\n  score %.0f/100 · %s\n", l.Score, l.Source)
		if l.URL != "" {
			fmt.Fprintf(&b, "  %s\n", l.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}
