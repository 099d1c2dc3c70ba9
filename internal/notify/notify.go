// Package notify tells claimants about admin decisions on their claims.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/erazemk/lostfound/internal/model"
)

// Notifier delivers claim decision notices.
type Notifier interface {
	ClaimDecided(ctx context.Context, claim *model.Claim) error
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SiteName string
	BaseURL  string
}

// Enabled reports whether enough settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.From != ""
}

// New returns an EmailNotifier when SMTP is configured, otherwise a
// LogNotifier.
func New(cfg SMTPConfig, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() {
		logger.Warn("mail settings missing, claim notifications will only be logged")
		return &LogNotifier{logger: logger}
	}
	return NewEmailNotifier(cfg, logger)
}

// Sender sends a composed message. gomail's Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends claim decisions by SMTP.
type EmailNotifier struct {
	cfg    SMTPConfig
	sender Sender
	logger *slog.Logger
}

// NewEmailNotifier creates a notifier that dials the configured SMTP server.
func NewEmailNotifier(cfg SMTPConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// ClaimDecided mails the claimant. Pending claims and claims without an
// email address are skipped.
func (n *EmailNotifier) ClaimDecided(ctx context.Context, claim *model.Claim) error {
	if !claim.Status.Resolved() {
		return nil
	}
	if strings.TrimSpace(claim.StudentEmail) == "" {
		n.logger.Warn("claim has no email, skip notification", "claim", claim.ID)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := n.compose(claim)
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("sending claim email: %w", err)
	}

	n.logger.Info("claim notification sent", "claim", claim.ID, "to", claim.StudentEmail, "status", claim.Status)
	return nil
}

func (n *EmailNotifier) compose(claim *model.Claim) *gomail.Message {
	site := n.cfg.SiteName
	if site == "" {
		site = "Lost and Found Portal"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", claim.StudentEmail)
	m.SetHeader("Subject", fmt.Sprintf("[%s] Your claim #%d was %s", site, claim.ID, claim.Status))
	m.SetBody("text/plain", plainBody(claim, site))
	m.AddAlternative("text/html", htmlBody(claim, site, n.cfg.BaseURL))
	return m
}

func plainBody(claim *model.Claim, site string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", claim.ClaimantName)
	fmt.Fprintf(&b, "Your claim #%d", claim.ID)
	if claim.ItemName != "" {
		fmt.Fprintf(&b, " for %q", claim.ItemName)
	}
	fmt.Fprintf(&b, " has been %s.\n", claim.Status)
	if claim.AdminNotes != "" {
		fmt.Fprintf(&b, "\nNotes from the administrator:\n%s\n", claim.AdminNotes)
	}
	if claim.Status == model.ClaimApproved {
		b.WriteString("\nPlease bring your student card when collecting the item.\n")
	}
	fmt.Fprintf(&b, "\n%s\n", site)
	return b.String()
}

func htmlBody(claim *model.Claim, site, baseURL string) string {
	item := ""
	if claim.ItemName != "" {
		item = " for <strong>" + html.EscapeString(claim.ItemName) + "</strong>"
	}
	notes := ""
	if claim.AdminNotes != "" {
		notes = "<p>Notes from the administrator:</p><blockquote>" + html.EscapeString(claim.AdminNotes) + "</blockquote>"
	}
	link := ""
	if baseURL != "" {
		link = fmt.Sprintf(`<p><a href="%s/dashboard">View your claims</a></p>`, html.EscapeString(strings.TrimRight(baseURL, "/")))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 560px; margin: 0 auto; padding: 16px;">
    <h2>%s</h2>
    <p>Hello %s,</p>
    <p>Your claim #%d%s has been <strong>%s</strong>.</p>
    %s
    %s
  </div>
</body>
</html>`, html.EscapeString(site), html.EscapeString(claim.ClaimantName), claim.ID, item, claim.Status, notes, link)
}

// LogNotifier only logs decisions. It is used when SMTP is not configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// ClaimDecided logs the decision.
func (n *LogNotifier) ClaimDecided(_ context.Context, claim *model.Claim) error {
	n.logger.Info("claim decided", "claim", claim.ID, "to", claim.StudentEmail, "status", claim.Status)
	return nil
}
