// Package email delivers notifications over SMTP.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/config"
	"spendwise/internal/core"
)

// ErrNotConfigured is returned when SMTP delivery is requested without a host.
var ErrNotConfigured = errors.New("SMTP is not configured")

// alertWarnPercent is the usage from which the alert body adds a warning line.
var alertWarnPercent = decimal.NewFromInt(80)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers notifications through an SMTP relay.
type Sender struct {
	cfg       config.SMTPConfig
	templates *templates
	send      sendFunc
	now       func() time.Time
}

// NewSender parses the embedded templates and prepares the SMTP transport.
func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}
	t, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s := &Sender{cfg: cfg, templates: t, now: time.Now}
	s.send = smtp.SendMail
	if cfg.ImplicitTLS {
		s.send = s.sendImplicitTLS
	}
	return s, nil
}

func (s *Sender) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *Sender) auth() smtp.Auth {
	if s.cfg.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
}

func (s *Sender) from() mail.Address {
	return mail.Address{Name: s.cfg.FromName, Address: s.cfg.FromEmail}
}

func (s *Sender) SendBudgetAlert(ctx context.Context, n core.BudgetAlertNotice) error {
	subject := fmt.Sprintf("Budget Alert: %s - %s%% Used", n.CategoryName, n.Percentage.StringFixed(1))
	body, err := s.templates.render(templateBudgetAlert, budgetAlertView{
		RecipientName: fallback(n.RecipientName, n.To),
		CategoryName:  n.CategoryName,
		MonthLabel:    monthLabel(n.Month),
		Percentage:    n.Percentage.StringFixed(1),
		Spent:         core.FormatMoney(n.Spent),
		Budget:        core.FormatMoney(n.Budget),
		Remaining:     core.FormatMoney(n.Budget.Sub(n.Spent)),
		OverThreshold: n.Percentage.GreaterThanOrEqual(alertWarnPercent),
		FromName:      s.cfg.FromName,
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, "send budget alert", Message{
		From:    s.from(),
		To:      mail.Address{Name: n.RecipientName, Address: n.To},
		Subject: subject,
		HTML:    body,
	})
}

func (s *Sender) SendMonthlyReport(ctx context.Context, n core.MonthlyReportNotice) error {
	if len(n.Attachment.Data) == 0 {
		return core.NewValidationError("attachment", "Attachment data cannot be empty")
	}
	label := time.Date(n.Year, time.Month(n.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	p := core.MonthBounds(n.Year, n.Month)
	body, err := s.templates.render(templateReport, reportView{
		Title:         "Monthly Expense Report",
		RecipientName: fallback(n.RecipientName, n.To),
		Start:         p.Start.Format("January 2, 2006"),
		End:           p.End.Format("January 2, 2006"),
		FromName:      s.cfg.FromName,
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, "send monthly report", Message{
		From:        s.from(),
		To:          mail.Address{Name: n.RecipientName, Address: n.To},
		Subject:     "Monthly Expense Report - " + label,
		HTML:        body,
		Attachments: []core.Attachment{n.Attachment},
	})
}

func (s *Sender) SendExpenseReport(ctx context.Context, n core.ExpenseReportNotice) error {
	if len(n.Attachment.Data) == 0 {
		return core.NewValidationError("attachment", "Attachment data cannot be empty")
	}
	body, err := s.templates.render(templateReport, reportView{
		Title:         n.Title,
		RecipientName: fallback(n.RecipientName, n.To),
		Start:         n.Period.Start.Format("January 2, 2006"),
		End:           n.Period.End.Format("January 2, 2006"),
		FromName:      s.cfg.FromName,
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, "send expense report", Message{
		From:        s.from(),
		To:          mail.Address{Name: n.RecipientName, Address: n.To},
		Subject:     fmt.Sprintf("%s - %s", n.Title, n.Period),
		HTML:        body,
		Attachments: []core.Attachment{n.Attachment},
	})
}

func (s *Sender) SendNotification(ctx context.Context, n core.Notice) error {
	return s.deliver(ctx, "send notification", Message{
		From:    s.from(),
		To:      mail.Address{Address: n.To},
		Subject: n.Subject,
		Text:    n.Body,
	})
}

func (s *Sender) deliver(ctx context.Context, op string, m Message) error {
	if m.To.Address == "" {
		return core.NewValidationError("to", "Recipient email cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := m.Bytes(s.now())
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	if err := s.send(s.addr(), s.auth(), s.cfg.FromEmail, []string{m.To.Address}, raw); err != nil {
		slog.ErrorContext(ctx, "SMTP delivery failed",
			"component", "email",
			"operation", op,
			"to", m.To.Address,
			"error", err)
		return core.NewTransportError(op, err)
	}

	slog.InfoContext(ctx, "Email sent",
		"component", "email",
		"operation", op,
		"to", m.To.Address,
		"subject", m.Subject,
		"attachments", len(m.Attachments))
	return nil
}

// sendImplicitTLS is smtp.SendMail over a connection that is TLS from the
// first byte (port 465 style).
func (s *Sender) sendImplicitTLS(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 30 * time.Second}, "tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if a != nil {
		if err := c.Auth(a); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func fallback(name, email string) string {
	if name != "" {
		return name
	}
	return email
}

// monthLabel turns "2024-03" into "March 2024".
func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}
