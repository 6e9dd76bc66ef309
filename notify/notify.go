package notify

// Package notify delivers the HTML report by email. Delivery is optional:
// missing configuration skips it, and failures are reported, never raised.

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Notifier sends the report to the configured recipients.
type Notifier struct {
	logger    zerolog.Logger
	cfg       Config
	subject   string
	transport Transport
	now       func() time.Time
}

// New returns a Notifier for cfg. subject is the prefix of the subject line,
// the current date is appended when sending.
func New(logger zerolog.Logger, cfg Config, subject string) *Notifier {
	return &Notifier{
		logger:  logger,
		cfg:     cfg,
		subject: subject,
		now:     time.Now,
	}
}

// WithTransport replaces the SMTP transport built from the config.
func (n *Notifier) WithTransport(t Transport) *Notifier {
	n.transport = t
	return n
}

// Send delivers html and reports whether the message was accepted. It returns
// false without connecting when the configuration is incomplete or html is empty.
func (n *Notifier) Send(ctx context.Context, html string) bool {
	if missing := n.cfg.Missing(); len(missing) > 0 {
		n.logger.Warn().Strs("missing", missing).Msg("Email sending skipped - missing configuration")
		return false
	}

	if _, err := n.cfg.PortNumber(); err != nil {
		n.logger.Warn().Err(err).Msg("Email sending skipped - invalid configuration")
		return false
	}

	recipients := n.cfg.Recipients()
	if len(recipients) == 0 {
		n.logger.Warn().Str("key", EnvTo).Msg("Email sending skipped - no recipients")
		return false
	}

	if html == "" {
		n.logger.Error().Msg("No HTML content to send")
		return false
	}

	transport := n.transport
	if transport == nil {
		smtpTransport, err := NewSMTPTransport(n.cfg)
		if err != nil {
			n.logger.Error().Err(err).Msg("Failed to set up SMTP transport")
			return false
		}
		transport = smtpTransport
	}

	now := n.now()
	msg, err := BuildMessage(n.cfg.From, recipients, Subject(n.subject, now), html, now)
	if err != nil {
		n.logger.Error().Err(err).Msg("Failed to build email")
		return false
	}

	if err := transport.Send(ctx, msg); err != nil {
		n.logger.Error().Err(err).Str("host", n.cfg.Host).Msg("Failed to send email")
		return false
	}

	n.logger.Info().Strs("to", recipients).Msg("Email report sent successfully")
	return true
}
