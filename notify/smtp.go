package notify

// This file contains the SMTP transport. Every send opens its own session,
// encrypts it, authenticates and closes it again.

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"
)

// implicitTLSPort is the submission port that expects TLS from the first byte.
const implicitTLSPort = 465

const defaultDialTimeout = 30 * time.Second

// Transport delivers a fully formed message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPTransport sends over an encrypted, PLAIN-authenticated SMTP session.
// Port 465 uses implicit TLS, any other port requires STARTTLS.
type SMTPTransport struct {
	Host     string
	Port     int
	User     string
	Password string
	// TLSConfig overrides the client TLS settings; ServerName defaults to Host.
	TLSConfig   *tls.Config
	DialTimeout time.Duration
}

// NewSMTPTransport returns a transport for cfg.
func NewSMTPTransport(cfg Config) (*SMTPTransport, error) {
	port, err := cfg.PortNumber()
	if err != nil {
		return nil, err
	}
	return &SMTPTransport{
		Host:     cfg.Host,
		Port:     port,
		User:     cfg.User,
		Password: cfg.Password,
	}, nil
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	if t.TLSConfig != nil {
		cfg := t.TLSConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = t.Host
		}
		return cfg
	}
	return &tls.Config{ServerName: t.Host, MinVersion: tls.VersionTLS12}
}

// Send delivers msg to every recipient in msg.To.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}

	timeout := t.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if t.Port == implicitTLSPort {
		tlsConn := tls.Client(conn, t.tlsConfig())
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return fmt.Errorf("tls handshake: %w", err)
		}
		conn = tlsConn
	}

	c, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer func() { _ = c.Close() }()

	if t.Port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return errors.New("smtp server does not support STARTTLS")
		}
		if err := c.StartTLS(t.tlsConfig()); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if err := c.Auth(smtp.PlainAuth("", t.User, t.Password, t.Host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if err := c.Mail(envelopeAddress(msg.From)); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(envelopeAddress(rcpt)); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg.Body); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return c.Quit()
}

// envelopeAddress strips a display name, "Ops <ops@example.com>" -> "ops@example.com".
func envelopeAddress(addr string) string {
	if parsed, err := mail.ParseAddress(addr); err == nil {
		return parsed.Address
	}
	return addr
}
