package notify

// This file contains construction of the MIME message carrying the report.

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a fully formed email ready for a Transport.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    []byte
}

// Subject returns the subject line for a report sent at t.
func Subject(prefix string, t time.Time) string {
	return fmt.Sprintf("%s - %s", prefix, t.Format("2006-01-02"))
}

// BuildMessage assembles a multipart/alternative message whose only part is
// the HTML document.
func BuildMessage(from string, to []string, subject, html string, now time.Time) (*Message, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	headers := []struct{ key, value string }{
		{"From", sanitizeHeader(from)},
		{"To", sanitizeHeader(strings.Join(to, ", "))},
		{"Subject", mime.QEncoding.Encode("utf-8", sanitizeHeader(subject))},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), senderDomain(from))},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary())},
	}

	var out bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h.key, h.value)
	}
	out.WriteString("\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create html part: %w", err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(html)); err != nil {
		return nil, fmt.Errorf("failed to encode html part: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode html part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message: %w", err)
	}
	out.Write(body.Bytes())

	return &Message{
		From:    from,
		To:      to,
		Subject: subject,
		Body:    out.Bytes(),
	}, nil
}

func senderDomain(from string) string {
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		return strings.Trim(from[i+1:], "> ")
	}
	return "localhost"
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}
