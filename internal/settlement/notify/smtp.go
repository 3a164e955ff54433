package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier delivers statements over SMTP.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPNotifier constructs a notifier. addr is host:port.
func NewSMTPNotifier(addr, username, password, from string) (*SMTPNotifier, error) {
	if addr == "" {
		return nil, errors.New("smtp notifier: empty address")
	}
	if from == "" {
		return nil, errors.New("smtp notifier: empty from address")
	}
	host := addr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		host = addr[:idx]
	}
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{addr: addr, auth: auth, from: from}, nil
}

// Send renders and delivers the statement email.
func (n *SMTPNotifier) Send(ctx context.Context, stmt Statement) error {
	if n == nil {
		return errors.New("smtp notifier: nil")
	}
	if stmt.RecipientEmail == "" {
		return errors.New("smtp notifier: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := RenderStatement(stmt)
	if err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", stmt.RecipientEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return smtp.SendMail(n.addr, n.auth, n.from, []string{stmt.RecipientEmail}, []byte(msg.String()))
}
