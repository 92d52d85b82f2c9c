package jobs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an unauthenticated relay such as the local MTA
// or Mailpit in development.
type SMTPMailer struct {
	host    string
	port    int
	timeout time.Duration
	now     func() time.Time
}

// NewSMTPMailer constructs a mailer for host:port.
func NewSMTPMailer(host string, port int) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, timeout: defaultSMTPTimeout, now: time.Now}
}

// Send delivers msg. The whole SMTP conversation must finish before ctx's
// deadline, or within the mailer timeout when ctx has none.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = m.now().Add(m.timeout)
	}
	email, err := buildMessage(msg, m.now())
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.NoTLS),
		mail.WithTimeout(m.timeout),
		mail.WithoutNoop(),
		mail.WithDialContextFunc(dialWithDeadline(deadline)),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// dialWithDeadline bounds every read and write on the connection, including
// the server greeting.
func dialWithDeadline(deadline time.Time) mail.DialContextFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func buildMessage(msg Message, now time.Time) (*mail.Msg, error) {
	if msg.From == "" || len(msg.To) == 0 {
		return nil, errors.New("smtp: from and to are required")
	}
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return nil, errors.New("smtp: subject contains a line break")
	}
	email := mail.NewMsg()
	if err := email.From(msg.From); err != nil {
		return nil, fmt.Errorf("smtp: from: %w", err)
	}
	if err := email.To(msg.To...); err != nil {
		return nil, fmt.Errorf("smtp: to: %w", err)
	}
	if msg.ReplyTo != "" {
		// A reply address the parser rejects is dropped; the lead is still worth mailing.
		_ = email.ReplyTo(msg.ReplyTo)
	}
	email.Subject(msg.Subject)
	email.SetDateWithValue(now)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)
	return email, nil
}
