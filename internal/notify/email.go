package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPGateway sends email through an SMTP dialer. DialAndSend has no deadline
// of its own, so the send runs in a goroutine raced against the context.
type SMTPGateway struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPGateway(host string, port int, from, password string) *SMTPGateway {
	return &SMTPGateway{
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
	}
}

func (g *SMTPGateway) Send(ctx context.Context, subject, body, recipient string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- g.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %v", recipient, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s timed out: %v", recipient, ctx.Err())
	}
}
