// Package notify implements the outbound notification senders: SMTP email
// and SMS through the sms.ru gateway. Both senders degrade to dev mode when
// unconfigured (the message is logged instead of delivered) so local
// development never needs real credentials.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	gomail "gopkg.in/gomail.v2"
)

// EmailSender delivers plain messages over SMTP.
type EmailSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewEmailSender constructs an EmailSender. An empty host or user puts the
// sender in dev mode.
func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{host: host, port: port, user: user, password: password, from: from}
}

// configured reports whether real SMTP delivery is possible.
func (e *EmailSender) configured() bool {
	return e.host != "" && e.user != ""
}

// Send delivers message to the given address. In dev mode the message is
// logged and the call succeeds.
func (e *EmailSender) Send(ctx context.Context, to, message string) error {
	if !e.configured() {
		log.Info().Str("to", to).Str("message", message).Msg("email (dev mode)")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.from, "МойДокумент")
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Код подтверждения")
	m.SetBody("text/plain", message)

	d := gomail.NewDialer(e.host, e.port, e.user, e.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
