// Package mailer sends transactional mail through the platform's SMTP
// account.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"

	"github.com/immoflow/accessgate/internal/config"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

var _ Sender = (*SMTP)(nil)

type SMTP struct {
	host     string
	port     string
	account  string
	password string
	sender   string
}

func NewSMTP(cfg config.EnvConfig) *SMTP {
	return &SMTP{
		host:     cfg.GetSmtpHost(),
		port:     cfg.GetSmtpPort(),
		account:  cfg.GetSmtpAccount(),
		password: cfg.GetSmtpPassword(),
		sender:   cfg.GetSmtpSender(),
	}
}

func (s *SMTP) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.sender, to, subject, body)
	auth := smtp.PlainAuth("", s.account, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.sender, []string{to}, []byte(msg)); err != nil {
		return errors.Wrap(err, "[SMTP.Send] send mail")
	}
	return nil
}
