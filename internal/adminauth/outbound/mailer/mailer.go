// Package mailer delivers one-time codes over email.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/satriajati/gerbang/internal/pkg/config"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"github.com/satriajati/gerbang/internal/pkg/mail"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
)

type Mailer struct {
	mail mail.Mail
	cfg  config.Config
	ins  instrument.Instrumentation
}

func NewMailer(m mail.Mail, cfg config.Config, ins instrument.Instrumentation) *Mailer {
	return &Mailer{mail: m, cfg: cfg, ins: ins}
}

// SendCode emails the one-time code to the identity. Transient SMTP failures
// are retried with exponential backoff before giving up.
func (s *Mailer) SendCode(ctx context.Context, identity, code string) (err error) {
	ctx, span := s.ins.Tracer("adminauth.outbound.mailer").Start(ctx, "SendCode")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	msg := mail.Message{
		From:     s.cfg.GetString("mail.from"),
		To:       []string{identity},
		Subject:  "Your admin sign-in code",
		TextBody: fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, s.ttlMinutes()),
		HTMLBody: fmt.Sprintf(
			"<p>Your sign-in code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not request it, ignore this email.</p>",
			code, s.ttlMinutes()),
	}

	backoff := retry.WithMaxRetries(
		uint64(s.cfg.GetInt("mail.max_retries")),
		retry.NewExponential(500*time.Millisecond),
	)

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := s.mail.Send(ctx, msg); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	return err
}

func (s *Mailer) ttlMinutes() int {
	return s.cfg.GetInt("modules.adminauth.code_ttl_minutes")
}
