package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
)

type ConsumeUserRegistrationInput struct {
	UserID   int64  `validate:"required,gt=0"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required"`
}

// ConsumeUserRegistration sends the welcome email for a freshly registered
// account. Malformed payloads are dropped; transient mail failures are retried
// with fibonacci backoff before the message goes back to the bus.
func (s *Usecase) ConsumeUserRegistration(ctx context.Context, in ConsumeUserRegistrationInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistration")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid user registration payload", "error", err)
		return nil
	}

	msg := mail.Message{
		To:       []string{in.Email},
		Subject:  s.cfg.GetString("modules.notification.welcome_subject"),
		TextBody: fmt.Sprintf(s.cfg.GetString("modules.notification.welcome_body"), in.FullName),
	}

	maxRetries := s.cfg.GetInt64("modules.notification.send_max_retries")
	if maxRetries <= 0 {
		maxRetries = 3
	}

	b := retry.NewFibonacci(500 * time.Millisecond)
	b = retry.WithMaxRetries(uint64(maxRetries), b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.GetSecond("mail.send_timeout_seconds"))
		defer cancel()

		if err := s.repoEmail.Send(sendCtx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
