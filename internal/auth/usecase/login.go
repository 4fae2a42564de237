package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

const msgBadCredential = "Invalid Username or Password"

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	OtpSent bool
}

// Login is the first authentication step: it verifies the password, binds a
// fresh one-time-code challenge to the caller's session and delivers the code
// by email. A missing account and a wrong password produce the same answer.
func (s *Usecase) Login(ctx context.Context, sess *session.Session, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login for unknown account", "email", email)
		return nil, goerror.NewBusiness(msgBadCredential, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.Enabled {
		slog.WarnContext(ctx, "login for disabled account", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgBadCredential, goerror.CodeUnauthorized)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password does not match", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgBadCredential, goerror.CodeUnauthorized)
	}

	if !user.Role.IsValid() {
		slog.WarnContext(ctx, "account role is not recognized", "user_id", user.ID)
		return nil, goerror.NewBusiness("Account role is not recognized", goerror.CodeForbidden)
	}

	code, err := s.otp.Code()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.cfg.GetMinute("modules.auth.otp_ttl_minutes")

	// A new login attempt replaces any pending challenge on this session.
	sess.SetChallenge(session.Challenge{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.FullName,
		Role:      user.Role.String(),
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	})

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.GetSecond("mail.send_timeout_seconds"))
	defer cancel()

	err = s.repoEmail.Send(sendCtx, mail.Message{
		To:       []string{user.Email},
		Subject:  s.cfg.GetString("modules.auth.otp_subject"),
		TextBody: fmt.Sprintf(s.cfg.GetString("modules.auth.otp_body"), user.FullName, code, int(ttl.Minutes())),
	})
	if err != nil {
		// The challenge stays bound; the user restarts from step one when
		// delivery keeps failing.
		slog.ErrorContext(ctx, "failed to send otp email", "user_id", user.ID, "error", err)
		return nil, goerror.NewBusiness("Unable to send OTP. Please try again later.", goerror.CodeInternal)
	}

	return &LoginOutput{OtpSent: true}, nil
}
