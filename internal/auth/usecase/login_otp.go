package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

const msgSessionExpired = "Session expired. Please login again."

type LoginOTPInput struct {
	Code string `validate:"required,len=6,numeric"`
}

type LoginOTPOutput struct {
	// Session is the rotated, authenticated session.
	Session *session.Session
	// RedirectTo is the landing route after login.
	RedirectTo string
}

// LoginOTP is the second authentication step. A matching code consumes the
// challenge, promotes the caller onto a fresh session ID and returns the
// landing route. A mismatch keeps the challenge for retry until the
// configured attempt cap clears it.
func (s *Usecase) LoginOTP(ctx context.Context, sess *session.Session, in LoginOTPInput) (*LoginOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginOTP")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	maxAttempts := s.cfg.GetInt("modules.auth.otp_max_attempts")

	ch, res := sess.ConsumeCode(in.Code, s.clock.Now(), maxAttempts)
	switch res {
	case session.ConsumeMissing:
		slog.WarnContext(ctx, "otp submitted without pending challenge", "session_id", sess.ID())
		return nil, goerror.NewBusiness(msgSessionExpired, goerror.CodeUnauthorized)

	case session.ConsumeExpired:
		slog.WarnContext(ctx, "otp challenge expired", "session_id", sess.ID())
		return nil, goerror.NewBusiness(msgSessionExpired, goerror.CodeUnauthorized)

	case session.ConsumeLocked:
		slog.WarnContext(ctx, "otp attempt cap exceeded", "session_id", sess.ID(), "max_attempts", maxAttempts)
		return nil, goerror.NewBusiness("Too many invalid OTP attempts. Please login again.", goerror.CodeUnauthorized)

	case session.ConsumeMismatch:
		slog.WarnContext(ctx, "otp code does not match", "session_id", sess.ID())
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeUnauthorized)
	}

	// The principal comes from the snapshot captured at password
	// verification; the user store is not consulted again here.
	authed := s.sessions.Promote(sess, session.Principal{
		UserID: ch.UserID,
		Email:  ch.Email,
		Name:   ch.Name,
		Role:   entity.RoleFromString(ch.Role).String(),
	})

	return &LoginOTPOutput{
		Session:    authed,
		RedirectTo: s.cfg.GetString("modules.auth.landing_route"),
	}, nil
}
