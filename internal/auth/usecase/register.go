package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/idempotency"
)

type RegisterInput struct {
	FullName string `validate:"required,min=3,max=20,alphaspace"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

// Register creates a regular account and publishes a registration event for
// the welcome notification. Repeated submissions of the same email are
// collapsed by an idempotency key.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	// Keyed on an HMAC of the email so the raw address never lands in redis.
	emailKey, err := s.hmac.Hash(email)
	if err != nil {
		return goerror.NewServer(err)
	}

	err = s.idemp.Exec(ctx, "auth:register:"+string(emailKey), func(ctx context.Context) error {
		return s.register(ctx, email, in)
	})

	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.WarnContext(ctx, "registration already in progress", "email", email)
		return goerror.NewBusiness("Registration is already being processed", goerror.CodeConflict)

	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.WarnContext(ctx, "registration already completed", "email", email)
		return goerror.NewBusiness("User already exists with this email", goerror.CodeConflict)

	case errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, "previous registration attempt failed recently", "email", email)
		return goerror.NewBusiness("Registration failed recently. Please try again later.", goerror.CodeTooManyRequest)
	}

	return err
}

func (s *Usecase) register(ctx context.Context, email string, in RegisterInput) error {
	_, err := s.repoDB.GetUserByEmail(ctx, email)
	if err == nil {
		slog.WarnContext(ctx, "registration for existing account", "email", email)
		return goerror.NewBusiness("User already exists with this email", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	passwordHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:       s.uid.Generate(),
		Email:    email,
		FullName: strings.TrimSpace(in.FullName),
		Role:     entity.RoleUser,
		ImageURL: s.cfg.GetString("modules.auth.default_image_url"),
		Enabled:  true,
	}

	if err := s.repoDB.CreateUser(ctx, user, string(passwordHash)); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "registration raced an existing account", "email", email)
			return goerror.NewBusiness("User already exists with this email", goerror.CodeConflict)
		}

		slog.ErrorContext(ctx, "failed to repo create user", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	// Best effort: a lost welcome email must not fail the registration.
	if err := s.repoMessaging.PublishUserRegistration(ctx, UserRegistrationEvent{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user registration event", "user_id", user.ID, "error", err)
	}

	return nil
}
