package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/clock"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/hash"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/idempotency"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/otp"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/uid"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

// UserRegistrationEvent is published after a successful registration.
type UserRegistrationEvent struct {
	UserID   int64
	Email    string
	FullName string
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.NewUser, passwordHash string) error
	GetUserList(ctx context.Context, filter entity.UserListFilter) ([]entity.User, int64, error)
}

type repoEmail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoMessaging interface {
	PublishUserRegistration(ctx context.Context, msg UserRegistrationEvent) error
}

// Usecase implements the two-step login state machine and account workflows.
type Usecase struct {
	repoDB        repoDB
	repoEmail     repoEmail
	repoMessaging repoMessaging
	sessions      *session.Manager
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	hmac          hash.Hash
	otp           otp.Generator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

// Dependency lists everything Usecase needs.
type Dependency struct {
	RepoDB        repoDB
	RepoEmail     repoEmail
	RepoMessaging repoMessaging
	Sessions      *session.Manager
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	HMAC          hash.Hash
	OTP           otp.Generator
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoEmail:     dep.RepoEmail,
		repoMessaging: dep.RepoMessaging,
		sessions:      dep.Sessions,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		hmac:          dep.HMAC,
		otp:           dep.OTP,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}
