package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/inbound"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/outbound/db"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/outbound/email"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/outbound/mq"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/clock"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/hash"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/idempotency"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/jwt"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/messaging"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/otp"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/uid"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	Sessions    *session.Manager           `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	OTP         otp.Generator              `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoEmail := email.New(dep.Mail, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoEmail:     repoEmail,
		RepoMessaging: repoMsg,
		Sessions:      dep.Sessions,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		HMAC:          dep.HMAC,
		OTP:           dep.OTP,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Sessions, dep.JWT, dep.Config)

	return nil
}
