package contact

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/inbound"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/outbound/db"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/clock"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/storage"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/uid"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbContact := db.NewDB(dep.DBConn, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbContact,
		Storage:    dep.Storage,
		Validator:  dep.Validator,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
