package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/clock"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/storage"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/uid"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

type repoDB interface {
	CreateContact(ctx context.Context, c entity.Contact) error
	GetContactByID(ctx context.Context, userID, contactID int64) (*entity.Contact, error)
	GetContactList(ctx context.Context, filter entity.ContactListFilter) ([]entity.Contact, int64, error)
	UpdateContact(ctx context.Context, c entity.Contact) error
	UpdateContactImage(ctx context.Context, userID, contactID int64, imageKey string) error
	DeleteContact(ctx context.Context, userID, contactID int64) error
}

// Usecase implements the contact CRUD and image workflows.
type Usecase struct {
	repoDB    repoDB
	storage   storage.Storage
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

// Dependency lists everything Usecase needs.
type Dependency struct {
	RepoDB     repoDB
	Storage    storage.Storage
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		storage:   dep.Storage,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("contact.usecase").Start(ctx, name)
}
