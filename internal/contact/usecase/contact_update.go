package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

type UpdateInput struct {
	ContactID   int64  `validate:"required"`
	Name        string `validate:"required,min=2,max=50"`
	Email       string `validate:"omitempty,email"`
	Phone       string `validate:"required,min=7,max=20,phone"`
	Work        string `validate:"max=50"`
	Description string `validate:"max=500"`
}

// Update replaces a contact's fields. The existing row is fetched first so
// ownership is checked before anything is written.
func (s *Usecase) Update(ctx context.Context, p session.Principal, in UpdateInput) error {
	ctx, span := s.startSpan(ctx, "Update")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	contact, err := s.repoDB.GetContactByID(ctx, p.UserID, in.ContactID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness(msgContactNotFound, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", p.UserID, "contact_id", in.ContactID, "error", err)
		return goerror.NewServer(err)
	}

	contact.Name = sanitize(in.Name)
	contact.Email = strings.ToLower(strings.TrimSpace(in.Email))
	contact.Phone = strings.TrimSpace(in.Phone)
	contact.Work = sanitize(in.Work)
	contact.Description = sanitize(in.Description)
	contact.UpdatedAt = s.clock.Now()

	if err := s.repoDB.UpdateContact(ctx, *contact); err != nil {
		slog.ErrorContext(ctx, "failed to repo update contact", "user_id", p.UserID, "contact_id", in.ContactID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
