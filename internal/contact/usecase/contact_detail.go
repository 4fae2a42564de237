package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

const msgContactNotFound = "Contact not found"

type DetailOutput struct {
	Contact  entity.Contact
	ImageURL string
}

// Detail returns one contact. The lookup is scoped by the caller's ID, so a
// contact owned by someone else answers exactly like a missing one.
func (s *Usecase) Detail(ctx context.Context, p session.Principal, contactID int64) (*DetailOutput, error) {
	ctx, span := s.startSpan(ctx, "Detail")
	defer span.End()

	contact, err := s.repoDB.GetContactByID(ctx, p.UserID, contactID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness(msgContactNotFound, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", p.UserID, "contact_id", contactID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &DetailOutput{
		Contact:  *contact,
		ImageURL: s.imageURL(ctx, *contact),
	}, nil
}
