package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

// Delete removes a contact and its stored image. The image removal is best
// effort; an orphaned object does not block the delete.
func (s *Usecase) Delete(ctx context.Context, p session.Principal, contactID int64) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	contact, err := s.repoDB.GetContactByID(ctx, p.UserID, contactID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness(msgContactNotFound, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", p.UserID, "contact_id", contactID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.DeleteContact(ctx, p.UserID, contactID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete contact", "user_id", p.UserID, "contact_id", contactID, "error", err)
		return goerror.NewServer(err)
	}

	if contact.ImageKey != "" {
		bucket := s.cfg.GetString("modules.contact.image_bucket")
		if err := s.storage.DeleteObject(ctx, bucket, contact.ImageKey); err != nil {
			slog.WarnContext(ctx, "failed to delete contact image", "contact_id", contactID, "key", contact.ImageKey, "error", err)
		}
	}

	return nil
}
