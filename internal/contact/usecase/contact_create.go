package usecase

import (
	"context"
	"html"
	"log/slog"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

type CreateInput struct {
	Name        string `validate:"required,min=2,max=50"`
	Email       string `validate:"omitempty,email"`
	Phone       string `validate:"required,min=7,max=20,phone"`
	Work        string `validate:"max=50"`
	Description string `validate:"max=500"`
}

type CreateOutput struct {
	ContactID int64
}

// sanitize trims and HTML-escapes a free-text field so stored values are safe
// to render verbatim.
func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// Create adds a contact owned by the caller.
func (s *Usecase) Create(ctx context.Context, p session.Principal, in CreateInput) (*CreateOutput, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	contact := entity.Contact{
		ID:          s.uid.Generate(),
		UserID:      p.UserID,
		Name:        sanitize(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		Work:        sanitize(in.Work),
		Description: sanitize(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repoDB.CreateContact(ctx, contact); err != nil {
		slog.ErrorContext(ctx, "failed to repo create contact", "user_id", p.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CreateOutput{ContactID: contact.ID}, nil
}
