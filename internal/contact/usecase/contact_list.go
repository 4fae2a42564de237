package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

type ListInput struct {
	Page  int32  `validate:"min=0"`
	Query string `validate:"max=50"`
}

type ListOutput struct {
	Contacts   []entity.Contact
	ImageURLs  map[int64]string
	Page       int32
	PageSize   int32
	Total      int64
	TotalPages int64
}

// List pages through the caller's contacts, optionally narrowed to names
// containing Query (case-insensitive). Image keys are resolved to short-lived
// signed URLs so clients never touch the bucket directly.
func (s *Usecase) List(ctx context.Context, p session.Principal, in ListInput) (*ListOutput, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}

	size := int32(s.cfg.GetInt("modules.contact.page_size"))
	if size < 1 {
		size = 6
	}

	contacts, total, err := s.repoDB.GetContactList(ctx, entity.ContactListFilter{
		UserID: p.UserID,
		Query:  strings.TrimSpace(in.Query),
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact list", "user_id", p.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	urls := make(map[int64]string, len(contacts))
	for _, c := range contacts {
		if c.ImageKey == "" {
			continue
		}
		urls[c.ID] = s.imageURL(ctx, c)
	}

	totalPages := total / int64(size)
	if total%int64(size) != 0 {
		totalPages++
	}

	return &ListOutput{
		Contacts:   contacts,
		ImageURLs:  urls,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// imageURL signs a download URL for the contact's image. Signing failures are
// logged and degrade to the default image rather than failing the read.
func (s *Usecase) imageURL(ctx context.Context, c entity.Contact) string {
	if c.ImageKey == "" {
		return s.cfg.GetString("modules.contact.default_image_url")
	}

	bucket := s.cfg.GetString("modules.contact.image_bucket")
	ttl := s.cfg.GetMinute("modules.contact.image_url_ttl_minutes")

	url, err := s.storage.PresignGet(ctx, bucket, c.ImageKey, ttl)
	if err != nil {
		slog.WarnContext(ctx, "failed to presign contact image", "contact_id", c.ID, "error", err)
		return s.cfg.GetString("modules.contact.default_image_url")
	}

	return url
}
