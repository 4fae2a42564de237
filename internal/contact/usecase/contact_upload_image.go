package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/storage"
)

var imageContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

type UploadImageInput struct {
	ContactID int64
	File      io.Reader
}

type UploadImageOutput struct {
	ImageURL string
}

// UploadImage replaces the contact's picture. The upload is buffered so the
// size cap and the sniffed content type are enforced before anything reaches
// the bucket; the previous object is removed after the row points at the new
// key.
func (s *Usecase) UploadImage(ctx context.Context, p session.Principal, in UploadImageInput) (*UploadImageOutput, error) {
	ctx, span := s.startSpan(ctx, "UploadImage")
	defer span.End()

	contact, err := s.repoDB.GetContactByID(ctx, p.UserID, in.ContactID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness(msgContactNotFound, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", p.UserID, "contact_id", in.ContactID, "error", err)
		return nil, goerror.NewServer(err)
	}

	maxSize := s.cfg.GetInt64("modules.contact.image_max_size_bytes")
	if maxSize <= 0 {
		maxSize = 2 << 20
	}

	data, err := io.ReadAll(io.LimitReader(in.File, maxSize+1))
	if err != nil {
		slog.ErrorContext(ctx, "failed to read contact image upload", "contact_id", in.ContactID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if int64(len(data)) > maxSize {
		return nil, goerror.NewBusiness(
			fmt.Sprintf("Image must be smaller than %d bytes", maxSize), goerror.CodeInvalidInput)
	}
	if len(data) == 0 {
		return nil, goerror.NewBusiness("Image file is empty", goerror.CodeInvalidInput)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageContentTypes[contentType]
	if !ok {
		return nil, goerror.NewBusiness("Only JPEG, PNG and GIF images are allowed", goerror.CodeInvalidInput)
	}

	bucket := s.cfg.GetString("modules.contact.image_bucket")
	key := fmt.Sprintf("contacts/%d/%d.%s", p.UserID, contact.ID, ext)

	_, err = s.storage.PutObject(ctx, bucket, key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store contact image", "contact_id", in.ContactID, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateContactImage(ctx, p.UserID, in.ContactID, key); err != nil {
		slog.ErrorContext(ctx, "failed to repo update contact image", "contact_id", in.ContactID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// A re-upload with a different extension leaves the old object behind.
	if contact.ImageKey != "" && contact.ImageKey != key {
		if err := s.storage.DeleteObject(ctx, bucket, contact.ImageKey); err != nil {
			slog.WarnContext(ctx, "failed to delete previous contact image", "key", contact.ImageKey, "error", err)
		}
	}

	contact.ImageKey = key

	return &UploadImageOutput{ImageURL: s.imageURL(ctx, *contact)}, nil
}
