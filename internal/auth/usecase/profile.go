package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

type ProfileOutput struct {
	UserID   int64
	Email    string
	FullName string
	Role     string
	About    string
	ImageURL string
}

// Profile returns the authenticated account, read fresh from the store so
// profile edits show up without re-login.
func (s *Usecase) Profile(ctx context.Context, p session.Principal) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	user, err := s.repoDB.GetUserByEmail(ctx, p.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account for live session not found", "user_id", p.UserID)
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "user_id", p.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role.String(),
		About:    user.About,
		ImageURL: user.ImageURL,
	}, nil
}
