package usecase

import (
	"context"
	"log/slog"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
)

type UserListInput struct {
	Page int32 `validate:"gte=0"`
}

type UserListOutput struct {
	Users      []entity.User
	Total      int64
	Page       int32
	TotalPages int64
	PageSize   int32
}

// UserList pages through the user directory. The route is admin-only; the
// authorization itself happens in the router middleware.
func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}

	size := s.cfg.GetInt32("modules.auth.user_page_size")
	if size < 1 {
		size = 20
	}

	users, total, err := s.repoDB.GetUserList(ctx, entity.UserListFilter{
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user list", "page", page, "error", err)
		return nil, goerror.NewServer(err)
	}

	totalPages := (total + int64(size) - 1) / int64(size)

	return &UserListOutput{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		PageSize:   size,
	}, nil
}
