package db

import (
	"context"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
)

func (s *DB) CreateUser(ctx context.Context, user entity.NewUser, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO users (id, email, password, full_name, role, about, image_url, enabled)
		VALUES ($1, $2, $3, $4, $5, '', $6, $7)`

	_, err = s.conn.Exec(ctx, query,
		user.ID,
		user.Email,
		passwordHash,
		user.FullName,
		user.Role.String(),
		user.ImageURL,
		user.Enabled,
	)

	return s.mapError(err)
}
