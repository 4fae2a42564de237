package db

import (
	"context"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
)

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, email, password, full_name, role, about, image_url, enabled, created_at, updated_at
		FROM users
		WHERE email = $1`

	var user entity.User
	var role string
	err = s.conn.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FullName,
		&role,
		&user.About,
		&user.ImageURL,
		&user.Enabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	user.Role = entity.RoleFromString(role)

	return &user, nil
}

func (s *DB) GetUserList(ctx context.Context, filter entity.UserListFilter) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	const countQuery = `SELECT COUNT(*) FROM users`

	var total int64
	if err = s.conn.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	const listQuery = `
		SELECT id, email, full_name, role, about, image_url, enabled, created_at, updated_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := s.conn.Query(ctx, listQuery, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var user entity.User
		var role string
		if err = rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&role,
			&user.About,
			&user.ImageURL,
			&user.Enabled,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, 0, s.mapError(err)
		}

		user.Role = entity.RoleFromString(role)
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return users, total, nil
}
