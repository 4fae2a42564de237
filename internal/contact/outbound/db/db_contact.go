package db

import (
	"context"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into a contains pattern, escaping the LIKE
// metacharacters so user input never acts as a wildcard. Empty in, empty out.
func likePattern(q string) string {
	if q == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(q) + "%"
}

func (s *DB) CreateContact(ctx context.Context, c entity.Contact) (err error) {
	ctx, span := s.startSpan(ctx, "CreateContact")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO contacts (id, user_id, name, email, phone, work, description, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.conn.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Email,
		c.Phone,
		c.Work,
		c.Description,
		c.ImageKey,
		c.CreatedAt,
		c.UpdatedAt,
	)

	return s.mapError(err)
}

func (s *DB) GetContactByID(ctx context.Context, userID, contactID int64) (_ *entity.Contact, err error) {
	ctx, span := s.startSpan(ctx, "GetContactByID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, user_id, name, email, phone, work, description, image_key, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND user_id = $2`

	var c entity.Contact
	err = s.conn.QueryRow(ctx, query, contactID, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Work,
		&c.Description,
		&c.ImageKey,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}

func (s *DB) GetContactList(ctx context.Context, filter entity.ContactListFilter) (_ []entity.Contact, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetContactList")
	defer func() { s.endSpan(span, err) }()

	pattern := likePattern(filter.Query)

	const countQuery = `
		SELECT COUNT(*) FROM contacts
		WHERE user_id = $1 AND ($2 = '' OR name ILIKE $2)`

	var total int64
	if err = s.conn.QueryRow(ctx, countQuery, filter.UserID, pattern).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	const listQuery = `
		SELECT id, user_id, name, email, phone, work, description, image_key, created_at, updated_at
		FROM contacts
		WHERE user_id = $1 AND ($2 = '' OR name ILIKE $2)
		ORDER BY name, id
		LIMIT $3 OFFSET $4`

	rows, err := s.conn.Query(ctx, listQuery, filter.UserID, pattern, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	var contacts []entity.Contact
	for rows.Next() {
		var c entity.Contact
		if err = rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.Work,
			&c.Description,
			&c.ImageKey,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, 0, s.mapError(err)
		}

		contacts = append(contacts, c)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return contacts, total, nil
}

func (s *DB) UpdateContact(ctx context.Context, c entity.Contact) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateContact")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE contacts
		SET name = $3, email = $4, phone = $5, work = $6, description = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2`

	tag, err := s.conn.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Email,
		c.Phone,
		c.Work,
		c.Description,
		c.UpdatedAt,
	)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) UpdateContactImage(ctx context.Context, userID, contactID int64, imageKey string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateContactImage")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE contacts
		SET image_key = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	tag, err := s.conn.Exec(ctx, query, contactID, userID, imageKey)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) DeleteContact(ctx context.Context, userID, contactID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteContact")
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM contacts WHERE id = $1 AND user_id = $2`

	tag, err := s.conn.Exec(ctx, query, contactID, userID)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
