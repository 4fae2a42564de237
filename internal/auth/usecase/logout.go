package usecase

import (
	"context"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

// Logout destroys the caller's session. Challenge and principal state go
// with it; the cookie is cleared by the transport layer.
func (s *Usecase) Logout(ctx context.Context, sess *session.Session) error {
	_, span := s.startSpan(ctx, "Logout")
	defer span.End()

	s.sessions.Destroy(sess.ID())

	return nil
}
