package router

import (
	"log/slog"
	"net/http"

	"github.com/casbin/casbin/v3"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/jwt"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

// middlewareSessionAuth resolves the caller's session from the signed cookie
// and guards non-public endpoints.
//
// The session is attached to the context even on public endpoints, so the
// login handlers can reuse an existing anonymous session instead of minting
// a new one per attempt. Authorization is role-based: the casbin enforcer
// decides whether the principal's role may reach the matched route.
func middlewareSessionAuth(
	verifier jwt.JWT,
	sessions *session.Manager,
	enforcer *casbin.Enforcer,
	cookieName string,
	publicEndpoints map[string]map[string]struct{},
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := routePattern(r)

			var sess *session.Session
			if ck, err := r.Cookie(cookieName); err == nil && ck.Value != "" {
				if claims, err := verifier.Verify(ck.Value); err == nil {
					if s, ok := sessions.Get(claims.SessionID); ok {
						sess = s
					}
				}
			}

			if sess != nil {
				r = r.WithContext(session.NewContext(r.Context(), sess))
			}

			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			if sess == nil {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			principal, ok := sess.Principal()
			if !ok {
				// A session with only a pending challenge is still anonymous.
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			allowed, err := enforcer.Enforce(principal.Role, path, r.Method)
			if err != nil {
				slog.ErrorContext(r.Context(), "authorization check failed", "role", principal.Role, "path", path, "error", err)
				writeJSON(w, map[string]string{"message": "Internal server error"}, http.StatusInternalServerError)
				return
			}

			if !allowed {
				writeJSON(w, map[string]string{"message": "You do not have permission to access this resource"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
