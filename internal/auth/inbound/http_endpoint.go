package inbound

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/jwt"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

// HTTPEndpoint exposes HTTP handlers for the two-step login and account
// workflows. It owns the session cookie: handlers mint and clear it, the
// usecase layer never sees HTTP.
type HTTPEndpoint struct {
	uc       uc
	sessions *session.Manager
	jwt      jwt.JWT
	cfg      config.Config
}

func (h *HTTPEndpoint) issueCookie(sess *session.Session, email string) (*http.Cookie, error) {
	token, err := h.jwt.Generate(sess.ID(), email)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     h.cfg.GetString("modules.auth.cookie_name"),
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.GetMinute("modules.auth.session_ttl_minutes").Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.GetBool("modules.auth.cookie_secure"),
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (h *HTTPEndpoint) clearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cfg.GetString("modules.auth.cookie_name"),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.GetBool("modules.auth.cookie_secure"),
		SameSite: http.SameSiteLaxMode,
	}
}

// Login verifies credentials and sends a one-time code by email. An anonymous
// session is created for first-time callers so the pending challenge has a
// place to live.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	var cookies []*http.Cookie
	sess := session.FromContext(r.Context())
	if sess == nil {
		sess = h.sessions.Create()

		ck, err := h.issueCookie(sess, "")
		if err != nil {
			return nil, goerror.NewServer(err)
		}
		cookies = append(cookies, ck)
	}

	resp, err := h.uc.Login(r.Context(), sess, usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{OtpSent: resp.OtpSent, cookies: cookies}, nil
}

// LoginOTP completes the login. A matching code moves the caller onto a
// rotated session; the old cookie stops resolving immediately.
func (h *HTTPEndpoint) LoginOTP(r *router.Request) (any, error) {
	var req LoginOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil, goerror.NewBusiness("Session expired. Please login again.", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.LoginOTP(r.Context(), sess, usecase.LoginOTPInput{Code: req.Code})
	if err != nil {
		return nil, err
	}

	p, _ := resp.Session.Principal()
	ck, err := h.issueCookie(resp.Session, p.Email)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return LoginOTPResponse{
		RedirectTo: resp.RedirectTo,
		cookies:    []*http.Cookie{ck},
	}, nil
}

// Register creates a new account.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// Logout destroys the session and clears the cookie.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := h.uc.Logout(r.Context(), sess); err != nil {
		return nil, err
	}

	return LogoutResponse{cookies: []*http.Cookie{h.clearCookie()}}, nil
}

// Profile returns the authenticated account.
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	p, ok := sess.Principal()
	if !ok {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.Profile(r.Context(), p)
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		UserID:   resp.UserID,
		Email:    resp.Email,
		FullName: resp.FullName,
		Role:     resp.Role,
		About:    resp.About,
		ImageURL: resp.ImageURL,
	}, nil
}

// UserList pages through the user directory (admin only).
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{Page: page})
	if err != nil {
		return nil, err
	}

	return UserListResponse{
		Users: lo.Map(resp.Users, func(u entity.User, _ int) UserListItem {
			return UserListItem{
				UserID:   u.ID,
				Email:    u.Email,
				FullName: u.FullName,
				Role:     u.Role.String(),
				Enabled:  u.Enabled,
			}
		}),
		meta: map[string]any{
			"page":        resp.Page,
			"page_size":   resp.PageSize,
			"total":       resp.Total,
			"total_pages": resp.TotalPages,
		},
	}, nil
}
