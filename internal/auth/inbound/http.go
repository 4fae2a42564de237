package inbound

import (
	"context"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/jwt"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

type uc interface {
	Login(ctx context.Context, sess *session.Session, in usecase.LoginInput) (*usecase.LoginOutput, error)
	LoginOTP(ctx context.Context, sess *session.Session, in usecase.LoginOTPInput) (*usecase.LoginOTPOutput, error)
	Register(ctx context.Context, in usecase.RegisterInput) error
	Logout(ctx context.Context, sess *session.Session) error
	Profile(ctx context.Context, p session.Principal) (*usecase.ProfileOutput, error)
	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, sessions *session.Manager, tokener jwt.JWT, cfg config.Config) {
	end := &HTTPEndpoint{uc: uc, sessions: sessions, jwt: tokener, cfg: cfg}

	// Two-step login
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/login/otp", end.LoginOTP)

	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/logout", end.Logout) // need authenticated

	// Account (need authenticated)
	r.GET("/api/v1/auth/profile", end.Profile)

	// User directory (need ADMIN)
	r.GET("/api/v1/admin/users", end.UserList)
}
