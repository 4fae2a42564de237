package inbound

import (
	"context"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

type uc interface {
	Create(ctx context.Context, p session.Principal, in usecase.CreateInput) (*usecase.CreateOutput, error)
	List(ctx context.Context, p session.Principal, in usecase.ListInput) (*usecase.ListOutput, error)
	Detail(ctx context.Context, p session.Principal, contactID int64) (*usecase.DetailOutput, error)
	Update(ctx context.Context, p session.Principal, in usecase.UpdateInput) error
	Delete(ctx context.Context, p session.Principal, contactID int64) error
	UploadImage(ctx context.Context, p session.Principal, in usecase.UploadImageInput) (*usecase.UploadImageOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Contacts (need authenticated)
	r.POST("/api/v1/user/contacts", end.Create)
	r.GET("/api/v1/user/contacts", end.List)
	r.GET("/api/v1/user/contacts/:id", end.Detail)
	r.PUT("/api/v1/user/contacts/:id", end.Update)
	r.DELETE("/api/v1/user/contacts/:id", end.Delete)
	r.PUT("/api/v1/user/contacts/:id/image", end.UploadImage)
}
