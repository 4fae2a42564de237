package inbound

import (
	"github.com/samber/lo"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
)

// HTTPEndpoint exposes the contact CRUD handlers. Every handler resolves the
// caller from the session before touching the usecase.
type HTTPEndpoint struct {
	uc uc
}

func principalFrom(r *router.Request) (session.Principal, error) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return session.Principal{}, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	p, ok := sess.Principal()
	if !ok {
		return session.Principal{}, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return p, nil
}

func (h *HTTPEndpoint) Create(r *router.Request) (any, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}

	var req ContactRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Create(r.Context(), p, usecase.CreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Work:        req.Work,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	return CreateResponse{ContactID: resp.ContactID}, nil
}

func (h *HTTPEndpoint) List(r *router.Request) (any, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.List(r.Context(), p, usecase.ListInput{
		Page:  page,
		Query: r.GetQuery("query"),
	})
	if err != nil {
		return nil, err
	}

	return ListResponse{
		Contacts: lo.Map(resp.Contacts, func(c entity.Contact, _ int) ContactItem {
			return ContactItem{
				ContactID:   c.ID,
				Name:        c.Name,
				Email:       c.Email,
				Phone:       c.Phone,
				Work:        c.Work,
				Description: c.Description,
				ImageURL:    resp.ImageURLs[c.ID],
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

func (h *HTTPEndpoint) Detail(r *router.Request) (any, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}

	contactID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Detail(r.Context(), p, contactID)
	if err != nil {
		return nil, err
	}

	return DetailResponse{ContactItem: ContactItem{
		ContactID:   resp.Contact.ID,
		Name:        resp.Contact.Name,
		Email:       resp.Contact.Email,
		Phone:       resp.Contact.Phone,
		Work:        resp.Contact.Work,
		Description: resp.Contact.Description,
		ImageURL:    resp.ImageURL,
	}}, nil
}

func (h *HTTPEndpoint) Update(r *router.Request) (any, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}

	contactID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req ContactRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Update(r.Context(), p, usecase.UpdateInput{
		ContactID:   contactID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Work:        req.Work,
		Description: req.Description,
	}); err != nil {
		return nil, err
	}

	return UpdateResponse{}, nil
}

func (h *HTTPEndpoint) Delete(r *router.Request) (any, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}

	contactID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.Delete(r.Context(), p, contactID); err != nil {
		return nil, err
	}

	return DeleteResponse{}, nil
}

func (h *HTTPEndpoint) UploadImage(r *router.Request) (any, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}

	contactID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	file, err := r.StreamSingleFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	resp, err := h.uc.UploadImage(r.Context(), p, usecase.UploadImageInput{
		ContactID: contactID,
		File:      file,
	})
	if err != nil {
		return nil, err
	}

	return UploadImageResponse{ImageURL: resp.ImageURL}, nil
}
