package inbound

type ContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Work        string `json:"work"`
	Description string `json:"description"`
}

type CreateResponse struct {
	ContactID int64 `json:"contact_id,string"`
}

func (r CreateResponse) Message() string { return "contact created" }

type ContactItem struct {
	ContactID   int64  `json:"contact_id,string"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Work        string `json:"work"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type ListResponse struct {
	Contacts []ContactItem `json:"contacts"`

	meta map[string]any
}

func (r ListResponse) Meta() map[string]any { return r.meta }

type DetailResponse struct {
	ContactItem
}

type UpdateResponse struct{}

func (r UpdateResponse) Message() string { return "contact updated" }

type DeleteResponse struct{}

func (r DeleteResponse) Message() string { return "contact deleted" }

type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}

func (r UploadImageResponse) Message() string { return "contact image updated" }
