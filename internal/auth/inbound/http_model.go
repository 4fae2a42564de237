package inbound

import "net/http"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OtpSent bool `json:"otp_sent"`

	cookies []*http.Cookie
}

func (r LoginResponse) Message() string { return "OTP has been sent to your email" }

func (r LoginResponse) Cookies() []*http.Cookie { return r.cookies }

type LoginOTPRequest struct {
	Code string `json:"code"`
}

type LoginOTPResponse struct {
	RedirectTo string `json:"redirect_to"`

	cookies []*http.Cookie
}

func (r LoginOTPResponse) Message() string { return "login successful" }

func (r LoginOTPResponse) Cookies() []*http.Cookie { return r.cookies }

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutResponse struct {
	cookies []*http.Cookie
}

func (r LogoutResponse) Message() string { return "logout successful" }

func (r LogoutResponse) Cookies() []*http.Cookie { return r.cookies }

type ProfileResponse struct {
	UserID   int64  `json:"user_id,string"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	About    string `json:"about"`
	ImageURL string `json:"image_url"`
}

type UserListItem struct {
	UserID   int64  `json:"user_id,string"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`

	meta map[string]any
}

func (r UserListResponse) Meta() map[string]any { return r.meta }
