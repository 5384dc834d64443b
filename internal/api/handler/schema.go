package handler

import "github.com/facegate/auth-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// registerRequest binds the non-file fields of the multipart registration
// form; the optional face_image part is read separately.
type registerRequest struct {
	Username        string `form:"username"         validate:"required"`
	Email           string `form:"email"            validate:"omitempty,email"`
	Password        string `form:"password"         validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type externalLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type authResponse struct {
	Token string          `json:"token,omitempty"`
	User  *domain.Account `json:"user,omitempty"`
}

type accountListResponse struct {
	Accounts []accountSummary `json:"accounts"`
	Total    int              `json:"total"`
}

// accountSummary exposes which factors an account has enrolled without ever
// exposing the underlying blobs.
type accountSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"`
	HasPassword  bool   `json:"has_password"`
	FaceEnrolled bool   `json:"face_enrolled"`
	External     bool   `json:"external_identity"`
}
