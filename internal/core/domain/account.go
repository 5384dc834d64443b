package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account models an authenticated actor in the system.
//
// An account always carries at least one authentication method: a password
// hash, an enrolled face template, or an external-provider identity. The
// creation paths guarantee this; the store does not re-check it.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Template     Template  `json:"-"`
	ExternalID   string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasPassword reports whether the account supports password login.
func (a *Account) HasPassword() bool { return a.PasswordHash != "" }

// HasTemplate reports whether the account has an enrolled face.
func (a *Account) HasTemplate() bool { return len(a.Template) > 0 }

// HasExternalIdentity reports whether the account is linked to an
// external identity provider.
func (a *Account) HasExternalIdentity() bool { return a.ExternalID != "" }
