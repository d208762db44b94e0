// Package auth contiene los DTOs del API de autenticación.
package auth

// RegisterRequest es el body de POST /v1/auth/register.
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name,omitempty"`
	Department    string `json:"department,omitempty"`
	Position      string `json:"position,omitempty"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

// LoginRequest es el body de POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest es el body de POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest es el body de POST /v1/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse es la respuesta de login, refresh y callback social.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"` // siempre "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // segundos
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AccountResponse es la proyección pública de una cuenta.
type AccountResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name,omitempty"`
	Department      string `json:"department,omitempty"`
	Position        string `json:"position,omitempty"`
	SocialProvider  string `json:"social_provider,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// RegisterResponse es la respuesta de POST /v1/auth/register.
type RegisterResponse struct {
	Account AccountResponse `json:"account"`
}

// MeResponse es la respuesta de GET /v1/auth/me. Account puede faltar si
// la cuenta del token ya no existe.
type MeResponse struct {
	Subject     string           `json:"subject"`
	Authorities []string         `json:"authorities"`
	Account     *AccountResponse `json:"account,omitempty"`
}

// SweepResponse es la respuesta de POST /v1/admin/tokens/sweep.
type SweepResponse struct {
	Deleted int64 `json:"deleted"`
}

// RevokeRequest es el body de POST /v1/admin/tokens/revoke.
type RevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}
