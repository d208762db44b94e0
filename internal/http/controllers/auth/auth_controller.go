// Package auth contiene los controllers del API de autenticación.
package auth

import (
	"errors"
	"net/http"

	"github.com/dialogmeet/authsvc/internal/auth/linker"
	"github.com/dialogmeet/authsvc/internal/auth/refresh"
	"github.com/dialogmeet/authsvc/internal/domain/repository"
	dto "github.com/dialogmeet/authsvc/internal/http/dto/auth"
	httperrors "github.com/dialogmeet/authsvc/internal/http/errors"
	"github.com/dialogmeet/authsvc/internal/http/helpers"
	"github.com/dialogmeet/authsvc/internal/http/middlewares"
	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
	"github.com/dialogmeet/authsvc/internal/metrics"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

// Controller maneja register, login, refresh, logout y me.
type Controller struct {
	linker   linker.Service
	refresh  refresh.Service
	accounts repository.AccountRepository
	codec    *jwtx.Codec
}

// NewController crea el controller de auth.
func NewController(lk linker.Service, rf refresh.Service, accounts repository.AccountRepository, codec *jwtx.Codec) *Controller {
	return &Controller{linker: lk, refresh: rf, accounts: accounts, codec: codec}
}

// Register maneja POST /v1/auth/register.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	acc, err := c.linker.Register(ctx, linker.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		Department:    req.Department,
		Position:      req.Position,
		AcceptedTerms: req.AcceptedTerms,
	})
	if err != nil {
		switch {
		case errors.Is(err, linker.ErrMissingFields):
			httperrors.WriteError(w, httperrors.ErrMissingFields)
		case errors.Is(err, linker.ErrTermsNotAccepted):
			httperrors.WriteError(w, httperrors.ErrTermsNotAccepted)
		case errors.Is(err, linker.ErrDuplicateEmail):
			httperrors.WriteError(w, httperrors.ErrEmailTaken)
		default:
			log.Error("register falló", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{Account: accountResponse(acc)})
}

// Login maneja POST /v1/auth/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	acc, err := c.linker.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		// UnknownAccount y BadCredentials colapsan en la misma respuesta:
		// no revelamos si el email existe.
		switch {
		case errors.Is(err, linker.ErrUnknownAccount), errors.Is(err, linker.ErrBadCredentials):
			metrics.Login("password", "failed")
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		default:
			log.Error("login falló", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
		}
		return
	}

	resp, err := c.issueTokens(r, acc)
	if err != nil {
		log.Error("emisión de tokens falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}
	metrics.Login("password", "ok")
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Refresh maneja POST /v1/auth/refresh: canjea un refresh token vigente
// por un access token nuevo. El refresh token no rota.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Refresh"))

	var req dto.RefreshRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if req.RefreshToken == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("refresh_token requerido"))
		return
	}

	rt, err := c.refresh.Verify(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, refresh.ErrTokenNotFound):
			metrics.RefreshVerify("not_found")
			httperrors.WriteError(w, httperrors.ErrRefreshNotFound)
		case errors.Is(err, refresh.ErrTokenRevoked):
			metrics.RefreshVerify("revoked")
			httperrors.WriteError(w, httperrors.ErrRefreshRevoked)
		case errors.Is(err, refresh.ErrTokenExpired):
			metrics.RefreshVerify("expired")
			httperrors.WriteError(w, httperrors.ErrRefreshExpired)
		default:
			log.Error("verificación de refresh falló", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
		}
		return
	}
	metrics.RefreshVerify("ok")

	// El subject del access token es el email, igual que en login.
	acc, err := c.accounts.GetByID(ctx, rt.AccountID)
	if err != nil {
		if repository.IsNotFound(err) {
			// Token vigente de una cuenta borrada: tratarlo como revocado.
			httperrors.WriteError(w, httperrors.ErrRefreshRevoked)
			return
		}
		log.Error("lookup de cuenta falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	access, err := c.codec.Issue(acc.Email, []string{jwtx.DefaultAuthority}, 0)
	if err != nil {
		log.Error("emisión de access token falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(c.codec.AccessTTL().Seconds()),
		RefreshToken: rt.Token,
	})
}

// Logout maneja POST /v1/auth/logout: revoca el refresh token (idempotente)
// y limpia la cookie jwt.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Logout"))

	var req dto.LogoutRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	if req.RefreshToken != "" {
		if err := c.refresh.Revoke(ctx, req.RefreshToken); err != nil {
			log.Error("revocación falló", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.JWTCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me maneja GET /v1/auth/me: refleja la identidad del bearer token y el
// perfil de la cuenta asociada.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := middlewares.GetIdentity(ctx)
	if id == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	resp := dto.MeResponse{
		Subject:     id.Subject,
		Authorities: id.Authorities,
	}
	// El subject es el email; un token de una cuenta borrada devuelve la
	// identidad sola.
	if acc, err := c.accounts.GetByEmail(ctx, id.Subject); err == nil {
		ar := accountResponse(acc)
		resp.Account = &ar
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// issueTokens emite el par access + refresh para una cuenta autenticada.
func (c *Controller) issueTokens(r *http.Request, acc *repository.Account) (*dto.TokenResponse, error) {
	access, err := c.codec.Issue(acc.Email, []string{jwtx.DefaultAuthority}, 0)
	if err != nil {
		return nil, err
	}
	rt, err := c.refresh.Issue(r.Context(), acc.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(c.codec.AccessTTL().Seconds()),
		RefreshToken: rt.Token,
	}, nil
}

func accountResponse(acc *repository.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:              acc.ID,
		Email:           acc.Email,
		Name:            acc.Name,
		Department:      acc.Department,
		Position:        acc.Position,
		SocialProvider:  acc.SocialProvider,
		ProfileImageURL: acc.ProfileImageURL,
	}
}
