// Package social contiene los controllers del login social.
package social

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dialogmeet/authsvc/internal/auth/refresh"
	dto "github.com/dialogmeet/authsvc/internal/http/dto/auth"
	httperrors "github.com/dialogmeet/authsvc/internal/http/errors"
	"github.com/dialogmeet/authsvc/internal/http/helpers"
	"github.com/dialogmeet/authsvc/internal/http/middlewares"
	svc "github.com/dialogmeet/authsvc/internal/http/services/social"
	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

// cookieMaxAge acota la vida de la cookie jwt del redirect social. Es más
// corta que la validez del refresh token a propósito: la cookie viaja en
// cada request del navegador.
const cookieMaxAge = 24 * time.Hour

// Controller maneja el arranque y el callback del login social.
type Controller struct {
	social       svc.Service
	refresh      refresh.Service
	codec        *jwtx.Codec
	frontendURL  string
	secureCookie bool
}

// NewController crea el controller social. frontendURL es el destino del
// redirect post-login; vacío responde JSON en lugar de redirigir.
func NewController(social svc.Service, rf refresh.Service, codec *jwtx.Codec, frontendURL string, secureCookie bool) *Controller {
	return &Controller{
		social:       social,
		refresh:      rf,
		codec:        codec,
		frontendURL:  frontendURL,
		secureCookie: secureCookie,
	}
}

// Start maneja GET /v1/auth/social/{provider}/start: redirige al proveedor.
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	authURL, err := c.social.Start(r.Context(), provider)
	if err != nil {
		if errors.Is(err, svc.ErrUnsupportedProvider) {
			httperrors.WriteError(w, httperrors.ErrUnsupportedProvider.WithDetail(provider))
			return
		}
		logger.From(r.Context()).Error("arranque de login social falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback maneja GET /v1/auth/social/{provider}/callback.
// Éxito: setea la cookie jwt y redirige al front-end (o responde JSON).
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("social.Callback"))
	provider := chi.URLParam(r, "provider")

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("state y code requeridos"))
		return
	}

	acc, err := c.social.Callback(ctx, provider, state, code)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUnsupportedProvider):
			httperrors.WriteError(w, httperrors.ErrUnsupportedProvider.WithDetail(provider))
		case errors.Is(err, svc.ErrInvalidState):
			httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("state inválido o expirado"))
		case errors.Is(err, svc.ErrExchangeFailed):
			httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("intercambio de code rechazado"))
		default:
			log.Error("callback social falló", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
		}
		return
	}

	access, err := c.codec.Issue(acc.Email, []string{jwtx.DefaultAuthority}, 0)
	if err != nil {
		log.Error("emisión de access token falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}
	rt, err := c.refresh.Issue(ctx, acc.ID)
	if err != nil {
		log.Error("emisión de refresh token falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.JWTCookieName,
		Value:    access,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if c.frontendURL != "" {
		http.Redirect(w, r, c.frontendURL, http.StatusFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(c.codec.AccessTTL().Seconds()),
		RefreshToken: rt.Token,
	})
}
