// Package admin contiene los controllers de operación protegidos por
// X-Admin-API-Key: barrido de tokens expirados y revocación puntual.
package admin

import (
	"net/http"
	"time"

	"github.com/dialogmeet/authsvc/internal/auth/refresh"
	dto "github.com/dialogmeet/authsvc/internal/http/dto/auth"
	httperrors "github.com/dialogmeet/authsvc/internal/http/errors"
	"github.com/dialogmeet/authsvc/internal/http/helpers"
	"github.com/dialogmeet/authsvc/internal/metrics"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

// TokensController expone las operaciones administrativas sobre refresh tokens.
type TokensController struct {
	refresh refresh.Service
}

// NewTokensController crea el controller de tokens admin.
func NewTokensController(rf refresh.Service) *TokensController {
	return &TokensController{refresh: rf}
}

// Sweep maneja POST /v1/admin/tokens/sweep: borra los tokens ya expirados.
// Lo invoca authctl o un cron externo; el servicio igual corre su sweeper
// interno en background.
func (c *TokensController) Sweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("admin.Sweep"))

	n, err := c.refresh.SweepExpired(ctx, time.Now())
	if err != nil {
		log.Error("barrido falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}
	metrics.TokensSwept(n)

	helpers.WriteJSON(w, http.StatusOK, dto.SweepResponse{Deleted: n})
}

// Revoke maneja POST /v1/admin/tokens/revoke: revoca un refresh token
// puntual. Idempotente: revocar algo ya revocado o inexistente es 204.
func (c *TokensController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("admin.Revoke"))

	var req dto.RevokeRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if req.RefreshToken == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("refresh_token requerido"))
		return
	}

	if err := c.refresh.Revoke(ctx, req.RefreshToken); err != nil {
		log.Error("revocación falló", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
