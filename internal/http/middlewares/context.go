package middlewares

import (
	"context"

	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
)

type ctxKey string

const (
	// ctxIdentityKey guarda la identidad derivada del bearer token
	ctxIdentityKey ctxKey = "identity"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithIdentity inyecta la identidad autenticada en el contexto.
func WithIdentity(ctx context.Context, id *jwtx.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetIdentity obtiene la identidad del contexto.
// Retorna nil si el request llegó sin identidad (token ausente o inválido).
func GetIdentity(ctx context.Context) *jwtx.Identity {
	if v := ctx.Value(ctxIdentityKey); v != nil {
		if id, ok := v.(*jwtx.Identity); ok {
			return id
		}
	}
	return nil
}

// GetRequestID obtiene el request ID del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
