package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// UserAgent crea un campo para el User-Agent.
func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// AccountID crea un campo para el ID de la cuenta.
func AccountID(v string) zap.Field {
	return zap.String("account_id", v)
}

// Subject crea un campo para el subject (email) de un bearer token.
func Subject(v string) zap.Field {
	return zap.String("subject", v)
}

// Provider crea un campo para el provider social.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// TokenID crea un campo para el ID de un refresh token.
func TokenID(v string) zap.Field {
	return zap.String("token_id", v)
}

// =================================================================================
// CAMPOS DE TRAZABILIDAD
// =================================================================================

// Layer identifica la capa que emite el log (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Component identifica el componente dentro de la capa.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op identifica la operación que emite el log.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// GENÉRICOS (shortcuts de zap)
// =================================================================================

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Int64 crea un campo int64 genérico.
func Int64(key string, v int64) zap.Field {
	return zap.Int64(key, v)
}

// Duration crea un campo de duración.
func Duration(key string, v time.Duration) zap.Field {
	return zap.Duration(key, v)
}

// Any crea un campo para un valor arbitrario.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
