// Package logger centraliza el logging estructurado del servicio sobre zap.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: "prod", Level: "info"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login successful", logger.AccountID(id))
//
// El middleware de logging inyecta un logger scoped (request_id, method,
// path) en el contexto; From(ctx) lo recupera en cualquier capa.
package logger
