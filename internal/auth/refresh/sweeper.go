package refresh

import (
	"context"
	"time"

	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

// Sweeper corre SweepExpired en un intervalo fijo hasta que el contexto
// se cancele. Pensado para correr en una goroutine del errgroup del main.
type Sweeper struct {
	svc      Service
	interval time.Duration
}

// NewSweeper crea un sweeper. interval <= 0 usa una hora.
func NewSweeper(svc Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run bloquea hasta que ctx se cancele. Un barrido fallido se loguea y no
// detiene el loop; el siguiente tick reintenta.
func (s *Sweeper) Run(ctx context.Context) error {
	log := logger.Named("refresh.sweeper")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info("sweeper iniciado", logger.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper detenido")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.svc.SweepExpired(ctx, time.Now()); err != nil {
				log.Warn("barrido falló", logger.Err(err))
			}
		}
	}
}
