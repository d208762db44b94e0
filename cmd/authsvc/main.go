package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dialogmeet/authsvc/internal/config"
	"github.com/dialogmeet/authsvc/internal/http/server"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

func main() {
	configPath := flag.String("config", "", "ruta al config.yaml (vacío: solo defaults + env)")
	flag.Parse()

	// .env es opcional: en producción las vars vienen del entorno.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("no se pudo leer .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("configuración inválida: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, ServiceName: "authsvc"})
	defer func() { _ = logger.Sync() }()
	l := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.Build(ctx, cfg)
	if err != nil {
		l.Fatal("wiring falló", logger.Err(err))
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("servidor escuchando", logger.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := srv.Sweeper.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Fatal("servicio terminó con error", logger.Err(err))
	}
	l.Info("servicio detenido")
}
