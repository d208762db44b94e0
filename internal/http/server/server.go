// Package server es el composition root del servicio: arma stores,
// services, controllers y router a partir de la configuración.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dialogmeet/authsvc/internal/auth/linker"
	"github.com/dialogmeet/authsvc/internal/auth/refresh"
	"github.com/dialogmeet/authsvc/internal/cache"
	cachememory "github.com/dialogmeet/authsvc/internal/cache/memory"
	cacheredis "github.com/dialogmeet/authsvc/internal/cache/redis"
	"github.com/dialogmeet/authsvc/internal/config"
	"github.com/dialogmeet/authsvc/internal/domain/repository"
	admincontroller "github.com/dialogmeet/authsvc/internal/http/controllers/admin"
	authcontroller "github.com/dialogmeet/authsvc/internal/http/controllers/auth"
	socialcontroller "github.com/dialogmeet/authsvc/internal/http/controllers/social"
	httperrors "github.com/dialogmeet/authsvc/internal/http/errors"
	"github.com/dialogmeet/authsvc/internal/http/helpers"
	"github.com/dialogmeet/authsvc/internal/http/router"
	socialsvc "github.com/dialogmeet/authsvc/internal/http/services/social"
	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
	"github.com/dialogmeet/authsvc/internal/metrics"
	"github.com/dialogmeet/authsvc/internal/oauth/google"
	"github.com/dialogmeet/authsvc/internal/oauth/kakao"
	"github.com/dialogmeet/authsvc/internal/rate"
	"github.com/dialogmeet/authsvc/internal/security/password"
	storememory "github.com/dialogmeet/authsvc/internal/store/memory"
	storepg "github.com/dialogmeet/authsvc/internal/store/pg"
	migrations "github.com/dialogmeet/authsvc/migrations/postgres"
)

// Server agrupa el handler HTTP y los recursos que hay que cerrar.
type Server struct {
	Handler http.Handler
	Sweeper *refresh.Sweeper

	cleanup []func()
	ping    func(context.Context) error
}

// Close libera pools y conexiones en orden inverso de creación.
func (s *Server) Close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

// Build arma el servicio completo. Falla rápido ante misconfiguración:
// secreto JWT corto, DSN inválido o Redis inalcanzable.
func Build(ctx context.Context, cfg *config.Config) (*Server, error) {
	srv := &Server{}

	codec, err := jwtx.NewCodec(cfg.JWT.SecretB64, cfg.AccessTTL())
	if err != nil {
		return nil, err
	}

	accounts, tokens, err := buildStores(ctx, cfg, srv)
	if err != nil {
		return nil, err
	}

	var redisClient *rdb.Client
	if cfg.Cache.Kind == "redis" {
		redisClient = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		srv.cleanup = append(srv.cleanup, func() { _ = redisClient.Close() })
	}

	var states cache.Cache
	if redisClient != nil {
		states = cacheredis.NewWithClient(redisClient)
	} else {
		states = cachememory.New(mustDur(cfg.Cache.Memory.DefaultTTL))
	}

	lk := linker.New(linker.Deps{Accounts: accounts, Hasher: password.NewHasher()})
	rf := refresh.New(refresh.Deps{Tokens: tokens, TTL: cfg.RefreshTTL()})
	srv.Sweeper = refresh.NewSweeper(rf, cfg.SweepInterval())

	providers := map[string]socialsvc.Provider{}
	if cfg.Social.Google.ClientID != "" {
		providers["google"] = google.New(cfg.Social.Google.ClientID,
			cfg.Social.Google.ClientSecret, cfg.Social.Google.RedirectURL, nil)
	}
	if cfg.Social.Kakao.ClientID != "" {
		providers["kakao"] = kakao.New(cfg.Social.Kakao.ClientID,
			cfg.Social.Kakao.ClientSecret, cfg.Social.Kakao.RedirectURL)
	}
	social := socialsvc.New(socialsvc.Deps{Providers: providers, Linker: lk, States: states})

	var loginLimiter, refreshLimiter rate.Limiter
	if cfg.Rate.Enabled {
		loginLimiter = buildLimiter(redisClient, "rl:login:",
			cfg.Rate.Login.Limit, mustDur(cfg.Rate.Login.Window))
		refreshLimiter = buildLimiter(redisClient, "rl:refresh:",
			cfg.Rate.Refresh.Limit, mustDur(cfg.Rate.Refresh.Window))
	}

	srv.Handler = router.New(router.Deps{
		Auth:           authcontroller.NewController(lk, rf, accounts, codec),
		Social:         socialcontroller.NewController(social, rf, codec, cfg.Server.FrontendURL, cfg.App.Env == "prod"),
		Admin:          admincontroller.NewTokensController(rf),
		Codec:          codec,
		AdminKey:       cfg.Admin.APIKey,
		LoginLimiter:   loginLimiter,
		RefreshLimiter: refreshLimiter,
		MetricsHandler: metrics.Register(nil),
		Healthz:        srv.healthz,
	})
	return srv, nil
}

func buildStores(ctx context.Context, cfg *config.Config, srv *Server) (repository.AccountRepository, repository.RefreshTokenRepository, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pgCfg := storepg.Config{
			MaxConns: int32(cfg.Storage.Postgres.MaxConns),
			MinConns: int32(cfg.Storage.Postgres.MinConns),
		}
		if s := cfg.Storage.Postgres.ConnMaxLifetime; s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				pgCfg.ConnMaxLifetime = d
			}
		}
		store, err := storepg.New(ctx, cfg.Storage.DSN, pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("server: open postgres: %w", err)
		}
		srv.cleanup = append(srv.cleanup, store.Close)
		srv.ping = store.Pool().Ping
		if _, err := store.Migrate(ctx, migrations.FS); err != nil {
			return nil, nil, fmt.Errorf("server: migrate: %w", err)
		}
		return store.Accounts(), store.Tokens(), nil
	default:
		return storememory.NewAccountStore(), storememory.NewTokenStore(), nil
	}
}

func buildLimiter(redisClient *rdb.Client, prefix string, max int, window time.Duration) rate.Limiter {
	if redisClient != nil {
		return rate.NewRedisLimiter(redisClient, prefix, max, window)
	}
	return rate.NewMemoryLimiter(max, window)
}

// healthz responde 200 si el servicio está sano; con Postgres configurado
// además verifica que el pool responda.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
			return
		}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func mustDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}
