// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno. El secreto JWT solo entra por env.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr        string `yaml:"addr"`
		FrontendURL string `yaml:"frontend_url"` // destino del redirect post-login social
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		// SecretB64 solo por env (JWT_SECRET_B64); nunca en YAML.
		SecretB64  string `yaml:"-"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Social struct {
		Google struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"-"` // GOOGLE_CLIENT_SECRET
			RedirectURL  string `yaml:"redirect_url"`
		} `yaml:"google"`
		Kakao struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"-"` // KAKAO_CLIENT_SECRET
			RedirectURL  string `yaml:"redirect_url"`
		} `yaml:"kakao"`
	} `yaml:"social"`

	Admin struct {
		// APIKey solo por env (ADMIN_API_KEY). Vacía deshabilita /v1/admin.
		APIKey string `yaml:"-"`
	} `yaml:"admin"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Refresh struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"refresh"`
	} `yaml:"rate"`

	Sweeper struct {
		Interval string `yaml:"interval"`
	} `yaml:"sweeper"`
}

// Load lee el YAML (path vacío usa solo defaults + env), aplica defaults,
// pisa con env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "10m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "1h"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7d
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Refresh.Limit == 0 {
		c.Rate.Refresh.Limit = 30
	}
	if c.Rate.Refresh.Window == "" {
		c.Rate.Refresh.Window = "1m"
	}
	if c.Sweeper.Interval == "" {
		c.Sweeper.Interval = "1h"
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyEnvOverrides pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.Server.FrontendURL = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// Secretos: solo por env.
	if v, ok := getEnvStr("JWT_SECRET_B64"); ok {
		c.JWT.SecretB64 = v
	}
	if v, ok := getEnvStr("ADMIN_API_KEY"); ok {
		c.Admin.APIKey = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.Social.Google.ClientID = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.Social.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("KAKAO_CLIENT_ID"); ok {
		c.Social.Kakao.ClientID = v
	}
	if v, ok := getEnvStr("KAKAO_CLIENT_SECRET"); ok {
		c.Social.Kakao.ClientSecret = v
	}

	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("SWEEPER_INTERVAL"); ok {
		c.Sweeper.Interval = v
	}
}

// Validate chequea la coherencia mínima. El largo del secreto JWT lo
// valida el codec al construirse (misconfiguración fatal en el arranque).
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: storage.driver inválido: %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn requerido con driver postgres")
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind inválido: %q", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("config: cache.redis.addr requerido con kind redis")
	}
	if c.JWT.SecretB64 == "" {
		return fmt.Errorf("config: JWT_SECRET_B64 es requerido")
	}
	for name, ttl := range map[string]string{
		"jwt.access_ttl":   c.JWT.AccessTTL,
		"jwt.refresh_ttl":  c.JWT.RefreshTTL,
		"sweeper.interval": c.Sweeper.Interval,
	} {
		if _, err := time.ParseDuration(ttl); err != nil {
			return fmt.Errorf("config: %s inválido: %q", name, ttl)
		}
	}
	return nil
}

// AccessTTL retorna el TTL parseado del access token.
func (c *Config) AccessTTL() time.Duration { return mustDur(c.JWT.AccessTTL) }

// RefreshTTL retorna el TTL parseado del refresh token.
func (c *Config) RefreshTTL() time.Duration { return mustDur(c.JWT.RefreshTTL) }

// SweepInterval retorna el intervalo parseado del sweeper.
func (c *Config) SweepInterval() time.Duration { return mustDur(c.Sweeper.Interval) }

// mustDur asume que Validate ya corrió.
func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
