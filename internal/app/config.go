package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dosetrack/dosetrack-backend/internal/platform/envutil"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Grace period after a scheduled dose during which an intake still
	// counts as on time.
	IntakeTolerance time.Duration

	CORSOrigins []string
}

// fileConfig mirrors Config for the optional YAML file. Set fields
// override the environment.
type fileConfig struct {
	Port                   string   `yaml:"port"`
	Environment            string   `yaml:"environment"`
	JWTSecretKey           string   `yaml:"jwt_secret_key"`
	AccessTokenTTLSeconds  int      `yaml:"access_token_ttl_seconds"`
	RefreshTokenTTLSeconds int      `yaml:"refresh_token_ttl_seconds"`
	ToleranceMinutes       int      `yaml:"intake_tolerance_minutes"`
	CORSOrigins            []string `yaml:"cors_origins"`
}

// LoadConfig resolves configuration in three layers: built-in defaults,
// then the optional YAML file at CONFIG_PATH, then the environment.
// The environment wins.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            "8080",
		ServiceName:     "dosetrack",
		Environment:     "development",
		Version:         "dev",
		JWTSecretKey:    "defaultsecret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		IntakeTolerance: 30 * time.Minute,
	}

	if path := envutil.String("CONFIG_PATH", ""); path != "" {
		if err := applyConfigFile(&cfg, path); err != nil {
			log.Warn("config file ignored", "path", path, "error", err)
		} else {
			log.Info("config file applied", "path", path)
		}
	}

	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)
	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.AccessTokenTTL = time.Duration(envutil.Int("ACCESS_TOKEN_TTL", int(cfg.AccessTokenTTL/time.Second))) * time.Second
	cfg.RefreshTokenTTL = time.Duration(envutil.Int("REFRESH_TOKEN_TTL", int(cfg.RefreshTokenTTL/time.Second))) * time.Second
	cfg.IntakeTolerance = time.Duration(envutil.Int("INTAKE_TOLERANCE_MINUTES", int(cfg.IntakeTolerance/time.Minute))) * time.Minute
	if origins := envutil.String("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using default secret")
	}
	return cfg
}

func applyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if fc.JWTSecretKey != "" {
		cfg.JWTSecretKey = fc.JWTSecretKey
	}
	if fc.AccessTokenTTLSeconds > 0 {
		cfg.AccessTokenTTL = time.Duration(fc.AccessTokenTTLSeconds) * time.Second
	}
	if fc.RefreshTokenTTLSeconds > 0 {
		cfg.RefreshTokenTTL = time.Duration(fc.RefreshTokenTTLSeconds) * time.Second
	}
	if fc.ToleranceMinutes > 0 {
		cfg.IntakeTolerance = time.Duration(fc.ToleranceMinutes) * time.Minute
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	return nil
}
