package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points the scenarios at a running instance,
	// e.g. "localhost:8080". Scenarios are skipped when unset.
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	JWTSecret  string `envconfig:"E2E_JWT_SECRET" default:"e2e-secret"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
