package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SECRET_KEYWORD is the search term that opens the chat room entry.
	SecretKeyword string `envconfig:"E2E_SECRET_KEYWORD" default:"quantum2026"`
	AuthSecret    string `envconfig:"E2E_AUTH_SECRET" default:"e2e-signing-secret"`
	// E2E_DEBUG_JSON allows dumping delivered message lists as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
