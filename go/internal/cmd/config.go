package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/config"
)

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to parse log level: %w", err)
	}
	if logLevelFlag != "" {
		if level, err = zerolog.ParseLevel(logLevelFlag); err != nil {
			return config.Config{}, fmt.Errorf("failed to parse --log-level: %w", err)
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("api_url", cfg.APIURL).
		Str("ws_url", cfg.WSURL).
		Str("identity_path", cfg.IdentityPath).
		Msg("loaded config")
	return cfg, nil
}
