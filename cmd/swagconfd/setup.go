package main

import (
	"fmt"
	"log/slog"

	"github.com/oakridge-labs/swagconfd/internal/config"
	"github.com/oakridge-labs/swagconfd/internal/orchestrator"
	"github.com/oakridge-labs/swagconfd/pkg/logger"
)

// bootstrap loads the environment configuration and builds an orchestrator,
// the sequence every subcommand needs before it can do anything.
func bootstrap() (*orchestrator.Orchestrator, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Filename:    cfg.Log.Filename,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
	})

	orch, err := orchestrator.New(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("build orchestrator: %w", err)
	}
	return orch, log, nil
}
