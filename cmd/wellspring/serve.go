// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/kadirpekel/wellspring/pkg/auth"
	"github.com/kadirpekel/wellspring/pkg/config"
	"github.com/kadirpekel/wellspring/pkg/governance"
	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/ratelimit"
	"github.com/kadirpekel/wellspring/pkg/llms"
	"github.com/kadirpekel/wellspring/pkg/observability"
	"github.com/kadirpekel/wellspring/pkg/server"
)

// ServeCmd starts the governance service.
type ServeCmd struct {
	Port int `help:"Override the API listener port." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	metrics, err := observability.InitMetrics(ctx, observability.MetricsConfig{
		Enabled: cfg.Server.MetricsPort > 0,
		Port:    cfg.Server.MetricsPort,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	observability.SetGlobalMetrics(metrics)

	var db *sql.DB
	if cfg.Governance.RateLimit.Backend == "sql" {
		db, err = cfg.Database.Open()
		if err != nil {
			return err
		}
		defer db.Close()
	}

	gate, err := buildGate(cfg, db)
	if err != nil {
		return err
	}

	limiter, err := buildLimiter(cfg, db)
	if err != nil {
		return err
	}

	provider, err := llms.NewProvider(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create llm provider: %w", err)
	}

	orchestrator, err := governance.NewOrchestrator(&cfg.Governance, gate, limiter, provider, metrics)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	var validator *auth.JWTValidator
	if cfg.Auth.IsEnabled() {
		validator, err = auth.NewJWTValidator(cfg.Auth.JWKSURL, cfg.Auth.Issuer, cfg.Auth.Audience)
		if err != nil {
			return fmt.Errorf("failed to create jwt validator: %w", err)
		}
		slog.Info("authentication enabled", "issuer", cfg.Auth.Issuer)
	} else {
		slog.Warn("authentication disabled, caller identity is taken from request bodies")
	}

	srv, err := server.New(&cfg.Server, orchestrator, validator)
	if err != nil {
		return err
	}

	slog.Info("starting wellspring",
		"provider", provider.Name(),
		"model", provider.Model(),
		"rate_limit_backend", cfg.Governance.RateLimit.Backend)

	return srv.Run(ctx)
}

// loadConfig reads the config file, or falls back to defaults when no
// path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		slog.Info("no config file given, using defaults")
		return config.Default(), nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Info("loaded configuration", "path", path)
	return cfg, nil
}

// buildGate wires the feature gate against SQL stores when a database
// is open, memory stores otherwise.
func buildGate(cfg *config.Config, db *sql.DB) (*featuregate.Gate, error) {
	var flags featuregate.FlagStore
	var roles featuregate.RoleStore

	if db != nil {
		store, err := featuregate.NewSQLStore(db, cfg.Database.Driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create feature store: %w", err)
		}
		flags, roles = store, store
	} else {
		flags = featuregate.NewMemoryFlagStore()
		roles = featuregate.NewMemoryRoleStore()
	}

	return featuregate.NewGate(flags, roles)
}

func buildLimiter(cfg *config.Config, db *sql.DB) (*ratelimit.Limiter, error) {
	var store ratelimit.Store

	if db != nil {
		sqlStore, err := ratelimit.NewSQLStore(db, cfg.Database.Driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create counter store: %w", err)
		}
		store = sqlStore
	} else {
		store = ratelimit.NewMemoryStore()
	}

	return ratelimit.NewLimiter(&cfg.Governance.RateLimit, store)
}
