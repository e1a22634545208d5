package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/breardon2011/mitigationDB/internal/audit"
	"github.com/breardon2011/mitigationDB/internal/cliconfig"
	"github.com/breardon2011/mitigationDB/internal/config"
	"github.com/breardon2011/mitigationDB/internal/engine"
	"github.com/breardon2011/mitigationDB/internal/seed"
	"github.com/breardon2011/mitigationDB/internal/service"
	"github.com/breardon2011/mitigationDB/internal/store"
	"github.com/breardon2011/mitigationDB/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the mitigationDB server to connect to.
	RemoteAddr string

	// Command-specific flags
	ConfigPath string // service configuration => store, audit, rule source and seed rules
}

var f = NewFactory()

func NewFactory() *Factory {
	return &Factory{}
}

// GetClient returns an authenticated HTTP client for remote operations.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(ServerAddrKey) // prio 2: config/env
	}
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set MITIGATIONDB_ADDR)")
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		}
	}

	if envToken := os.Getenv("MITIGATIONDB_TOKEN"); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

func (f *Factory) LoadServiceConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		return nil, fmt.Errorf("config file not specified (use --config)")
	}
	return config.Load(f.ConfigPath)
}

// GetLocalService builds an evaluation service from the configured rule file
// without a running server. Rules are seeded into an in-memory store and
// nothing is audited.
func (f *Factory) GetLocalService(ctx context.Context) (*service.EvalService, error) {
	cfg, err := f.LoadServiceConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	ruleStore := store.NewInMemoryRuleStore()
	if _, err := seed.Apply(ctx, ruleStore, cfg.Rules); err != nil {
		return nil, fmt.Errorf("seeding rules: %w", err)
	}

	active, err := ruleStore.ListActive(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("listing active rules: %w", err)
	}

	return service.NewEvalService(
		ruleStore,
		engine.NewManager(active),
		audit.NewNoopAuditor(), // for local CLI operations, we don't do auditing
	), nil
}

func (f *Factory) bindConfigFlag(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "f", "", "The mitigationDB service config file to use")
}
