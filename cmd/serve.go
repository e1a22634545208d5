package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/breardon2011/mitigationDB/internal/api"
	"github.com/breardon2011/mitigationDB/internal/audit"
	"github.com/breardon2011/mitigationDB/internal/config"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/engine"
	"github.com/breardon2011/mitigationDB/internal/logging"
	"github.com/breardon2011/mitigationDB/internal/seed"
	"github.com/breardon2011/mitigationDB/internal/service"
	"github.com/breardon2011/mitigationDB/internal/source"
	"github.com/breardon2011/mitigationDB/internal/store"
	"github.com/breardon2011/mitigationDB/internal/tasks"
)

const AdminSigningKeyKey = "admin.signing_key"

// maintenance task intervals
const (
	ruleRefreshInterval  = time.Minute
	retiredSweepInterval = time.Hour
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mitigationDB server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := f.LoadServiceConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log.Info().Msg("Initializing rule store...")
		ruleStore, err := newStoreFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("building rule store: %w", err)
		}
		defer func() {
			_ = ruleStore.Close()
		}()

		if len(cfg.Rules) > 0 {
			result, err := seed.Apply(cmd.Context(), ruleStore, cfg.Rules)
			if err != nil {
				return fmt.Errorf("seeding rules: %w", err)
			}
			log.Info().
				Int("created", result.Created).
				Int("updated", result.Updated).
				Msg("Seeded rules from config")
		}

		active, err := ruleStore.ListActive(cmd.Context(), time.Now())
		if err != nil {
			return fmt.Errorf("listing active rules: %w", err)
		}
		manager := engine.NewManager(active)
		log.Info().Int("active_rules", len(active)).Msg("Rule snapshot loaded")

		auditor, err := newAuditorFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			_ = auditor.Close()
		}()

		taskManager := tasks.NewManager()
		defer taskManager.Stop()

		svc := service.NewEvalService(ruleStore, manager, auditor)
		taskManager.Register(api.RuleRefreshTaskName, ruleRefreshInterval, svc.RefreshTask())
		taskManager.Register(api.RetiredSweepTaskName, retiredSweepInterval, svc.RetiredSweepTask())

		if cfg.RuleSource != nil {
			fetcher, err := newFetcherFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("building rule fetcher: %w", err)
			}
			taskManager.Register(api.RuleSyncTaskName, cfg.RuleSource.Sync.Interval,
				syncTask(fetcher, ruleStore, manager))
			log.Info().
				Dur("interval", cfg.RuleSource.Sync.Interval).
				Msg("Registered rule sync task")
		}

		signingKey, err := adminSigningKey()
		if err != nil {
			return err
		}

		srv := api.NewServer(cfg, ruleStore, manager, taskManager, auditor)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(signingKey),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().String("admin-key", "", "HMAC signing key for admin tokens")
	_ = viper.BindPFlag(AdminSigningKeyKey, serveCmd.Flags().Lookup("admin-key"))

	f.bindConfigFlag(serveCmd.Flags())
}

func newStoreFromConfig(cfg *config.Config) (core.RuleStore, error) {
	switch cfg.Store.Type {
	case "", "memory":
		return store.NewInMemoryRuleStore(), nil
	case "sqlite":
		opts, err := cfg.Store.SQLiteOptions()
		if err != nil {
			return nil, err
		}
		s, err := store.NewSQLiteRuleStore(store.SQLiteOptions{
			Path:        opts.Path,
			BusyTimeout: opts.BusyTimeout,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func newAuditorFromConfig(cfg *config.Config) (core.Auditor, error) {
	if !cfg.Audit.Enabled {
		return audit.NewNoopAuditor(), nil
	}
	switch cfg.Audit.Type {
	case "", "memory":
		return audit.NewInMemoryAuditor(), nil
	case "file":
		a, err := audit.NewFileAuditor(cfg.Audit.Path)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Audit.Type)
	}
}

func newFetcherFromConfig(cfg *config.Config) (source.Fetcher, error) {
	switch {
	case cfg.RuleSource.File != nil:
		fetcher, err := source.NewFileFetcher(*cfg.RuleSource.File)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case cfg.RuleSource.GitHub != nil:
		fetcher, err := source.NewGitHubFetcher(*cfg.RuleSource.GitHub)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("no valid rule source configured")
	}
}

// syncTask pulls rules from the external source, upserts them by name and
// swaps the active snapshot.
func syncTask(fetcher source.Fetcher, ruleStore core.RuleStore, manager *engine.Manager) tasks.TaskFunc {
	return func(ctx context.Context, logger logging.InternalLogger) error {
		rules, err := fetcher.Fetch(ctx, logger)
		if err != nil {
			return fmt.Errorf("fetching rules: %w", err)
		}

		var created, updated int
		for _, rule := range rules {
			wasCreated, err := ruleStore.UpsertByName(ctx, rule)
			if err != nil {
				return fmt.Errorf("upserting rule %q: %w", rule.Name, err)
			}
			if wasCreated {
				created++
			} else {
				updated++
			}
		}
		logger.Info("Synced %d rules (%d created, %d updated)", len(rules), created, updated)

		active, err := ruleStore.ListActive(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("listing active rules: %w", err)
		}
		manager.Update(active)
		logger.Info("Snapshot refreshed with %d active rules", len(active))
		return nil
	}
}

func adminSigningKey() ([]byte, error) {
	if key := viper.GetString(AdminSigningKeyKey); key != "" {
		return []byte(key), nil
	}

	// without a configured key, admin endpoints stay unreachable but the
	// middleware still needs something to verify against
	log.Warn().Msg("No admin signing key configured, admin endpoints will reject all tokens")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	return key, nil
}
