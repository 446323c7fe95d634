// Package balloting parses balloting authority flags and launches the service.
package balloting

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/civica/balloting/internal/platform/cmd"
	"github.com/civica/balloting/internal/services/balloting/cipher"
	"github.com/civica/balloting/internal/services/balloting/service"
	"github.com/civica/balloting/internal/services/balloting/storage/sqlite"
)

// Config holds balloting command configuration.
type Config struct {
	DBPath string `env:"BALLOTING_DB_PATH" envDefault:"balloting.db"`
	// AuditLimit caps how many recent audit events the startup report reads.
	AuditLimit int `env:"BALLOTING_AUDIT_LIMIT" envDefault:"20"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the balloting SQLite database")
	fs.IntVar(&cfg.AuditLimit, "audit-limit", cfg.AuditLimit, "Recent audit events reported at startup")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store, wires the balloting authority, and waits for shutdown.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBalloting, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}()

		ciph, err := cipher.New(store)
		if err != nil {
			return fmt.Errorf("build cipher: %w", err)
		}
		svc, err := service.New(service.Stores{
			Voters:     store,
			Ballots:    store,
			Candidates: store,
			Tally:      store,
			Audit:      store,
		}, ciph)
		if err != nil {
			return fmt.Errorf("build service: %w", err)
		}

		candidates, err := svc.AllCandidates(ctx)
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		events, err := svc.AuditTrail(ctx, cfg.AuditLimit)
		if err != nil {
			return fmt.Errorf("read audit trail: %w", err)
		}
		log.Printf("balloting authority ready db=%s candidates=%d recent_audit_events=%d",
			cfg.DBPath, len(candidates), len(events))

		<-ctx.Done()
		log.Printf("balloting authority shutting down")
		return nil
	})
}
