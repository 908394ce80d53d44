package main

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/config"
)

func TestStoreCommands_RequirePostgres(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverMemory

	commands := map[string]func() error{
		"purge-sessions": func() error { return purgeSessions(context.Background(), cfg, zap.NewNop()) },
		"migrate":        func() error { return migrateUp(cfg, zap.NewNop()) },
	}

	for name, run := range commands {
		t.Run(name, func(t *testing.T) {
			err := run()
			if err == nil {
				t.Fatal("expected an error for the memory driver")
			}
			if !strings.Contains(err.Error(), "STORE_DRIVER="+config.DriverPostgres) {
				t.Errorf("error = %v, want it to name the required driver", err)
			}
		})
	}
}
