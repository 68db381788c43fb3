// Package factory constructs the configured durable-store adapter.
package factory

import (
	"context"
	"fmt"

	"github.com/stridewell/coachcore/internal/config"
	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/store/httpport"
	redisstore "github.com/stridewell/coachcore/internal/store/redis"
	sqlitestore "github.com/stridewell/coachcore/internal/store/sqlite"
)

// Pinger is implemented by port adapters that can probe their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPort builds the persistence port selected by cfg.StoreDriver.
// The returned close func releases the adapter's resources.
func NewPort(cfg *config.Config) (memory.Port, func() error, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		st, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, st.Close, nil
	case "redis":
		st := redisstore.Open(cfg.RedisAddr, cfg.RedisDB)
		return st, st.Close, nil
	case "http":
		st := httpport.New(cfg.StoreURL, cfg.StoreAPIKey)
		return st, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}
