// Package store persists the ledger, either in a JSONL file or in a
// Postgres table.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/internal/config"
)

// Store loads and appends ledger records.
type Store interface {
	// Load returns the whole ledger.
	Load(ctx context.Context) (*finance.Ledger, error)
	// Append validates records against the ledger and appends them, all or
	// nothing.
	Append(ctx context.Context, records ...finance.Record) error
	Close() error
}

// Open returns a Postgres store for postgres:// DSNs, a file store otherwise.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		pg, err := NewPostgres(ctx, cfg.DSN, cfg.Currency)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("no ledger configured")
	}
	return &File{Path: cfg.DSN, Currency: cfg.Currency}, nil
}

// validate checks records in order against ledger, appending the valid ones
// to it.
func validate(ledger *finance.Ledger, records []finance.Record) error {
	for _, rec := range records {
		if err := ledger.ValidateRecord(rec); err != nil {
			return err
		}
		ledger.Append(rec)
	}
	return nil
}
