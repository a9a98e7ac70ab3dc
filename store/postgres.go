package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/finance"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
	seq     bigserial PRIMARY KEY,
	command text      NOT NULL,
	date    date      NOT NULL,
	body    jsonb     NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_date_idx ON ledger (date);
`

// Postgres stores the ledger in the table ledger, one row per record in
// insertion order.
type Postgres struct {
	pool     *pgxpool.Pool
	currency string
}

// NewPostgres connects to the database at dsn.
func NewPostgres(ctx context.Context, dsn, currency string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}
	return &Postgres{pool: pool, currency: currency}, nil
}

// Migrate creates the ledger table when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("could not migrate ledger table: %w", err)
	}
	return nil
}

// querier is implemented by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (p *Postgres) load(ctx context.Context, q querier) (*finance.Ledger, error) {
	rows, err := q.Query(ctx, `SELECT seq, body::text FROM ledger ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("could not read ledger: %w", err)
	}
	defer rows.Close()

	ledger := finance.NewLedger(p.currency)
	for rows.Next() {
		var seq int64
		var body string
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, err
		}
		rec, err := finance.DecodeRecord([]byte(body), p.currency)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", seq, err)
		}
		ledger.Append(rec)
	}
	return ledger, rows.Err()
}

func (p *Postgres) Load(ctx context.Context) (*finance.Ledger, error) {
	return p.load(ctx, p.pool)
}

func (p *Postgres) Append(ctx context.Context, records ...finance.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// serializes appends so that validation sees every committed record
	if _, err := tx.Exec(ctx, `LOCK TABLE ledger IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return err
	}
	ledger, err := p.load(ctx, tx)
	if err != nil {
		return err
	}
	if err := validate(ledger, records); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("could not encode %s record: %w", rec.What(), err)
		}
		batch.Queue(`INSERT INTO ledger (command, date, body) VALUES ($1, $2, $3::jsonb)`,
			string(rec.What()), rec.When().Time(), string(body))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("could not append to ledger: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
