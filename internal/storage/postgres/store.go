package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"txflow/internal/model"
)

// Store provides Postgres persistence for decoded flows.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertFlows inserts or updates decoded flows keyed by transaction hash.
// The flow itself is stored as JSONB so operation shapes stay queryable
// without per-type tables.
func (s *Store) UpsertFlows(ctx context.Context, flows []model.TransactionFlow) error {
	if len(flows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, flow := range flows {
		payload, err := json.Marshal(flow.Flow)
		if err != nil {
			return fmt.Errorf("marshal flow %s: %w", flow.TxHash, err)
		}
		batch.Queue(`
			INSERT INTO decoded_flows (tx_hash, item_count, flow, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			ON CONFLICT (tx_hash)
			DO UPDATE SET
				item_count = EXCLUDED.item_count,
				flow = EXCLUDED.flow,
				updated_at = now()
		`,
			flow.TxHash,
			len(flow.Flow),
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range flows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertDecodeErrors appends decode diagnostics.
func (s *Store) InsertDecodeErrors(ctx context.Context, errs []model.DecodeError) error {
	if len(errs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range errs {
		batch.Queue(`
			INSERT INTO decode_errors (tx_hash, log_index, address, topic0, error, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`,
			e.TxHash,
			e.LogIndex,
			e.Address,
			e.Topic0,
			e.Error,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range errs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
