package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"creativesync/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements CreativeStore using pgxpool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres creative store from a connection string
func NewPostgresStore(connectionString string) (CreativeStore, error) {
	return newPostgresStore(connectionString)
}

// newPostgresStore creates the concrete implementation
func newPostgresStore(connectionString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	// Non-zero lifetimes refresh connections silently dropped by the network
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Disable statement caching to avoid "already exists" errors
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.ConnConfig.StatementCacheCapacity = 0

	config.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		return d.DialContext(ctx, "tcp", addr)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.createTablesIfNotExist(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create creatives schema: %w", err)
	}

	return store, nil
}

// createTablesIfNotExist bootstraps the creatives table and the reference
// tables it points into
func (s *PostgresStore) createTablesIfNotExist() error {
	query := `
		CREATE TABLE IF NOT EXISTS countries (
			id BIGSERIAL PRIMARY KEY,
			iso_code CHAR(2) NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS ad_sources (
			id BIGSERIAL PRIMARY KEY,
			source_name VARCHAR(100) NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS browsers (
			id BIGSERIAL PRIMARY KEY,
			browser_name VARCHAR(100) NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS ad_networks (
			id BIGSERIAL PRIMARY KEY,
			network_name VARCHAR(100) NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS creatives (
			id BIGSERIAL PRIMARY KEY,
			external_id BIGINT NOT NULL,
			source VARCHAR(50) NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			icon_url TEXT,
			main_image_url TEXT,
			landing_url TEXT NOT NULL DEFAULT '',
			cpc NUMERIC(12, 5) NOT NULL DEFAULT 0,
			platform VARCHAR(20) NOT NULL,
			format VARCHAR(20) NOT NULL,
			operation_system VARCHAR(50) NOT NULL DEFAULT 'unknown',
			is_adult BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(10) NOT NULL CHECK (status IN ('active', 'inactive')),
			combined_hash CHAR(64) NOT NULL,
			external_created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			source_id BIGINT REFERENCES ad_sources(id),
			country_id BIGINT REFERENCES countries(id),
			browser_id BIGINT REFERENCES browsers(id),
			ad_network_id BIGINT REFERENCES ad_networks(id),
			metadata JSONB,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		-- The content hash is the dedup identity of a creative
		CREATE UNIQUE INDEX IF NOT EXISTS idx_creatives_combined_hash ON creatives(combined_hash);
		CREATE INDEX IF NOT EXISTS idx_creatives_source_status ON creatives(source, status);
		CREATE INDEX IF NOT EXISTS idx_creatives_external_id ON creatives(external_id);
	`

	_, err := s.pool.Exec(context.Background(), query)
	return err
}

// ActiveHashesBySource returns combined_hash -> row id for active creatives
func (s *PostgresStore) ActiveHashesBySource(ctx context.Context, source string) (map[string]int64, error) {
	return s.hashesBySource(ctx, source, true)
}

// HashesBySource returns combined_hash -> row id for all creatives of one source
func (s *PostgresStore) HashesBySource(ctx context.Context, source string) (map[string]int64, error) {
	return s.hashesBySource(ctx, source, false)
}

func (s *PostgresStore) hashesBySource(ctx context.Context, source string, activeOnly bool) (map[string]int64, error) {
	query := `SELECT combined_hash, id FROM creatives WHERE source = $1`
	if activeOnly {
		query += ` AND status = 'active'`
	}

	rows, err := s.pool.Query(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	hashes := make(map[string]int64)
	for rows.Next() {
		var hash string
		var id int64
		if err := rows.Scan(&hash, &id); err != nil {
			return nil, fmt.Errorf("failed to scan hash row: %w", err)
		}
		hashes[hash] = id
	}

	return hashes, rows.Err()
}

// WithinTx runs fn inside one database transaction
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer pgtx.Rollback(ctx)

	if err := fn(ctx, &postgresTx{tx: pgtx}); err != nil {
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountsBySource reports total/active/inactive counts for one source
func (s *PostgresStore) CountsBySource(ctx context.Context, source string) (*models.IntegrityReport, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'inactive')
		FROM creatives
		WHERE source = $1
	`

	report := &models.IntegrityReport{}
	err := s.pool.QueryRow(ctx, query, source).Scan(
		&report.TotalCreatives,
		&report.ActiveCreatives,
		&report.InactiveCreatives,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	report.IntegrityOK = report.ActiveCreatives+report.InactiveCreatives == report.TotalCreatives
	return report, nil
}

// CleanupInactiveBefore deletes long-inactive creatives
func (s *PostgresStore) CleanupInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM creatives WHERE status = 'inactive' AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// CountryIDs loads the country reference map keyed by ISO code
func (s *PostgresStore) CountryIDs(ctx context.Context) (map[string]int64, error) {
	return s.referenceMap(ctx, `SELECT iso_code, id FROM countries`)
}

// SourceIDs loads the ad-source reference map keyed by source name
func (s *PostgresStore) SourceIDs(ctx context.Context) (map[string]int64, error) {
	return s.referenceMap(ctx, `SELECT source_name, id FROM ad_sources`)
}

// BrowserIDs loads the browser reference map keyed by browser name
func (s *PostgresStore) BrowserIDs(ctx context.Context) (map[string]int64, error) {
	return s.referenceMap(ctx, `SELECT browser_name, id FROM browsers`)
}

// AdNetworkIDs loads the ad-network reference map keyed by network name
func (s *PostgresStore) AdNetworkIDs(ctx context.Context) (map[string]int64, error) {
	return s.referenceMap(ctx, `SELECT network_name, id FROM ad_networks`)
}

func (s *PostgresStore) referenceMap(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("failed to scan reference row: %w", err)
		}
		result[key] = id
	}

	return result, rows.Err()
}

// Ping checks if the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// postgresTx implements Tx over one pgx transaction
type postgresTx struct {
	tx pgx.Tx
}

const insertCreativeQuery = `
	INSERT INTO creatives
		(external_id, source, title, description, icon_url, main_image_url,
		 landing_url, cpc, platform, format, operation_system, is_adult,
		 status, combined_hash, external_created_at, source_id, country_id,
		 browser_id, ad_network_id, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	ON CONFLICT (combined_hash) DO NOTHING
	RETURNING id
`

// InsertCreatives bulk-inserts rows and returns the new row ids. Rows whose
// hash already exists are skipped by the conflict clause.
func (t *postgresTx) InsertCreatives(ctx context.Context, rows []models.StorageRow) ([]int64, error) {
	ids := make([]int64, 0, len(rows))

	for _, row := range rows {
		var metadata interface{}
		if len(row.Metadata) > 0 {
			jsonBytes, err := json.Marshal(row.Metadata)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal row metadata: %w", err)
			}
			metadata = string(jsonBytes)
		}

		var id int64
		err := t.tx.QueryRow(ctx, insertCreativeQuery,
			row.ExternalID,
			row.Source,
			row.Title,
			row.Description,
			row.IconURL,
			row.MainImageURL,
			row.LandingURL,
			row.CPC,
			string(row.Platform),
			string(row.Format),
			row.OperationSystem,
			row.IsAdult,
			string(row.Status),
			row.CombinedHash,
			row.ExternalCreatedAt,
			row.SourceID,
			row.CountryID,
			row.BrowserID,
			row.AdNetworkID,
			metadata,
		).Scan(&id)

		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict with an existing hash, nothing inserted
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert creative %d: %w", row.ExternalID, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// DeactivateByHashes flips the given creatives of one source to inactive
func (t *postgresTx) DeactivateByHashes(ctx context.Context, source string, hashes []string) ([]int64, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	rows, err := t.tx.Query(ctx, `
		UPDATE creatives
		SET status = 'inactive', updated_at = NOW()
		WHERE source = $1 AND combined_hash = ANY($2) AND status = 'active'
		RETURNING id
	`, source, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate creatives: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan deactivated id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
