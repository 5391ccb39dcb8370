package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"vecteditor/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds what every postgres repository needs
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names
type TableNames struct {
	Documents string
	Moves     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Moves:     fmt.Sprintf("%sdocument_moves", prefix),
	}
}

// CreateConnectionPool opens a pgx pool and pings it.
//
// PgBouncer in transaction pooling mode (port 6543) cannot hold prepared
// statements, so that port switches to QueryExecModeCacheDescribe unless the
// connection string already picked a mode with default_query_exec_mode.
// Table prefixes are interpolated before the statement reaches the server,
// so each environment caches its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or the pool
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// EnsureSchema creates the snapshot and move-log tables when missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			document_id TEXT PRIMARY KEY,
			data        BYTEA NOT NULL,
			revision    BIGINT NOT NULL DEFAULT 0,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS %[2]s (
			id             UUID PRIMARY KEY,
			document_id    TEXT NOT NULL REFERENCES %[1]s(document_id) ON DELETE CASCADE,
			object_id      TEXT NOT NULL,
			from_container TEXT NOT NULL,
			from_index     INTEGER NOT NULL,
			to_container   TEXT NOT NULL,
			to_index       INTEGER NOT NULL,
			peer_id        TEXT NOT NULL DEFAULT '',
			revision       BIGINT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS %[3]s_document_idx ON %[2]s (document_id, created_at DESC);
	`, tables.Documents, tables.Moves, tables.Moves)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
