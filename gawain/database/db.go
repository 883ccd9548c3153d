package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	querylog "github.com/sergawain/gawain/internal/domain/logger"
	"github.com/sergawain/gawain/internal/gateways/database/repositories"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	schemaVersion        = 1 // bump when schema/migrations change
)

// appTables are the tables owned by the bot, in truncation order.
var appTables = []string{
	"crafting_requests",
	"skill_records",
	"accounts",
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	SSLMode      string `toml:"ssl_mode"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

func (c DBConfig) sslMode() string {
	if c.SSLMode != "" {
		return c.SSLMode
	}
	if mode := os.Getenv("PG_SSLMODE"); mode != "" {
		return mode
	}
	return "disable"
}

func (c DBConfig) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s&connect_timeout=5",
		c.User, c.Password,
		net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		c.Database, c.sslMode(),
	)
}

// DB holds both the pgx pool used for raw statements and the bun handle the
// repositories run on. Each bun transaction checks a connection out of its
// own pool for the duration of one operation.
type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	if err := waitReachable(cfg); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(cfg)}, nil
}

// waitReachable dials the server a few times so a database that is still
// starting up does not abort the bot.
func waitReachable(cfg DBConfig) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dial := func() (net.Conn, error) {
		switch {
		case os.Getenv("DB_DIAL_FORCE_IPV4") == "1":
			return net.DialTimeout("tcp4", addr, defaultConnTimeout)
		case os.Getenv("DB_DIAL_FORCE_IPV6") == "1":
			return net.DialTimeout("tcp6", addr, defaultConnTimeout)
		}
		if c, err := net.DialTimeout("tcp4", addr, defaultConnTimeout); err == nil {
			return c, nil
		}
		return net.DialTimeout("tcp6", addr, defaultConnTimeout)
	}

	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		var conn net.Conn
		if conn, err = dial(); err == nil {
			return conn.Close()
		}
		slog.Warn("Database not reachable yet",
			slog.String("type", "db"),
			slog.String("addr", addr),
			slog.Int("attempt", i+1),
			slog.Any("error", err),
		)
		time.Sleep(defaultRetryInterval)
	}
	return fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
}

func newBunDB(cfg DBConfig) *bun.DB {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.dsn()))
	sqldb := sql.OpenDB(connector)
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)
	}
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

// ExecWithLog runs a raw statement on the pool and reports it through the
// query logger.
func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ql := querylog.NewQueryLogger("exec", sql, args...)
	result, err := db.pool.Exec(ctx, sql, args...)
	ql.Log(err, result.RowsAffected())
	return result, err
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates the crafting tables, applies the PostgreSQL-only
// constraints and records the schema version.
func (db *DB) InitializeSchema(ctx context.Context) error {
	if os.Getenv("DB_FAST_INIT") == "1" {
		if err := db.ensureAppMeta(ctx); err == nil {
			if v, _ := db.getAppMeta(ctx, "schema_version"); v == strconv.Itoa(schemaVersion) {
				slog.Info("Fast DB init: schema up-to-date, skipping initialization",
					slog.String("type", "db"),
					slog.Int("schema_version", schemaVersion))
				return nil
			}
		}
	}

	if err := db.ensureUTF8Encoding(ctx); err != nil {
		return fmt.Errorf("failed to ensure UTF-8 encoding: %w", err)
	}

	if err := repositories.CreateSchema(ctx, db.bunDB); err != nil {
		return err
	}

	if err := db.MigrateSchema(ctx); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := db.ensureAppMeta(ctx); err != nil {
		return fmt.Errorf("failed to create app_meta: %w", err)
	}
	return db.setAppMeta(ctx, "schema_version", strconv.Itoa(schemaVersion))
}

func (db *DB) ensureAppMeta(ctx context.Context) error {
	_, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS app_meta (key TEXT PRIMARY KEY, value TEXT)`)
	return err
}

func (db *DB) getAppMeta(ctx context.Context, key string) (string, error) {
	var v string
	if err := db.pool.QueryRow(ctx, `SELECT value FROM app_meta WHERE key = $1`, key).Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

func (db *DB) setAppMeta(ctx context.Context, key, value string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO app_meta(key, value) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

type checkConstraint struct {
	table string
	name  string
	expr  string
}

// checkConstraints back the range rules enforced by the engine so that rows
// written outside the bot cannot break them either.
var checkConstraints = []checkConstraint{
	{"crafting_requests", "crafting_requests_amount_positive", "amount >= 1"},
	{"crafting_requests", "crafting_requests_level_range", "level_required IS NULL OR (level_required BETWEEN 0 AND 250)"},
	{"crafting_requests", "crafting_requests_status_known", "status IN ('PENDING', 'ACCEPTED', 'COMPLETED', 'CANCELLED')"},
	{"crafting_requests", "crafting_requests_accepted_has_acceptor", "status NOT IN ('ACCEPTED', 'COMPLETED') OR accepted_by IS NOT NULL"},
	{"skill_records", "skill_records_level_range", "level BETWEEN 0 AND 250"},
	{"accounts", "accounts_completed_non_negative", "completed_count >= 0"},
}

// MigrateSchema applies constraints that bun's CREATE TABLE cannot express.
func (db *DB) MigrateSchema(ctx context.Context) error {
	for _, c := range checkConstraints {
		stmt := fmt.Sprintf(`
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint WHERE conname = '%s'
				) THEN
					ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
				END IF;
			END $$;`, c.name, c.table, c.name, c.expr)

		if _, err := db.ExecWithLog(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
	}
	return nil
}

// ResetAppTables truncates the bot's tables and restarts their sequences.
func (db *DB) ResetAppTables(ctx context.Context) error {
	quoted := make([]string, len(appTables))
	for i, t := range appTables {
		quoted[i] = pgx.Identifier{t}.Sanitize()
	}
	stmt := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE;"
	if _, err := db.ExecWithLog(ctx, stmt); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	slog.Info("App tables truncated", slog.String("type", "db"), slog.Any("tables", appTables))
	return nil
}

// ResetSequence moves the id sequence of table past its highest id so that
// rows inserted after an import with explicit ids do not collide.
func (db *DB) ResetSequence(ctx context.Context, table string) (int64, error) {
	ident := pgx.Identifier{table}.Sanitize()
	stmt := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
		ident,
	)
	var next int64
	if err := db.pool.QueryRow(ctx, stmt, table).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to reset sequence for %s: %w", table, err)
	}
	slog.Info("Sequence reset",
		slog.String("type", "db"),
		slog.String("table", table),
		slog.Int64("next_id", next),
	)
	return next, nil
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

func (db *DB) ensureUTF8Encoding(ctx context.Context) error {
	var encoding string
	if err := db.pool.QueryRow(ctx, "SHOW server_encoding;").Scan(&encoding); err != nil {
		return fmt.Errorf("failed to check database encoding: %w", err)
	}

	// changing the server encoding needs a superuser, so only warn
	if encoding != "UTF8" {
		slog.Warn("Database is not using UTF-8 encoding, item names may be mangled",
			slog.String("type", "db"),
			slog.String("current_encoding", encoding),
		)
	}

	if _, err := db.pool.Exec(ctx, "SET client_encoding TO 'UTF8';"); err != nil {
		return fmt.Errorf("failed to set client encoding to UTF-8: %w", err)
	}
	return nil
}
