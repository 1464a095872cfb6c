package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"
)

type Config struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" required:"true"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true" json:"-"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

func (c *Config) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// NewPostgresDB opens a bounded connection pool and applies migrations.
// The pool is the single shared database resource; repositories borrow
// connections from it per operation. Acquire blocks when all MaxConns
// connections are busy until one frees or the caller context is done.
func NewPostgresDB(ctx context.Context, cfg *Config, migrationFiles embed.FS) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := migrate(cfg, migrationFiles); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// migrate runs goose over the pgx stdlib adapter on a short-lived
// connection outside the pool.
func migrate(cfg *Config, migrationFiles embed.FS) error {
	sqlDB, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer sqlDB.Close() //nolint:errcheck

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose.SetDialect: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("goose.Up: %w", err)
	}
	return nil
}
