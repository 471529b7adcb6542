package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Database    string `mapstructure:"database"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	SSLMode     string `mapstructure:"sslmode"`
	MaxPoolSize int    `mapstructure:"max_pool_size"`
}

// DSN builds the connection string, filling defaults for unset fields.
func (c PostgresConfig) DSN() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslMode)
}

// OpenPostgres connects a pool, applies the schema and exposes the tables.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger logging.Logger) (Backend, error) {
	logger = logging.OrDefault(logger)
	if cfg.Host == "" || cfg.Database == "" {
		return nil, errors.New("postgres host and database are required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if cfg.MaxPoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		logging.F("host", cfg.Host),
		logging.F("database", cfg.Database))

	b := newSQLBackend(stdlib.OpenDBFromPool(pool), postgresDialect)
	b.closers = append(b.closers, pool.Close)
	return b, nil
}
