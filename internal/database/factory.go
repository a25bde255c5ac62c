package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
)

const connectTimeout = 10 * time.Second

// NewDatabaseFromConfig opens the docbase described by cfg. Server databases
// are pinged before returning so connection problems surface here.
func NewDatabaseFromConfig(ctx context.Context, cfg config.DatabaseConfig) (*DocbaseDatabase, error) {
	switch cfg.Type {
	case "postgres":
		connConfig, err := pgx.ParseConfig(PostgresConnectionString(cfg))
		if err != nil {
			return nil, fmt.Errorf("parsing postgres config: %w", err)
		}
		// set apart so that no quoting of the password is needed
		connConfig.Password = cfg.Password
		return openServer(ctx, stdlib.OpenDB(*connConfig), "pgx", cfg.Schema)
	case "mysql":
		connector, err := mysql.NewConnector(MySQLConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("creating mysql connector: %w", err)
		}
		return openServer(ctx, sql.OpenDB(connector), "mysql", cfg.Schema)
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite database")
		}
		return NewSQLiteDatabase(cfg.Path, cfg.Schema)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func openServer(ctx context.Context, db *sql.DB, driver, schema string) (*DocbaseDatabase, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	d := NewDocbaseDatabase(db, driver, schema)
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("connecting to %s docbase: %w: %w", driver, bcl.ErrDatabase, err)
	}
	return d, nil
}

// PostgresConnectionString returns the pgx connection URL for cfg, without
// the password.
func PostgresConnectionString(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(cfg.User),
		Host:   cfg.Address(),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("connect_timeout", fmt.Sprint(int(connectTimeout.Seconds())))
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// MySQLConfig returns the driver configuration for cfg.
func MySQLConfig(cfg config.DatabaseConfig) *mysql.Config {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Address()
	c.DBName = cfg.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.Timeout = connectTimeout
	return c
}
