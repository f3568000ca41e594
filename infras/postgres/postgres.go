package postgres

//nolint:revive
import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"hotel/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"

	maxIdleConnections    = 10
	maxOpenConnections    = 10
	connectionMaxLifetime = 30 * time.Minute
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint describes one side of the read/write split.
type Endpoint struct {
	Role     string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	SSLMode  string
	Timezone string
}

// URL renders the endpoint as a postgres:// connection string. Credentials are escaped so any
// character is allowed in the password.
func (e Endpoint) URL(extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", e.SSLMode)

	if e.Timezone != "" {
		query.Set("timezone", e.Timezone)
	}

	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func WriteEndpoint(cfg *config.Config) Endpoint {
	pg := cfg.DB.Postgres

	return Endpoint{
		Role:     "write",
		Host:     pg.Write.Host,
		Port:     pg.Write.Port,
		Username: pg.Write.Username,
		Password: pg.Write.Password,
		Name:     pg.Prefix + pg.Write.Name,
		SSLMode:  pg.Write.SSLMode,
		Timezone: pg.Write.Timezone,
	}
}

func ReadEndpoint(cfg *config.Config) Endpoint {
	pg := cfg.DB.Postgres

	return Endpoint{
		Role:     "read",
		Host:     pg.Read.Host,
		Port:     pg.Read.Port,
		Username: pg.Read.Username,
		Password: pg.Read.Password,
		Name:     pg.Prefix + pg.Read.Name,
		SSLMode:  pg.Read.SSLMode,
		Timezone: pg.Read.Timezone,
	}
}

func New(cfg *config.Config) *Connection {
	retries, wait := cfg.DB.Postgres.MaxRetry, time.Duration(cfg.DB.Postgres.RetryWaitTime)*time.Second

	return &Connection{
		Read:  Connect(ReadEndpoint(cfg), retries, wait),
		Write: Connect(WriteEndpoint(cfg), retries, wait),
	}
}

// Connect dials the endpoint, retrying up to maxRetry times. It gives up fatally since nothing
// in the service works without the database.
func Connect(endpoint Endpoint, maxRetry int, wait time.Duration) *sqlx.DB {
	logger := log.With().
		Str("role", endpoint.Role).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", endpoint.Name).
		Logger()

	dsn := endpoint.URL(nil)

	for attempt := 1; attempt <= max(maxRetry, 1); attempt++ {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connectionMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	logger.Fatal().Msg("Giving up connecting to database")

	return nil
}

// WithTx runs fn inside a transaction on the write pool. The transaction is rolled back
// when fn returns an error or panics and committed otherwise.
func (c *Connection) WithTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error().Err(rbErr).Msg("failed to rollback transaction")
			}

			return
		}

		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	return fn(tx)
}
