package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"hotel/config"
	"hotel/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionStepUp  Action = "step-up"
	ActionDrop    Action = "drop"
	ActionVersion Action = "version"
	ActionForce   Action = "force"
)

var ErrUnknownAction = errors.New("unknown migration action")

// DatabaseURL builds the connection string golang-migrate expects for the write pool.
func DatabaseURL(cfg *config.Config) string {
	extra := url.Values{}

	if table := cfg.DB.Postgres.MigrationTable; table != "" {
		extra.Set("x-migrations-table", table)
	}

	return postgres.WriteEndpoint(cfg).URL(extra)
}

// Migrate applies action to the booking schema. Force takes the target version in args.
func Migrate(cfg *config.Config, action Action, args ...string) error {
	mig, err := migrate.New(migrationSource, DatabaseURL(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrator")
		}
	}()

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Down()
	case ActionVersion:
		return logVersion(mig)
	case ActionForce:
		if len(args) == 0 {
			return errors.New("force requires a target version")
		}

		version, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], convErr)
		}

		err = mig.Force(version)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", action, err)
	}

	log.Info().Str("action", string(action)).Msg("Database migration finished")

	return logVersion(mig)
}

func logVersion(mig *migrate.Migrate) error {
	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info().Msg("Database has no migrations applied")

		return nil
	}

	if err != nil {
		return fmt.Errorf("error reading migration version: %w", err)
	}

	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema version")

	return nil
}
