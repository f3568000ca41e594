package config

import (
	"errors"
	"fmt"
	"sync"

	"hotel/shared/constant"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"       default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Port     string `envconfig:"PORT"      default:"8080"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"   default:"15"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME" default:"hotel-api"`
		Timezone string `envconfig:"TIMEZONE" default:"UTC"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable          bool `envconfig:"ENABLE"`
			MaxRequests     int  `envconfig:"MAX_REQUESTS"      default:"100"`
			AuthMaxRequests int  `envconfig:"AUTH_MAX_REQUESTS" default:"10"`
			WindowSeconds   int  `envconfig:"WINDOW_SECONDS"    default:"60"`
		} `envconfig:"RATE_LIMITER"`
		Booking struct {
			ReferencePrefix string `envconfig:"REFERENCE_PREFIX" default:"NCH-"`
			ReferenceRetry  int    `envconfig:"REFERENCE_RETRY"  default:"5"`
		} `envconfig:"BOOKING"`
		Seed struct {
			AdminEmail           string `envconfig:"ADMIN_EMAIL"           default:"admin@hotel.local"`
			AdminPassword        string `envconfig:"ADMIN_PASSWORD"`
			ReceptionistEmail    string `envconfig:"RECEPTIONIST_EMAIL"    default:"reception@hotel.local"`
			ReceptionistPassword string `envconfig:"RECEPTIONIST_PASSWORD"`
		} `envconfig:"SEED"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"  default:"15"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int              `envconfig:"MAX_RETRY"       default:"5"`
			RetryWaitTime  int              `envconfig:"RETRY_WAIT_TIME" default:"3"`
			MigrationTable string           `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool             `envconfig:"AUTO_MIGRATE"`
			Prefix         string           `envconfig:"PREFIX"`
			Read           PostgresEndpoint `envconfig:"READ"`
			Write          PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable        bool     `envconfig:"ENABLE"`
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			BookingEvents string `envconfig:"BOOKING_EVENTS" default:"booking.events"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	RabbitMQ struct {
		Enable bool   `envconfig:"ENABLE"`
		URL    string `envconfig:"URL"`
		Queues struct {
			BookingNotifications string `envconfig:"BOOKING_NOTIFICATIONS" default:"booking.notifications"`
		} `envconfig:"QUEUES"`
	} `envconfig:"RABBITMQ"`

	External struct {
		Otel struct {
			Endpoint    string  `envconfig:"ENDPOINT"`
			SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			BucketName      string `envconfig:"BUCKET_NAME"`
			Region          string `envconfig:"REGION" default:"auto"`
		} `envconfig:"S3"`
		Telegram struct {
			BotToken   string  `envconfig:"BOT_TOKEN"`
			StaffChats []int64 `envconfig:"STAFF_CHATS"`
		} `envconfig:"TELEGRAM"`
	} `envconfig:"EXTERNAL"`
}

// PostgresEndpoint is one side of the read/write database split.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == constant.ServerEnvProduction
}

// Validate rejects settings the service cannot run safely with. Signing secrets are only
// enforced in production so local runs work from defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.AccessExpireMin <= 0 || c.JWT.RefreshExpireMin <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRE_MIN and JWT_REFRESH_EXPIRE_MIN must be positive"))
	}

	if c.IsProduction() {
		if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
			errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required in production"))
		}

		if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
			errs = append(errs, errors.New("access and refresh secrets must differ"))
		}
	}

	return errors.Join(errs...)
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

// Init loads .env when present, then the process environment, then validates the result.
func Init() error {
	var err error

	once.Do(func() {
		if dotenvErr := godotenv.Load(".env"); dotenvErr != nil {
			log.Debug().Err(dotenvErr).Msg("No .env file, using the process environment")
		} else {
			log.Info().Msg("Loaded variables from .env file")
		}

		if err = envconfig.Process("", &conf); err != nil {
			err = fmt.Errorf("processing environment: %w", err)

			return
		}

		if err = conf.Validate(); err != nil {
			err = fmt.Errorf("invalid configuration: %w", err)

			return
		}

		initialized = true

		log.Info().Str("env", conf.Server.Env).Msg("Service configuration initialized")
	})

	return err
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}
