package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultStoreDriver    = "sqlite"
	defaultDatabaseURL    = "restaurant.db"
	defaultStoreKey       = "restaurant_reservations"
	defaultRedisAddr      = "localhost:6379"
	defaultTimezone       = "UTC"
	defaultEventsQueue    = "reservation.events"
	defaultDigestSchedule = "0 8 * * *"
	defaultFromName       = "The Restaurant"
	defaultShutdown       = "10s"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	AppEnv string
	Port   string

	StoreDriver string
	DatabaseURL string
	StoreKey    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Location       *time.Location
	AllowedOrigins []string

	AMQPURL     string
	EventsQueue string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	DigestSchedule  string
	ShutdownTimeout time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", defaultStoreDriver)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.StoreKey = strings.TrimSpace(getEnv("STORE_KEY", defaultStoreKey))

	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", defaultRedisAddr))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	var err error
	cfg.RedisDB, err = parseIntEnv("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("TIMEZONE", defaultTimezone))
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE value %q: %w", tz, err)
	}

	cfg.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.AMQPURL = strings.TrimSpace(os.Getenv("AMQP_URL"))
	cfg.EventsQueue = strings.TrimSpace(getEnv("EVENTS_QUEUE", defaultEventsQueue))

	cfg.SendGridAPIKey = strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
	cfg.SendGridFromEmail = strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL"))
	cfg.SendGridFromName = strings.TrimSpace(getEnv("SENDGRID_FROM_NAME", defaultFromName))

	cfg.TwilioAccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	cfg.TwilioAuthToken = strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN"))
	cfg.TwilioFromNumber = strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER"))

	// An explicitly empty DIGEST_SCHEDULE disables the job.
	if v, ok := os.LookupEnv("DIGEST_SCHEDULE"); ok {
		cfg.DigestSchedule = strings.TrimSpace(v)
	} else {
		cfg.DigestSchedule = defaultDigestSchedule
	}

	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdown)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EmailEnabled reports whether SendGrid is fully configured.
func (c *Config) EmailEnabled() bool {
	return c.SendGridAPIKey != "" && c.SendGridFromEmail != ""
}

// SMSEnabled reports whether Twilio is fully configured.
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.StoreKey == "" {
		return fmt.Errorf("STORE_KEY must not be empty")
	}
	switch cfg.StoreDriver {
	case DriverSQLite, DriverPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for STORE_DRIVER=%s", cfg.StoreDriver)
		}
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR must be set for STORE_DRIVER=redis")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: sqlite, postgres, redis, memory")
	}
	if cfg.EventsQueue == "" {
		return fmt.Errorf("EVENTS_QUEUE must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}

	if isProdLike(cfg.AppEnv) && cfg.StoreDriver == DriverMemory {
		return fmt.Errorf("in prod/release STORE_DRIVER=memory is not allowed")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
