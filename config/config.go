/* config.go
 * Loads the application configuration from the environment. A `.env` file in the working directory is read first
 * when present, values already set in the environment take precedence
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the admin surfaces need
type Config struct {
	APIBaseURL     string        // base url for both the authenticated and the public api
	MongoURI       string        // optional, persistence is disabled when empty
	MongoDB        string        // database name used for the persisted client state
	DiscordToken   string        // optional, required only by the bot command
	AdminChannelID string        // when set the bot only answers in this channel
	HTTPAddr       string        // listen address for the web console
	RateLimit      float64       // outgoing api requests per second
	RequestTimeout time.Duration // timeout applied to every api call
	SnapshotTTL    time.Duration // how long a stored list snapshot is considered fresh
	FormsFile      string        // optional yaml file overriding the embedded form schemas
	Debug          bool
}

// Defaults used when the matching variable is not set
const (
	DefaultMongoDB        = "torneos_admin"
	DefaultHTTPAddr       = ":8080"
	DefaultRateLimit      = 10
	DefaultRequestTimeout = 15 * time.Second
	DefaultSnapshotTTL    = 10 * time.Minute
)

// Load reads the optional env file and builds a Config from the environment.
// Preconditions: envFile may be empty, in which case `.env` is tried
// Postconditions: Returns the populated Config, or an error if a required value is missing or a value cannot be parsed
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading env file %s: %w", envFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using the given lookup function, which makes it testable without touching the process env
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		APIBaseURL:     strings.TrimRight(strings.TrimSpace(getenv("API_BASE_URL")), "/"),
		MongoURI:       getenv("MONGO_URI"),
		MongoDB:        valueOr(getenv("MONGO_DB"), DefaultMongoDB),
		DiscordToken:   getenv("DISCORD_TOKEN"),
		AdminChannelID: getenv("ADMIN_CHANNEL_ID"),
		HTTPAddr:       valueOr(getenv("HTTP_ADDR"), DefaultHTTPAddr),
		RateLimit:      DefaultRateLimit,
		RequestTimeout: DefaultRequestTimeout,
		SnapshotTTL:    DefaultSnapshotTTL,
		FormsFile:      getenv("FORMS_FILE"),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required but none was provided")
	}

	if raw := getenv("API_RATE_LIMIT"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			return Config{}, fmt.Errorf("invalid API_RATE_LIMIT %q, expected a positive number", raw)
		}
		cfg.RateLimit = rps
	}

	if raw := getenv("API_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid API_TIMEOUT %q: %w", raw, err)
		}
		cfg.RequestTimeout = d
	}

	if raw := getenv("SNAPSHOT_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SNAPSHOT_TTL %q: %w", raw, err)
		}
		cfg.SnapshotTTL = d
	}

	if raw := getenv("DEBUG"); raw != "" {
		debug, err := convertStrToBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEBUG %q, expected true or false", raw)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

func valueOr(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
