package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPrefix    = "!"
	DefaultStorePath = "reminders.json"
	DefaultPresence  = "Minecraft"
	DefaultTick      = 60 * time.Second
	DefaultRCONPort  = "25575"
)

// Config is everything the bot reads from its environment.
type Config struct {
	DiscordToken string
	Prefix       string
	StorePath    string
	TickInterval time.Duration
	Presence     string

	ConsoleHost     string
	ConsolePort     string
	ConsolePassword string

	HTTPAddr   string
	FeedSecret string

	LogLevel  string
	LogFormat string
}

// ConsoleEnabled reports whether a remote console address was configured.
func (c Config) ConsoleEnabled() bool {
	return c.ConsoleHost != ""
}

func (c Config) ConsoleAddr() string {
	return net.JoinHostPort(c.ConsoleHost, c.ConsolePort)
}

// LoadEnvFile merges path into the process environment. A missing file is not
// an error; variables already set win over the file.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("component", "config").Str("path", path).Msg("no env file found")
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv reads the configuration with lookup, usually os.Getenv.
func FromEnv(lookup func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		DiscordToken:    get("DISCORD_TOKEN", ""),
		Prefix:          get("COMMAND_PREFIX", DefaultPrefix),
		StorePath:       get("STORE_PATH", DefaultStorePath),
		Presence:        get("PRESENCE", DefaultPresence),
		ConsoleHost:     get("HOST", ""),
		ConsolePort:     get("PORT", DefaultRCONPort),
		ConsolePassword: lookup("RCON_PASSWORD"),
		HTTPAddr:        get("HTTP_ADDR", ""),
		FeedSecret:      lookup("FEED_SECRET"),
		LogLevel:        strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(get("LOG_FORMAT", "console")),
		TickInterval:    DefaultTick,
	}

	if raw := get("TICK_INTERVAL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("TICK_INTERVAL: %w", err)
		}
		cfg.TickInterval = d
	}

	return cfg, cfg.Validate()
}

// Load reads the environment after merging envFile into it.
func Load(envFile string) (Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

func (c Config) Validate() error {
	if c.TickInterval < time.Second {
		return fmt.Errorf("TICK_INTERVAL must be at least 1s, got %s", c.TickInterval)
	}
	if strings.ContainsAny(c.Prefix, " \t\n") {
		return fmt.Errorf("COMMAND_PREFIX must not contain whitespace")
	}
	if c.HTTPAddr != "" && c.FeedSecret == "" {
		return errors.New("FEED_SECRET is required when HTTP_ADDR is set")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json; got %q", c.LogFormat)
	}
	return nil
}
