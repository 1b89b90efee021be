package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	Relay    RelayConfig    `envPrefix:"FORM_RELAY_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Site     SiteConfig     `envPrefix:"SITE_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type TelegramConfig struct {
	Token       string  `env:"TOKEN"`
	APIEndpoint string  `env:"API_ENDPOINT" envDefault:"https://api.telegram.org/bot%s/%s"`
	ChatID      int64   `env:"CHAT_ID"`
	Polling     bool    `env:"POLLING" envDefault:"false"`
	AdminIDs    []int64 `env:"ADMIN_IDS" envSeparator:","`
	Debug       bool    `env:"DEBUG" envDefault:"false"`
	// Timeout bounds every Bot API request, long polls included.
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"25s"`
}

type RelayConfig struct {
	URL       string        `env:"URL" envDefault:"https://api.web3forms.com/submit"`
	AccessKey string        `env:"ACCESS_KEY"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR,required,notEmpty"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// StateTTL bounds how long an abandoned bot dialog is kept.
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"24h"`
}

// DatabaseConfig is optional: an empty Host disables the lead journal.
type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type SessionConfig struct {
	Duration     time.Duration `env:"DURATION" envDefault:"3m"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	SubmitDelay  time.Duration `env:"SUBMIT_DELAY" envDefault:"2s"`
	CheckDelay   time.Duration `env:"CHECK_DELAY" envDefault:"2s"`
	Retention    time.Duration `env:"RETENTION" envDefault:"10m"`
}

type SiteConfig struct {
	Name               string `env:"NAME" envDefault:"IFIX CLOUD"`
	SupportWhatsAppURL string `env:"SUPPORT_WHATSAPP_URL" envDefault:"https://wa.me/447401787614"`
	IMEIChecksPerHour  int    `env:"IMEI_CHECKS_PER_HOUR" envDefault:"5"`
}

type LogConfig struct {
	Level       string `env:"LEVEL" envDefault:"info"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Polling && c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_POLLING requires TELEGRAM_TOKEN")
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	if c.Telegram.PollTimeout >= c.Telegram.Timeout {
		return fmt.Errorf("TELEGRAM_POLL_TIMEOUT must be shorter than TELEGRAM_TIMEOUT")
	}
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("SESSION_TICK_INTERVAL must be positive")
	}
	if c.Session.Duration < c.Session.TickInterval {
		return fmt.Errorf("SESSION_DURATION must be at least one tick")
	}
	if c.Database.Enabled() && (c.Database.User == "" || c.Database.Name == "") {
		return fmt.Errorf("DB_USER and DB_NAME are required when DB_HOST is set")
	}
	return nil
}

// SessionSeconds is the countdown length in ticks.
func (s SessionConfig) SessionSeconds() int {
	return int(s.Duration / s.TickInterval)
}
