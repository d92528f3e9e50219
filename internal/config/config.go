package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ProductionEnvironment is the environment in which no .env file is loaded.
const ProductionEnvironment = "production"

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, site identity,
// stores, domain validation, mail delivery and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists the CORS origins allowed to call the API; empty allows any
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," yaml:"allowedOrigins"`
	} `yaml:"http"`

	// Site identifies the deployment in emails and links
	Site struct {
		// Title names the service in email subjects and bodies
		Title string `env:"SITE_TITLE" env-default:"Certificate Expiry Monitor" yaml:"title"`
		// Domain is the mail domain; messages are sent from noreply@<domain>
		Domain string `env:"SITE_DOMAIN" env-default:"localhost" yaml:"domain"`
		// Link is the public host (and optional path) of the web front-end
		Link string `env:"SITE_LINK" env-default:"localhost:8080" yaml:"link"`
		// Timezone is the IANA zone used for dates in emails
		Timezone string `env:"SITE_TIMEZONE" env-default:"UTC" yaml:"timezone"`
	} `yaml:"site"`

	// Storage contains the store file settings
	Storage struct {
		// PendingPath is the pending (pre-check) store document
		PendingPath string `env:"STORAGE_PENDING_PATH" env-default:"data/pre_checks.json" yaml:"pendingPath"`
		// ConfirmedPath is the confirmed store document
		ConfirmedPath string `env:"STORAGE_CONFIRMED_PATH" env-default:"data/checks.json" yaml:"confirmedPath"`
		// FileMode is the octal permission of written documents
		FileMode string `env:"STORAGE_FILE_MODE" env-default:"0644" yaml:"fileMode"`
		// LockTimeout bounds the wait for a store write lock
		LockTimeout time.Duration `env:"STORAGE_LOCK_TIMEOUT" env-default:"10s" yaml:"lockTimeout"`
	} `yaml:"storage"`

	// Validator contains the domain validation settings
	Validator struct {
		// DisableDNS skips the check that domains resolve
		DisableDNS bool `env:"VALIDATOR_DISABLE_DNS" yaml:"disableDNS"`
		// DisableTLS skips the check that domains complete a TLS handshake
		DisableTLS bool `env:"VALIDATOR_DISABLE_TLS" yaml:"disableTLS"`
		// TLSPort is the port probed by the TLS check
		TLSPort int `env:"VALIDATOR_TLS_PORT" env-default:"443" yaml:"tlsPort"`
		// Timeout bounds each network check
		Timeout time.Duration `env:"VALIDATOR_TIMEOUT" env-default:"5s" yaml:"timeout"`
	} `yaml:"validator"`

	// Mailer contains the mail delivery settings
	Mailer struct {
		// Provider is one of smtp, ses or log
		Provider string `env:"MAILER_PROVIDER" env-default:"log" yaml:"provider"`

		SMTP struct {
			Host      string        `env:"MAILER_SMTP_HOST" env-default:"localhost" yaml:"host"`
			Port      int           `env:"MAILER_SMTP_PORT" env-default:"587" yaml:"port"`
			Username  string        `env:"MAILER_SMTP_USERNAME" yaml:"username"`
			Password  string        `env:"MAILER_SMTP_PASSWORD" yaml:"password"`
			AuthType  string        `env:"MAILER_SMTP_AUTH_TYPE" yaml:"authType"`
			TLSPolicy string        `env:"MAILER_SMTP_TLS_POLICY" env-default:"mandatory" yaml:"tlsPolicy"`
			Timeout   time.Duration `env:"MAILER_SMTP_TIMEOUT" env-default:"15s" yaml:"timeout"`
		} `yaml:"smtp"`

		SES struct {
			Region          string `env:"MAILER_SES_REGION" env-default:"us-east-1" yaml:"region"`
			AccessKeyID     string `env:"MAILER_SES_ACCESS_KEY_ID" yaml:"accessKeyId"`
			SecretAccessKey string `env:"MAILER_SES_SECRET_ACCESS_KEY" yaml:"secretAccessKey"`
		} `yaml:"ses"`
	} `yaml:"mailer"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// Outside production a .env file in the working directory is loaded first.
// When configPath does not exist the configuration comes from the environment
// alone.
func Load(configPath string) (*Config, error) {
	if os.Getenv("ENVIRONMENT") != ProductionEnvironment {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	var cfg Config
	_, err := os.Stat(configPath)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(configPath, &cfg)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if _, err := cfg.StorageFileMode(); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StorageFileMode parses Storage.FileMode.
func (c *Config) StorageFileMode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.Storage.FileMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid storage file mode %q: %w", c.Storage.FileMode, err)
	}

	return os.FileMode(mode), nil
}

// Location loads Site.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid site timezone %q: %w", c.Site.Timezone, err)
	}

	return loc, nil
}
