package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config holds all process settings. Values come from the environment, with
// an optional .env file loaded first.
type Config struct {
	Port        string   `mapstructure:"PORT"`
	GinMode     string   `mapstructure:"GIN_MODE"`
	CORSOrigins []string `mapstructure:"CORS_ORIGIN"`
	AppURL      string   `mapstructure:"APP_URL"`
	AppEnv      string   `mapstructure:"APP_ENV"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	DBURL         string `mapstructure:"DB_URL"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	RedisURL      string `mapstructure:"REDIS_URL"`

	JWTSecret    string `mapstructure:"JWT_SECRET"`
	OIDCIssuer   string `mapstructure:"OIDC_ISSUER_URL"`
	OIDCClientID string `mapstructure:"OIDC_CLIENT_ID"`

	StripeSecretKey           string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret       string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeBasicPriceID        string `mapstructure:"STRIPE_BASIC_PRICE_ID"`
	StripeProfessionalPriceID string `mapstructure:"STRIPE_PROFESSIONAL_PRICE_ID"`
	StripeEnterprisePriceID   string `mapstructure:"STRIPE_ENTERPRISE_PRICE_ID"`
	StripeAPIURL              string `mapstructure:"STRIPE_API_URL"`
	StripeMaxNetworkRetries   int64  `mapstructure:"STRIPE_MAX_NETWORK_RETRIES"`
	TrialDays                 int    `mapstructure:"TRIAL_DAYS"`
}

var keys = []string{
	"PORT", "GIN_MODE", "CORS_ORIGIN", "APP_URL", "APP_ENV",
	"LOG_LEVEL", "LOG_FORMAT",
	"STORE_DRIVER", "DB_URL", "MONGO_URI", "MONGO_DATABASE", "REDIS_URL",
	"JWT_SECRET", "OIDC_ISSUER_URL", "OIDC_CLIENT_ID",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"STRIPE_BASIC_PRICE_ID", "STRIPE_PROFESSIONAL_PRICE_ID", "STRIPE_ENTERPRISE_PRICE_ID",
	"STRIPE_API_URL", "STRIPE_MAX_NETWORK_RETRIES", "TRIAL_DAYS",
}

// LoadEnv reads .env (if present) and then the environment.
func LoadEnv() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Load()
}

// Load builds the config from the current environment only.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("MONGO_DATABASE", "asset_manager")
	v.SetDefault("STRIPE_MAX_NETWORK_RETRIES", 2)
	v.SetDefault("TRIAL_DAYS", 14)

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	required := []struct{ key, value string }{
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
		{"STRIPE_BASIC_PRICE_ID", c.StripeBasicPriceID},
		{"STRIPE_PROFESSIONAL_PRICE_ID", c.StripeProfessionalPriceID},
		{"STRIPE_ENTERPRISE_PRICE_ID", c.StripeEnterprisePriceID},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	if c.JWTSecret == "" && c.OIDCIssuer == "" {
		return errors.New("either JWT_SECRET or OIDC_ISSUER_URL is required")
	}
	if c.OIDCIssuer != "" && c.OIDCClientID == "" {
		return errors.New("OIDC_CLIENT_ID is required with OIDC_ISSUER_URL")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.TrialDays < 0 {
		return errors.New("TRIAL_DAYS must not be negative")
	}
	return nil
}

// IsProduction reports whether live-mode safeguards apply.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// splitOrigins accepts either a list or a single comma separated value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
