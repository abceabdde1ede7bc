// Package config loads the connector configuration from a TOML file plus
// environment overrides and maps it onto the per-integration config structs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/erp/connectors/internal/infrastructure/cin7"
	"github.com/erp/connectors/internal/infrastructure/logger"
	"github.com/erp/connectors/internal/infrastructure/rotation"
	"github.com/erp/connectors/internal/infrastructure/shopify"
	"github.com/erp/connectors/internal/infrastructure/unleashed"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Cin7      Cin7Config
	Unleashed UnleashedConfig
	Shopify   ShopifyConfig
	Redis     RedisConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// Cin7Config holds the Cin7 credential and workflow settings
type Cin7Config struct {
	APIUsername       string
	APIPassword       string
	APIExtraPasswords []string

	UIUsername  string
	UIPassword  string
	UIOTPSecret string

	CreditNotesAppLinkID string
	SalesOrdersAppLinkID string

	Headless   bool
	MaxRetries int

	RotationEnabled bool
	RotationCutoff  int
}

// UnleashedConfig holds the Unleashed API credentials
type UnleashedConfig struct {
	APIID      string
	APIKey     string
	ClientType string
}

// ShopifyConfig holds the Shopify Admin API credentials
type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// RedisConfig holds Redis connection settings for the rotation counter
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// WebhookConfig holds chat webhook alerting settings
type WebhookConfig struct {
	URL       string
	MentionID string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CONNECTORS_ prefix (e.g. CONNECTORS_CIN7_API_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{".", "/app"}
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults and env vars carry the day
	}

	v.SetEnvPrefix("CONNECTORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Cin7: Cin7Config{
			APIUsername:       v.GetString("cin7.api_username"),
			APIPassword:       v.GetString("cin7.api_password"),
			APIExtraPasswords: v.GetStringSlice("cin7.api_extra_passwords"),

			UIUsername:  v.GetString("cin7.ui_username"),
			UIPassword:  v.GetString("cin7.ui_password"),
			UIOTPSecret: v.GetString("cin7.ui_otp_secret"),

			CreditNotesAppLinkID: v.GetString("cin7.credit_notes_app_link_id"),
			SalesOrdersAppLinkID: v.GetString("cin7.sales_orders_app_link_id"),

			Headless:   v.GetBool("cin7.headless"),
			MaxRetries: v.GetInt("cin7.max_retries"),

			RotationEnabled: v.GetBool("cin7.rotation_enabled"),
			RotationCutoff:  v.GetInt("cin7.rotation_cutoff"),
		},
		Unleashed: UnleashedConfig{
			APIID:      v.GetString("unleashed.api_id"),
			APIKey:     v.GetString("unleashed.api_key"),
			ClientType: v.GetString("unleashed.client_type"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  v.GetString("shopify.shop_domain"),
			AccessToken: v.GetString("shopify.access_token"),
			APIVersion:  v.GetString("shopify.api_version"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Webhook: WebhookConfig{
			URL:       v.GetString("webhook.url"),
			MentionID: v.GetString("webhook.mention_id"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "erp-connectors"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

func (c *Config) validate() error {
	switch c.App.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: invalid app.env %q", c.App.Env)
	}

	// Credentials themselves are validated by each client's own config; the
	// loader only rejects combinations it cannot wire at all.
	if c.Cin7.RotationEnabled && c.Redis.Host == "" {
		return fmt.Errorf("config: cin7 rotation requires a redis host")
	}
	return nil
}

// Cin7ClientConfig maps the loaded settings onto the Cin7 client config
func (c *Config) Cin7ClientConfig() *cin7.Config {
	cfg := &cin7.Config{
		API: cin7.APICredentials{
			Username:       c.Cin7.APIUsername,
			Password:       c.Cin7.APIPassword,
			ExtraPasswords: c.Cin7.APIExtraPasswords,
		},
		AppLinkIDs: cin7.AppLinkIDs{
			CreditNotes: c.Cin7.CreditNotesAppLinkID,
			SalesOrders: c.Cin7.SalesOrdersAppLinkID,
		},
		Rotation: cin7.RotationConfig{
			Enabled: c.Cin7.RotationEnabled,
			Cutoff:  c.Cin7.RotationCutoff,
		},
		Headless:   c.Cin7.Headless,
		MaxRetries: c.Cin7.MaxRetries,
	}
	if c.Cin7.UIUsername != "" {
		cfg.UI = &cin7.UICredentials{
			Username:  c.Cin7.UIUsername,
			Password:  c.Cin7.UIPassword,
			OTPSecret: c.Cin7.UIOTPSecret,
		}
	}
	return cfg
}

// UnleashedClientConfig maps the loaded settings onto the Unleashed config
func (c *Config) UnleashedClientConfig() *unleashed.Config {
	return &unleashed.Config{
		APIID:      c.Unleashed.APIID,
		APIKey:     c.Unleashed.APIKey,
		ClientType: c.Unleashed.ClientType,
	}
}

// ShopifyClientConfig maps the loaded settings onto the Shopify config
func (c *Config) ShopifyClientConfig() *shopify.Config {
	return &shopify.Config{
		ShopDomain:  c.Shopify.ShopDomain,
		AccessToken: c.Shopify.AccessToken,
		APIVersion:  c.Shopify.APIVersion,
	}
}

// RotationRedisConfig maps the loaded settings onto the Redis counter config
func (c *Config) RotationRedisConfig() rotation.RedisConfig {
	return rotation.RedisConfig{
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// LoggerConfig maps the loaded settings onto the logger config
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		Output:     c.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}
