package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"PORT" default:"8787"`
	// StaticDir is the directory holding the prebuilt single-page application.
	StaticDir string `mapstructure:"STATIC_DIR" default:"dist"`
	// CORSOrigins is the comma separated list of allowed origins.
	CORSOrigins string `mapstructure:"CORS_ORIGINS" default:"*"`

	// Redis holds the order store connection details.
	Redis RedisConfig `mapstructure:",squash"`

	// Mail holds the outbound notification settings.
	Mail MailConfig `mapstructure:",squash"`

	// Admin holds the dashboard gate settings.
	Admin AdminConfig `mapstructure:",squash"`

	// Client holds settings used by the command line order form.
	Client ClientConfig `mapstructure:",squash"`
}

// RedisConfig holds the Redis connection used by the order record store.
type RedisConfig struct {
	// URL has the form redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0" required:"true"`
}

// MailConfig holds the outbound mail provider settings.
// None of these are required at load time: a missing value is reported per
// request so the rest of the site keeps working.
type MailConfig struct {
	// APIKey is the Resend API credential.
	APIKey string `mapstructure:"RESEND_API_KEY"`
	// APIURL is the Resend API base URL.
	APIURL string `mapstructure:"RESEND_API_URL" default:"https://api.resend.com"`
	// OwnerEmail receives the new order summary.
	OwnerEmail string `mapstructure:"OWNER_EMAIL"`
	// FromEmail is the sender address for both notifications.
	FromEmail string `mapstructure:"FROM_EMAIL"`
	// ShopName is shown in the customer subject line.
	ShopName string `mapstructure:"SHOP_NAME" default:"ECU Stand"`
}

// Missing returns the names of the mail settings that are not configured.
func (m MailConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(m.APIKey) == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if strings.TrimSpace(m.OwnerEmail) == "" {
		missing = append(missing, "OWNER_EMAIL")
	}
	if strings.TrimSpace(m.FromEmail) == "" {
		missing = append(missing, "FROM_EMAIL")
	}
	return missing
}

// AdminConfig holds the admin dashboard gate.
// The passphrase is a shared static value, not an authentication system.
type AdminConfig struct {
	Passphrase string `mapstructure:"ADMIN_PASSPHRASE" default:"1234" required:"true"`
}

// ClientConfig holds the intake endpoint override for clients.
type ClientConfig struct {
	// APIBaseURL is prepended to /api/order. Empty means the local server.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadWith is Load for commands that bind their own flags into v first.
func LoadWith(v *viper.Viper) (*AppConfig, error) {
	v.AutomaticEnv()
	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	default:
		return v.IsZero()
	}
}
