package config

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"position-tally/core/database"
	"position-tally/core/logger"
	"position-tally/core/openfigi"
	"position-tally/core/server"
	"position-tally/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run history database.
	Database database.Config `mapstructure:"database"`
	// OpenFIGI holds configuration for the identifier mapping client.
	OpenFIGI openfigi.Config `mapstructure:"openfigi"`
	// Reconcile holds the default matching options.
	Reconcile Reconcile `mapstructure:"reconcile"`
	// Connection maps connection names to raw byte sources.
	Connection map[string]storage.Config `mapstructure:"connection"`
	// Provider maps provider labels to their adapter wiring.
	Provider map[string]Provider `mapstructure:"provider"`
}

// Reconcile holds the default options of a reconciliation run.
type Reconcile struct {
	// Primary is the identifier of the first matching pass.
	Primary string `mapstructure:"primary" default:"description"`
	// Fallback is the identifier of the second pass. Empty disables it.
	Fallback string `mapstructure:"fallback" default:"bbg_yellow"`
	// DiffPolicy names the rule that flags matched pairs (all, any).
	DiffPolicy string `mapstructure:"diff_policy" default:"all"`
	// OutputDir is where CSV results are written.
	OutputDir string `mapstructure:"output_dir" default:"./temp_data"`
	// OutputConnection names an s3 connection to upload results to, under OutputDir as key prefix.
	// Empty writes to the local OutputDir.
	OutputConnection string `mapstructure:"output_connection" default:""`
	// Store persists run summaries to the database.
	Store bool `mapstructure:"store" default:"false"`
}

// Provider wires a provider label to an adapter and the connection it reads from.
type Provider struct {
	// Adapter is the registered adapter name. Empty uses the provider label.
	Adapter string `mapstructure:"adapter" default:""`
	// Connection names the entry of Config.Connection to read from.
	Connection string `mapstructure:"connection" default:""`
	// Path is the object key pattern with %Y %m %d date tokens. Empty uses the adapter default.
	Path string `mapstructure:"path" default:""`
	// Accounts restricts the provider to these account numbers. Empty keeps every account.
	Accounts []string `mapstructure:"accounts"`
	// DisableCache turns off the per-path memo of raw reads.
	DisableCache bool `mapstructure:"disable_cache" default:"false"`
}

// LoadConfig loads configuration from environment variables, .env and an optional
// config.toml / config.yaml in path.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Connections and providers are maps and only come from the config file
	v.SetConfigName("config")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	for name, c := range config.Connection {
		applyDefaults(reflect.ValueOf(&c).Elem())
		config.Connection[name] = c
	}
	for name, p := range config.Provider {
		applyDefaults(reflect.ValueOf(&p).Elem())
		config.Provider[name] = p
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Map:
			// Map entries get their defaults after unmarshalling
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

// applyDefaults fills zero fields of the struct value s from their 'default' tags.
func applyDefaults(s reflect.Value) {
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		field := s.Field(i)
		if field.Kind() == reflect.Struct {
			applyDefaults(field)
			continue
		}

		def := t.Field(i).Tag.Get("default")
		if def == "" || !field.IsZero() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(def)
		case reflect.Int, reflect.Int64, reflect.Int32:
			if n, err := strconv.ParseInt(def, 10, 64); err == nil {
				field.SetInt(n)
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(def); err == nil {
				field.SetBool(b)
			}
		}
	}
}
