package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	kolado "github.com/GustavoBertuzzi/API-Kolado"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
)

// envPrefix namespaces the tuning variables, e.g. KOLADO_WORKERS.
const envPrefix = "KOLADO"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Endpoints and credentials of both systems
	Kolado kolado.Config

	// Run tuning
	Workers        int
	HTTPTimeout    time.Duration
	KeyPrefix      string
	PushgatewayURL string
	MetricsJob     string

	// Logging configuration. LogLevel is the --log-level flag only;
	// EnvLogLevel comes from the environment or config file.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or ~/.kolado.yaml and ./.kolado.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindCredentials(v)
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapConfig("config file", err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".kolado")
		// A missing default config file is not an error
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		Kolado: kolado.Config{
			SourceAPIURL:    v.GetString("source_api_url"),
			SourceAPIKey:    v.GetString("source_api_key"),
			TargetAPIURL:    v.GetString("target_api_url"),
			TargetAppKey:    v.GetString("target_app_key"),
			TargetAppSecret: v.GetString("target_app_secret"),
		},

		Workers:        v.GetInt("workers"),
		HTTPTimeout:    v.GetDuration("http_timeout"),
		KeyPrefix:      v.GetString("key_prefix"),
		PushgatewayURL: v.GetString("pushgateway_url"),
		MetricsJob:     v.GetString("metrics_job"),

		EnvLogLevel: v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		LogOutput:   v.GetString("log_output"),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local from the working directory.
// Variables already set in the environment are never overwritten.
func loadEnvFiles() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// bindCredentials binds each credential to its KOLADO_ name first and
// the plain vendor name second.
func bindCredentials(v *viper.Viper) {
	_ = v.BindEnv("source_api_url", "KOLADO_SOURCE_API_URL", "OCTADESK_API_URL")
	_ = v.BindEnv("source_api_key", "KOLADO_SOURCE_API_KEY", "OCTADESK_API_KEY")
	_ = v.BindEnv("target_api_url", "KOLADO_TARGET_API_URL", "OMIE_API_URL")
	_ = v.BindEnv("target_app_key", "KOLADO_TARGET_APP_KEY", "OMIE_APP_KEY")
	_ = v.BindEnv("target_app_secret", "KOLADO_TARGET_APP_SECRET", "OMIE_APP_SECRET")

	_ = v.BindEnv("log_level", "KOLADO_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_format", "KOLADO_LOG_FORMAT", "LOG_FORMAT")
	_ = v.BindEnv("log_output", "KOLADO_LOG_OUTPUT", "LOG_OUTPUT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("key_prefix", constants.DefaultKeyPrefix)
	v.SetDefault("metrics_job", constants.DefaultMetricsJob)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}
