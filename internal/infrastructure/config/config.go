package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig
	Cache  CacheConfig
	Mqtt   MqttConfig
	Auth   AuthConfig
	Audit  AuditConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int // Port for Prometheus metrics HTTP server
	LogLevel    string
}

// CacheConfig represents decision cache configuration
type CacheConfig struct {
	Enabled    bool
	MaxEntries int // Maximum number of cached decisions (LRU bound)
	TTLMinutes int // Time-to-live for cache entries in minutes
}

// MqttConfig represents MQTT authorization configuration
type MqttConfig struct {
	Strategy  string // "derived" or "rules"
	RulesPath string // ACL rule file, required for the rules strategy
}

// AuthConfig represents token validation configuration
type AuthConfig struct {
	Issuer           string
	Audience         string
	PublicKeyFile    string // PEM file with the RSA verification key
	HMACSecret       string
	SkipVerification bool // dev mode: decode without verifying
}

// AuditConfig represents audit logging configuration
type AuditConfig struct {
	Enabled   bool
	LogInputs bool
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree until we find go.mod
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the root directory
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// InitConfig initializes viper configuration
// env: environment name (dev, test, prod)
func InitConfig(env string) error {
	if env == "" {
		env = "dev"
	}

	// Find project root
	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	// Set config file name based on environment
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(projectRoot) // Project root

	// Read config file (optional, ignore error if not found)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8181)
	viper.SetDefault("METRICS_PORT", 9090)
	viper.SetDefault("LOG_LEVEL", "info")

	// Cache defaults
	viper.SetDefault("CACHE_ENABLED", true)
	viper.SetDefault("CACHE_MAX_ENTRIES", 10000)
	viper.SetDefault("CACHE_TTL_MINUTES", 5)

	// MQTT authorization defaults
	viper.SetDefault("MQTT_STRATEGY", "derived")
	viper.SetDefault("MQTT_RULES_PATH", "")

	// Token validation defaults
	viper.SetDefault("AUTH_ISSUER", "")
	viper.SetDefault("AUTH_AUDIENCE", "")
	viper.SetDefault("AUTH_PUBLIC_KEY_FILE", "")
	viper.SetDefault("AUTH_HMAC_SECRET", "")
	viper.SetDefault("AUTH_SKIP_VERIFICATION", false)

	// Audit defaults
	viper.SetDefault("AUDIT_ENABLED", true)
	viper.SetDefault("AUDIT_LOG_INPUTS", false)

	return nil
}

// Load loads configuration from viper
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("SERVER_HOST"),
			Port:        viper.GetInt("SERVER_PORT"),
			MetricsPort: viper.GetInt("METRICS_PORT"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
		},
		Cache: CacheConfig{
			Enabled:    viper.GetBool("CACHE_ENABLED"),
			MaxEntries: viper.GetInt("CACHE_MAX_ENTRIES"),
			TTLMinutes: viper.GetInt("CACHE_TTL_MINUTES"),
		},
		Mqtt: MqttConfig{
			Strategy:  viper.GetString("MQTT_STRATEGY"),
			RulesPath: viper.GetString("MQTT_RULES_PATH"),
		},
		Auth: AuthConfig{
			Issuer:           viper.GetString("AUTH_ISSUER"),
			Audience:         viper.GetString("AUTH_AUDIENCE"),
			PublicKeyFile:    viper.GetString("AUTH_PUBLIC_KEY_FILE"),
			HMACSecret:       viper.GetString("AUTH_HMAC_SECRET"),
			SkipVerification: viper.GetBool("AUTH_SKIP_VERIFICATION"),
		},
		Audit: AuditConfig{
			Enabled:   viper.GetBool("AUDIT_ENABLED"),
			LogInputs: viper.GetBool("AUDIT_LOG_INPUTS"),
		},
	}

	if config.Mqtt.Strategy != "derived" && config.Mqtt.Strategy != "rules" {
		return nil, fmt.Errorf("MQTT_STRATEGY must be \"derived\" or \"rules\", got %q", config.Mqtt.Strategy)
	}
	if config.Mqtt.Strategy == "rules" && config.Mqtt.RulesPath == "" {
		return nil, fmt.Errorf("MQTT_RULES_PATH is required when MQTT_STRATEGY is \"rules\"")
	}

	return config, nil
}
