package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis (empty disables the roster cache)
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Solver
	SolverTimeout  time.Duration `mapstructure:"SOLVER_TIMEOUT"`
	SolverMaxNodes int           `mapstructure:"SOLVER_MAX_NODES"`

	// Cache
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// Roster defaults, applied when a request carries no configuration
	DefaultBudget           float64 `mapstructure:"DEFAULT_BUDGET"`
	DefaultSubstituteFactor float64 `mapstructure:"DEFAULT_SUBSTITUTE_FACTOR"`
	DefaultMaxPerClub       int     `mapstructure:"DEFAULT_MAX_PER_CLUB"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "rosters.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("SOLVER_TIMEOUT", "30s")
	viper.SetDefault("SOLVER_MAX_NODES", 200000)
	viper.SetDefault("CACHE_TTL", "1h")
	viper.SetDefault("DEFAULT_BUDGET", 100.0)
	viper.SetDefault("DEFAULT_SUBSTITUTE_FACTOR", 0.2)
	viper.SetDefault("DEFAULT_MAX_PER_CLUB", 3)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
