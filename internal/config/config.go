package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Location   LocationConfig   `yaml:"location" mapstructure:"location"`
	FIPS       FIPSConfig       `yaml:"fips" mapstructure:"fips"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Map        MapConfig        `yaml:"map" mapstructure:"map"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LocationConfig configures the AWS Location Service place index.
type LocationConfig struct {
	Region          string   `yaml:"region" mapstructure:"region"`
	IndexName       string   `yaml:"index_name" mapstructure:"index_name"`
	FilterCountries []string `yaml:"filter_countries" mapstructure:"filter_countries"`
	RateLimit       float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs     int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FIPSConfig locates the state and county reference datasets.
type FIPSConfig struct {
	StateFile       string `yaml:"state_file" mapstructure:"state_file"`
	CountyFile      string `yaml:"county_file" mapstructure:"county_file"`
	StateSourceURL  string `yaml:"state_source_url" mapstructure:"state_source_url"`
	CountySourceURL string `yaml:"county_source_url" mapstructure:"county_source_url"`
}

// CacheConfig configures the optional geocode result cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "none", "redis", "postgres"
	RedisURL    string `yaml:"redis_url" mapstructure:"redis_url"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	TTLHours    int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ResilienceConfig configures retries and the circuit breaker around upstream calls.
type ResilienceConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// MapConfig is handed to the browser so it can render the map pin.
type MapConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	Region         string `yaml:"region" mapstructure:"region"`
	IdentityPoolID string `yaml:"identity_pool_id" mapstructure:"identity_pool_id"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FIPSGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("location.region", "us-west-2")
	v.SetDefault("location.index_name", "GeoAddressIndex")
	v.SetDefault("location.filter_countries", []string{"USA", "CAN"})
	v.SetDefault("location.rate_limit", 20)
	v.SetDefault("location.timeout_secs", 10)
	v.SetDefault("fips.state_file", "data/us-state-fips.json")
	v.SetDefault("fips.county_file", "data/us-county-fips.json")
	v.SetDefault("fips.state_source_url", "https://www2.census.gov/geo/docs/reference/codes2020/national_state2020.txt")
	v.SetDefault("fips.county_source_url", "https://www2.census.gov/geo/docs/reference/codes2020/national_county2020.txt")
	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.table", "public.geocode_cache")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("resilience.max_attempts", 3)
	v.SetDefault("resilience.initial_backoff_ms", 200)
	v.SetDefault("resilience.max_backoff_ms", 5000)
	v.SetDefault("resilience.multiplier", 2.0)
	v.SetDefault("resilience.jitter_fraction", 0.25)
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 30)
	v.SetDefault("map.name", "GeoMap")
	v.SetDefault("map.region", "us-west-2")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by the given mode ("serve", "geocode", "fips").
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.FIPS.StateFile == "" {
		problems = append(problems, "fips.state_file is required")
	}
	if c.FIPS.CountyFile == "" {
		problems = append(problems, "fips.county_file is required")
	}

	switch mode {
	case "fips":
	case "geocode", "serve":
		if c.Location.IndexName == "" {
			problems = append(problems, "location.index_name is required")
		}
		if c.Location.Region == "" {
			problems = append(problems, "location.region is required")
		}
		switch c.Cache.Driver {
		case "", "none":
		case "redis":
			if c.Cache.RedisURL == "" {
				problems = append(problems, "cache.redis_url is required for the redis cache")
			}
		case "postgres":
			if c.Cache.DatabaseURL == "" {
				problems = append(problems, "cache.database_url is required for the postgres cache")
			}
		default:
			problems = append(problems, "cache.driver must be one of none, redis, postgres")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
