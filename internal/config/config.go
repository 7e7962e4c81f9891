package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Events    EventsConfig    `mapstructure:"events"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the key-value backend. "redis" and "postgres" are
// durable; "memory" is the degraded fallback and is not durable across
// process restarts.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "redis", "postgres" or "memory"
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// ScoringConfig holds the risk classification cut points and the
// correlation weights applied when a property record is re-scored.
// Defaults match the canonical five-bucket scheme.
type ScoringConfig struct {
	Thresholds  RiskThresholds     `mapstructure:"thresholds"`
	Correlation CorrelationWeights `mapstructure:"correlation"`
}

// RiskThresholds are the lower bounds of the critical/high/medium/low
// buckets; anything below Low classifies as safe.
type RiskThresholds struct {
	Critical int `mapstructure:"critical"`
	High     int `mapstructure:"high"`
	Medium   int `mapstructure:"medium"`
	Low      int `mapstructure:"low"`
}

// CorrelationWeights are the score components folded into a property
// record from its listings and scam reports. FlagUnit scores each
// accumulated flag up to FlagCap and ReportUnit scores each report up
// to ReportCap. ManyListingsBonus applies above 3 listings and
// MoreListingsBonus above 5; PlatformBonus applies at 3 or more
// distinct platforms. PriceVarianceBonus applies when active listing
// prices spread more than PriceVariancePct percent of the cheapest.
// FlagStatusThreshold is the score at which a property is flagged.
type CorrelationWeights struct {
	FlagUnit            int     `mapstructure:"flag_unit"`
	FlagCap             int     `mapstructure:"flag_cap"`
	VerifiedScamBonus   int     `mapstructure:"verified_scam_bonus"`
	ManyListingsBonus   int     `mapstructure:"many_listings_bonus"`
	MoreListingsBonus   int     `mapstructure:"more_listings_bonus"`
	PlatformBonus       int     `mapstructure:"platform_bonus"`
	PriceVarianceBonus  int     `mapstructure:"price_variance_bonus"`
	PriceVariancePct    float64 `mapstructure:"price_variance_pct"`
	ReportUnit          int     `mapstructure:"report_unit"`
	ReportCap           int     `mapstructure:"report_cap"`
	FlagStatusThreshold int     `mapstructure:"flag_status_threshold"`
}

type EventsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error; defaults plus environment
// variables are enough to run.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/propradar")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("PROPRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("store.backend", "PROPRADAR_STORE_BACKEND")
	v.BindEnv("redis.host", "PROPRADAR_REDIS_HOST")
	v.BindEnv("redis.port", "PROPRADAR_REDIS_PORT")
	v.BindEnv("redis.password", "PROPRADAR_REDIS_PASSWORD")
	v.BindEnv("database.host", "PROPRADAR_DATABASE_HOST")
	v.BindEnv("database.port", "PROPRADAR_DATABASE_PORT")
	v.BindEnv("database.user", "PROPRADAR_DATABASE_USER")
	v.BindEnv("database.password", "PROPRADAR_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "PROPRADAR_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "PROPRADAR_DATABASE_SSLMODE")
	v.BindEnv("events.enabled", "PROPRADAR_EVENTS_ENABLED")
	v.BindEnv("events.url", "PROPRADAR_EVENTS_URL")
	v.BindEnv("app.environment", "PROPRADAR_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "propradar")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.backend", "redis")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "propradar:")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "propradar")
	v.SetDefault("database.dbname", "propradar")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Content-Type", "X-API-Key"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("scoring.thresholds.critical", 70)
	v.SetDefault("scoring.thresholds.high", 50)
	v.SetDefault("scoring.thresholds.medium", 30)
	v.SetDefault("scoring.thresholds.low", 10)

	v.SetDefault("scoring.correlation.flag_unit", 10)
	v.SetDefault("scoring.correlation.flag_cap", 5)
	v.SetDefault("scoring.correlation.verified_scam_bonus", 50)
	v.SetDefault("scoring.correlation.many_listings_bonus", 10)
	v.SetDefault("scoring.correlation.more_listings_bonus", 10)
	v.SetDefault("scoring.correlation.platform_bonus", 15)
	v.SetDefault("scoring.correlation.price_variance_bonus", 20)
	v.SetDefault("scoring.correlation.price_variance_pct", 40.0)
	v.SetDefault("scoring.correlation.report_unit", 10)
	v.SetDefault("scoring.correlation.report_cap", 3)
	v.SetDefault("scoring.correlation.flag_status_threshold", 50)

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.url", "nats://localhost:4222")
	v.SetDefault("events.subject_prefix", "propradar")
}
