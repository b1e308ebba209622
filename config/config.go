package config

import (
	"log"

	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	Scheme          string `mapstructure:"scheme"`
	BaseURL         string `mapstructure:"base_url"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxSizeMB   int  `mapstructure:"max_size_mb"`
	TTLSeconds  int  `mapstructure:"ttl_seconds"`
	CounterSize int  `mapstructure:"counter_size"`
}

// FlagsConfig assigns the bit value of each document flag. The assignments
// live in configuration so deployments stay compatible with bitmasks written
// by earlier versions of the service.
type FlagsConfig struct {
	Deprecated int64 `mapstructure:"deprecated"`
	Passphrase int64 `mapstructure:"passphrase"`
	Login      int64 `mapstructure:"login"`
	Frame      int64 `mapstructure:"frame"`
}

type AuthConfig struct {
	APIToken string `mapstructure:"api_token"`
}

// GeoConfig configures the optional geolocation enrichment of access logs.
type GeoConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
	Header   string `mapstructure:"header"`
}

type Config struct {
	WebServer       WebServerConfig `mapstructure:"webserver"`
	Redis           RedisConfig     `mapstructure:"redis"`
	Cache           CacheConfig     `mapstructure:"cache"`
	RateLimit       RateLimitConfig `mapstructure:"ratelimit"`
	Flags           FlagsConfig     `mapstructure:"flags"`
	Auth            AuthConfig      `mapstructure:"auth"`
	Geo             GeoConfig       `mapstructure:"geo"`
	DefaultRedirect string          `mapstructure:"default_redirect"`
}

func LoadConfig() (Config, error) {
	var config Config

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Enable environment variable overrides
	viper.SetEnvPrefix("SHORTURL")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Error reading config file: %v", err)
		return config, err
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

func setDefaults() {
	// WebServer defaults
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.ip", "127.0.0.1")
	viper.SetDefault("webserver.scheme", "http")
	viper.SetDefault("webserver.base_url", "")
	viper.SetDefault("webserver.read_timeout", 15)
	viper.SetDefault("webserver.write_timeout", 15)
	viper.SetDefault("webserver.shutdown_timeout", 30)

	// Redis defaults
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 5)
	viper.SetDefault("redis.operation_timeout", 5)

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size_mb", 100)
	viper.SetDefault("cache.ttl_seconds", 300)
	viper.SetDefault("cache.counter_size", 1000000)

	// RateLimit defaults
	viper.SetDefault("ratelimit.requests_per_second", 10.0)
	viper.SetDefault("ratelimit.burst", 20)

	// Flag bit defaults. Changing these on a live deployment reassigns the
	// meaning of every stored bitmask.
	viper.SetDefault("flags.deprecated", 1)
	viper.SetDefault("flags.passphrase", 2)
	viper.SetDefault("flags.login", 4)
	viper.SetDefault("flags.frame", 8)

	// Auth defaults (empty token disables the management API)
	viper.SetDefault("auth.api_token", "")

	// Geolocation defaults (best-effort enrichment, off unless configured)
	viper.SetDefault("geo.enabled", false)
	viper.SetDefault("geo.endpoint", "")
	viper.SetDefault("geo.token", "")
	viper.SetDefault("geo.header", "x-rapidapi-key")

	viper.SetDefault("default_redirect", "https://www.haslien.no")
}
