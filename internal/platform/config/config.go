// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults applied before any file or environment override.
const (
	// DefaultServerPort is the HTTP listen port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the maximum request body size in bytes (1 MiB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultClientRetryMaxAttempts is the number of tries per remote call, the first included.
	DefaultClientRetryMaxAttempts = 3

	// DefaultClientRetryMultiplier grows the wait between retries.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor spreads each wait by up to 25% either way.
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the consecutive failures that open the circuit.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the trial requests admitted while half-open.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns caps idle connections across all hosts.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost caps idle connections to the peer.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB rotates the log file at this size.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the rotated files kept.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays removes rotated files older than this.
	DefaultLogFileMaxAgeDays = 28

	// DefaultAgeMaxBatchSize caps the items accepted by POST /api/v1/ages/batch.
	DefaultAgeMaxBatchSize = 100

	// DefaultAgeBatchConcurrency is the number of batch items computed at once.
	DefaultAgeBatchConcurrency = 8

	// DefaultRateLimitRequestsPerSecond is the sustained rate per client IP.
	DefaultRateLimitRequestsPerSecond = 50.0

	// DefaultRateLimitBurst is the requests a client IP may make back to back.
	DefaultRateLimitBurst = 100
)

// DefaultDir is where Load looks for base.yaml and {profile}.yaml.
const DefaultDir = "configs"

// envPrefix marks environment variables that override configuration.
const envPrefix = "APP_"

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"`
	Age       AgeConfig       `koanf:"age"       validate:"required"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`

	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For
	// and X-Real-IP. Empty trusts none.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"omitempty,dive,cidr|ip"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	JWKSEndpoint  string `koanf:"jwks_endpoint"  validate:"required_if=Enabled true,omitempty,url"`
	Issuer        string `koanf:"issuer"         validate:"required_if=Enabled true"`
	Audience      string `koanf:"audience"       validate:"required_if=Enabled true"`
	ClaimsHeader  string `koanf:"claims_header"`
	RolesHeader   string `koanf:"roles_header"`
	ScopesHeader  string `koanf:"scopes_header"`
	SubjectHeader string `koanf:"subject_header"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	AgeCalculator ServiceEndpointConfig `koanf:"age_calculator"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
type ServiceEndpointConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	Name    string `koanf:"name"     validate:"required_if=Enabled true"`
}

// AgeConfig contains age calculation settings.
type AgeConfig struct {
	// StrictValidation turns on Gregorian calendar checks for every request.
	// Requests may still opt in individually when this is false.
	StrictValidation bool `koanf:"strict_validation"`
	MaxBatchSize     int  `koanf:"max_batch_size"    validate:"required,min=1,max=10000"`
	BatchConcurrency int  `koanf:"batch_concurrency" validate:"required,min=1,max=256"`
}

// RateLimitConfig contains per-client request rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool          `koanf:"enabled"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"required_if=Enabled true,omitempty,gt=0"`
	Burst             int           `koanf:"burst"               validate:"required_if=Enabled true,omitempty,min=1"`
	IdleTTL           time.Duration `koanf:"idle_ttl"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "age-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "age-service",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        false,
		"auth.jwks_endpoint":  "",
		"auth.issuer":         "",
		"auth.audience":       "",
		"auth.claims_header":  "X-User-Claims",
		"auth.roles_header":   "X-User-Roles",
		"auth.scopes_header":  "X-User-Scopes",
		"auth.subject_header": "X-User-ID",

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.age_calculator.enabled":  false,
		"services.age_calculator.base_url": "",
		"services.age_calculator.name":     "age-calculator",

		"age.strict_validation": false,
		"age.max_batch_size":    DefaultAgeMaxBatchSize,
		"age.batch_concurrency": DefaultAgeBatchConcurrency,

		"rate_limit.enabled":             false,
		"rate_limit.requests_per_second": DefaultRateLimitRequestsPerSecond,
		"rate_limit.burst":               DefaultRateLimitBurst,
		"rate_limit.idle_ttl":            "10m",
	}
}

// Load reads configuration from DefaultDir. See LoadFrom.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultDir, profile)
}

// LoadFrom layers configuration sources, later ones winning:
//
//  1. built-in defaults
//  2. {dir}/base.yaml
//  3. {dir}/{profile}.yaml, when profile is set
//  4. APP_ environment variables, see envKey
//
// Missing files are skipped. The result is not validated.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_LOG_LEVEL to log.level. Keys whose names contain an
// underscore use "__" between levels: APP_SERVER__READ_TIMEOUT is
// server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if strings.Contains(key, "__") {
		return strings.ReplaceAll(key, "__", ".")
	}

	return strings.ReplaceAll(key, "_", ".")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
