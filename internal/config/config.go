// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API (board live routes and webhook) listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address the gRPC health service listens on (e.g. :9090). Empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty runs the server on the in-memory session registry (development only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPublicKey is the PEM-encoded public key or path to file used to validate actor access tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTPrivateKey is the PEM-encoded private key or path to file; only cmd/seed needs it to mint dev tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTIssuer is the iss claim expected on access tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim expected on access tokens.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the lifetime of access tokens minted by cmd/seed (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// LiveKitURL is the control plane base URL used for room service calls (e.g. http://localhost:7880).
	LiveKitURL string `mapstructure:"LIVEKIT_URL"`
	// LiveKitPublicURL is the websocket URL handed to clients with their credential. Defaults to LiveKitURL.
	LiveKitPublicURL string `mapstructure:"LIVEKIT_PUBLIC_URL"`
	// LiveKitAPIKey and LiveKitAPISecret sign room credentials and verify webhooks. Set both or neither.
	LiveKitAPIKey    string `mapstructure:"LIVEKIT_API_KEY"`
	LiveKitAPISecret string `mapstructure:"LIVEKIT_API_SECRET"`
	// LiveKitTokenTTL is the room credential lifetime (e.g. "6h").
	LiveKitTokenTTL string `mapstructure:"LIVEKIT_TOKEN_TTL"`
	// LiveKitCallTimeout bounds a single control plane call (e.g. "5s").
	LiveKitCallTimeout string `mapstructure:"LIVEKIT_CALL_TIMEOUT"`
	// LiveKitCallsPerSecond paces outbound control plane calls. 0 disables pacing.
	LiveKitCallsPerSecond int `mapstructure:"LIVEKIT_CALLS_PER_SECOND"`

	// BroadcastTimezone is the IANA zone used to decide "same calendar day" for the open window.
	BroadcastTimezone string `mapstructure:"BROADCAST_TIMEZONE"`
	// EnforceAudienceLimit turns on the Rego admission check against the board's max audience on join.
	EnforceAudienceLimit bool `mapstructure:"ENFORCE_AUDIENCE_LIMIT"`
	// AdmissionPolicyFile optionally replaces the embedded admission Rego policy.
	AdmissionPolicyFile string `mapstructure:"ADMISSION_POLICY_FILE"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is "console" for human output or "json".
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint. Empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. Empty disables lifecycle events to Kafka.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// LiveEventsTopic is the Kafka topic for live lifecycle events.
	LiveEventsTopic string `mapstructure:"LIVE_EVENTS_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the worker pushes lifecycle events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_ISSUER", "teatime-auth")
	v.SetDefault("JWT_AUDIENCE", "teatime-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("LIVEKIT_URL", "http://localhost:7880")
	v.SetDefault("LIVEKIT_PUBLIC_URL", "")
	v.SetDefault("LIVEKIT_API_KEY", "")
	v.SetDefault("LIVEKIT_API_SECRET", "")
	v.SetDefault("LIVEKIT_TOKEN_TTL", "6h")
	v.SetDefault("LIVEKIT_CALL_TIMEOUT", "5s")
	v.SetDefault("LIVEKIT_CALLS_PER_SECOND", 10)
	v.SetDefault("BROADCAST_TIMEZONE", "UTC")
	v.SetDefault("ENFORCE_AUDIENCE_LIMIT", false)
	v.SetDefault("ADMISSION_POLICY_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LIVE_EVENTS_KAFKA_TOPIC", "teatime-live-events")
	v.SetDefault("KAFKA_GROUP_ID", "teatime-live-worker")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if (cfg.LiveKitAPIKey == "") != (cfg.LiveKitAPISecret == "") {
		return nil, errors.New("config: LIVEKIT_API_KEY and LIVEKIT_API_SECRET must be set together")
	}
	if _, err := time.LoadLocation(cfg.BroadcastTimezone); err != nil {
		return nil, errors.New("config: BROADCAST_TIMEZONE is not a valid IANA time zone")
	}
	if cfg.LiveKitCallsPerSecond < 0 {
		return nil, errors.New("config: LIVEKIT_CALLS_PER_SECOND must not be negative")
	}
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// TokenTTL parses LiveKitTokenTTL. Returns 6h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.LiveKitTokenTTL, 6*time.Hour)
}

// CallTimeout parses LiveKitCallTimeout. Returns 5s if unset or invalid.
func (c *Config) CallTimeout() time.Duration {
	return parseDuration(c.LiveKitCallTimeout, 5*time.Second)
}

// Location returns the broadcast time zone. Load already validated it; UTC is the fallback.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BroadcastTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PublicLiveKitURL is the URL clients connect to with their room credential.
func (c *Config) PublicLiveKitURL() string {
	if c.LiveKitPublicURL != "" {
		return c.LiveKitPublicURL
	}
	return c.LiveKitURL
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
