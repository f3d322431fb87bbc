package config

import (
	"os"
	"strconv"
	"time"

	pstrings "zkvault/pkg/platform/strings"
)

// Storage backends selectable with ZKVAULT_STORE.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Server       Server
	Store        string
	Redis        RedisConfig
	Postgres     PostgresConfig
	Kafka        KafkaConfig
	Audit        AuditConfig
	Broker       BrokerConfig
	Registration RegistrationConfig
	Vault        VaultConfig
	SettingsFile string
	ProverWasm   string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// RedisConfig configures the Redis client used by durable stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the permission store database.
type PostgresConfig struct {
	DSN      string
	MaxConns int
}

// KafkaConfig configures the audit sink. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// AuditConfig bounds the audit trail kept in memory.
type AuditConfig struct {
	Retain int
}

// BrokerConfig bounds how long interactive surfaces may hold a request.
type BrokerConfig struct {
	SurfaceTimeout time.Duration
	ReapInterval   time.Duration
}

// RegistrationConfig configures delivery to relying-party backends.
type RegistrationConfig struct {
	Timeout        time.Duration
	MaxRetries     uint64
	AllowHTTPHosts []string
}

// VaultConfig supplies the fingerprint inputs the host cannot discover itself.
type VaultConfig struct {
	UserAgent string
	Locale    string
	Screen    string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("ZKVAULT_ADDR", "127.0.0.1:7480"),
			ShutdownTimeout: getDuration("ZKVAULT_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: getEnv("ZKVAULT_STORE", BackendMemory),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:      os.Getenv("DATABASE_URL"),
			MaxConns: getInt("DATABASE_MAX_CONNS", 4),
		},
		Kafka: KafkaConfig{
			Brokers:    getList("KAFKA_BROKERS"),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "zkvault.audit"),
		},
		Audit: AuditConfig{
			Retain: getInt("AUDIT_RETAIN_EVENTS", 1000),
		},
		Broker: BrokerConfig{
			SurfaceTimeout: getDuration("SURFACE_TIMEOUT", 5*time.Minute),
			ReapInterval:   getDuration("SURFACE_REAP_INTERVAL", 5*time.Second),
		},
		Registration: RegistrationConfig{
			Timeout:        getDuration("REGISTRATION_TIMEOUT", 15*time.Second),
			MaxRetries:     uint64(getInt("REGISTRATION_MAX_RETRIES", 2)),
			AllowHTTPHosts: pstrings.DedupeHosts(append([]string{"localhost", "127.0.0.1", "::1"}, getList("REGISTRATION_ALLOW_HTTP_HOSTS")...)),
		},
		Vault: VaultConfig{
			UserAgent: os.Getenv("ZKVAULT_USER_AGENT"),
			Locale:    getEnv("ZKVAULT_LOCALE", os.Getenv("LANG")),
			Screen:    os.Getenv("ZKVAULT_SCREEN"),
		},
		SettingsFile: os.Getenv("ZKVAULT_SETTINGS_FILE"),
		ProverWasm:   os.Getenv("ZKVAULT_PROVER_WASM"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string) []string {
	return pstrings.SplitList(os.Getenv(key))
}
