package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Auth      AuthSettings      `mapstructure:"auth"`
	CORS      CORSSettings      `mapstructure:"cors"`
	Policy    PolicySettings    `mapstructure:"policy"`
	Sweeper   SweeperSettings   `mapstructure:"sweeper"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the Redis connection and cache key namespaces.
type RedisSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              int           `mapstructure:"db"`
	Password        string        `mapstructure:"password"`
	TLSEnabled      bool          `mapstructure:"tls_enabled"`
	SanctionPrefix  string        `mapstructure:"sanction_prefix"`
	SanctionTTL     time.Duration `mapstructure:"sanction_ttl"`
	GlossaryPrefix  string        `mapstructure:"glossary_prefix"`
	GlossaryTTL     time.Duration `mapstructure:"glossary_ttl"`
	RateLimitPrefix string        `mapstructure:"rate_limit_prefix"`
}

// KafkaSettings configures the moderation event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AuthSettings configures admin token verification.
type AuthSettings struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	AdminRole string `mapstructure:"admin_role"`
}

// CORSSettings controls browser access from the admin dashboard.
type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PolicySettings holds the escalation thresholds applied by the evaluator.
type PolicySettings struct {
	StrikeLimit        int           `mapstructure:"strike_limit"`
	SuspensionLimit    int           `mapstructure:"suspension_limit"`
	SuspensionDuration time.Duration `mapstructure:"suspension_duration"`
}

// SweeperSettings configures the suspension expiry job.
type SweeperSettings struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

// RateLimitSettings configures rate limiting windows and max attempts per endpoint group.
type RateLimitSettings struct {
	WindowDuration    time.Duration `mapstructure:"window_duration"`
	ActionMaxAttempts int           `mapstructure:"action_max_attempts"`
	ReadMaxAttempts   int           `mapstructure:"read_max_attempts"`
}

type TelemetrySettings struct {
	MetricsNamespace string `mapstructure:"metrics_namespace"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("MOD")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.sanction_prefix",
		"redis.sanction_ttl",
		"redis.glossary_prefix",
		"redis.glossary_ttl",
		"redis.rate_limit_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"auth.jwt_secret",
		"auth.issuer",
		"auth.admin_role",
		"cors.allowed_origins",
		"policy.strike_limit",
		"policy.suspension_limit",
		"policy.suspension_duration",
		"sweeper.enabled",
		"sweeper.interval",
		"sweeper.batch_size",
		"rate_limit.window_duration",
		"rate_limit.action_max_attempts",
		"rate_limit.read_max_attempts",
		"telemetry.metrics_namespace",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "moderation-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "moderation")
	v.SetDefault("postgres.password", "moderation_password")
	v.SetDefault("postgres.database", "moderation")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.sanction_prefix", "moderation:sanction")
	v.SetDefault("redis.sanction_ttl", "5m")
	v.SetDefault("redis.glossary_prefix", "moderation:glossary")
	v.SetDefault("redis.glossary_ttl", "1h")
	v.SetDefault("redis.rate_limit_prefix", "moderation:rate-limit")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "moderation")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "lexaid-admin")
	v.SetDefault("auth.admin_role", "moderator")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Escalation thresholds: 3 strikes per suspension, permanent ban on the
	// third suspension, 7-day windows.
	v.SetDefault("policy.strike_limit", 3)
	v.SetDefault("policy.suspension_limit", 3)
	v.SetDefault("policy.suspension_duration", "168h")

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval", "5m")
	v.SetDefault("sweeper.batch_size", 100)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.action_max_attempts", 30)
	v.SetDefault("rate_limit.read_max_attempts", 120)

	v.SetDefault("telemetry.metrics_namespace", "moderation")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "MOD_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
