package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds" validate:"min=0"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds" validate:"min=0"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds" validate:"min=0"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the storage backend. Driver "sqlite" uses Path,
// driver "postgres" uses the network fields.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	Path            string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Host            string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name" validate:"required_if=Driver postgres"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

// NATSConfig is optional; an empty URL disables course events.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// KafkaConfig is optional; no brokers disables the Kafka publisher.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic" validate:"required_with=Brokers"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "courses.db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("nats.subject", "courses")
	v.SetDefault("kafka.topic", "course-events")
	v.SetDefault("telemetry.endpoint", "localhost:4317")
}

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // Kubernetes mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // IDE from cmd/

	// Config file is optional - defaults and ENV cover a local run
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		fmt.Printf("No config file found (will use defaults and ENV variables): %v\n", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Environment variables take precedence over the config file
	v.AutomaticEnv()

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("nats.url", "NATS_URL")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
