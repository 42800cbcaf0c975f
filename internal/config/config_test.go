package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "courses.db", cfg.Database.Path)
	assert.Equal(t, "courses", cfg.NATS.Subject)
	assert.Empty(t, cfg.NATS.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "course-events", cfg.Kafka.Topic)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := load(newViper(t, `
env: dev
server:
  port: "9090"
  cors_origins: ["http://a.example", "http://b.example"]
database:
  driver: postgres
  host: db.internal
  name: courses
  max_open_conns: 7
`))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("SERVER_PORT", "6000")

	cfg, err := load(newViper(t, `
server:
  port: "9090"
database:
  path: from-file.db
`))
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.Server.Port)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
}

func TestLoad_KafkaBrokersFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := load(newViper(t, "database:\n  driver: oracle\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("PostgresWithoutHost", func(t *testing.T) {
		_, err := load(newViper(t, "database:\n  driver: postgres\n  name: courses\n"))
		require.Error(t, err)
	})

	t.Run("KafkaWithoutTopic", func(t *testing.T) {
		_, err := load(newViper(t, "kafka:\n  brokers: [\"kafka:9092\"]\n  topic: \"\"\n"))
		require.Error(t, err)
	})

	t.Run("NonNumericPort", func(t *testing.T) {
		_, err := load(newViper(t, "server:\n  port: http\n"))
		require.Error(t, err)
	})
}
