package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("FAMILYDIR_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MAGIC_LINK_TTL", "")
	t.Setenv("AUTH_RATE_LIMIT", "")
	t.Setenv("DISABLE_RATE_LIMITING", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 10, cfg.Limits.AuthLimit)
	assert.False(t, cfg.Limits.Disabled)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FAMILYDIR_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MAGIC_LINK_TTL", "5m")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
}
