package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "MEMORY_SEED_FILE", "SNAPSHOT_CACHE_TTL", "EVENTS_ENABLED", "SUBMISSION_TOPIC"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Empty(t, cfg.MemorySeedFile)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotCacheTTL)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "survey-submissions", cfg.Events.SubmissionTopic)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MEMORY_SEED_FILE", "testdata/forms.json")
	t.Setenv("SNAPSHOT_CACHE_TTL", "30s")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "testdata/forms.json", cfg.MemorySeedFile)
	assert.Equal(t, 30*time.Second, cfg.SnapshotCacheTTL)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SNAPSHOT_CACHE_TTL", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("SNAPSHOT_CACHE_TTL", "1m")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("MEMORY_SEED_FILE", "forms.json")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestCreateEventPublisher_FallsBackToMock(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, cfg := range []EventConfig{
		{Enabled: false, Publisher: "kafka"},
		{Enabled: true, Publisher: "mock"},
		{Enabled: true, Publisher: "carrier-pigeon"},
	} {
		publisher, err := cfg.CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, publisher)
	}
}
