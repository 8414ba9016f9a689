package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORCHID_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Orchid LMS API", cfg.AppName)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 4, cfg.ExtractWorkers)
	require.Equal(t, 30*time.Second, cfg.SimilarityTimeout)
	require.Equal(t, 10*time.Minute, cfg.ExtractCacheTTL)
	require.Equal(t, "orchid:assessment", cfg.EventSubjectBase)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("ORCHID_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ORCHID_JWT_SECRET", "test-secret")
	t.Setenv("ORCHID_APP_PORT", ":9090")
	t.Setenv("ORCHID_SIMILARITY_TIMEOUT", "5s")
	t.Setenv("ORCHID_EXTRACT_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 5*time.Second, cfg.SimilarityTimeout)
	require.Equal(t, 8, cfg.ExtractWorkers)
}
