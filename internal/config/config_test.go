package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "data", cfg.Data.Directory)
	assert.Equal(t, 0.5, cfg.Categorization.SimilarityThreshold)
	assert.Equal(t, 0.4, cfg.Categorization.ContextThreshold)
	assert.Equal(t, 0.8, cfg.Categorization.ConfidenceThreshold)
	assert.Equal(t, 15, cfg.Categorization.MinSubstringKeyLen)
	assert.Equal(t, 2, cfg.Categorization.BulkImportMinCount)
	assert.Equal(t, "text-embedding-004", cfg.Embedding.Model)
	assert.Equal(t, "CHF", cfg.Currencies.ZKB)
	assert.Equal(t, "EUR", cfg.Currencies.Revolut)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	t.Setenv("BANKCSV_LOG_LEVEL", "debug")
	t.Setenv("BANKCSV_CATEGORIZATION_MIN_SUBSTRING_KEY_LEN", "20")

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Categorization.MinSubstringKeyLen)
}

func TestInitializeConfigAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Embedding.APIKey)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_TEST_VARIABLE", "value")
	assert.Equal(t, "value", GetEnv("SOME_TEST_VARIABLE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("UNSET_TEST_VARIABLE", "fallback"))
}
