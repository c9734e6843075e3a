package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MatchingDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "keyword", cfg.Matching.Strategy)
	assert.Equal(t, 0.5, cfg.Matching.SemanticThreshold)
	assert.Equal(t, 7, cfg.Matching.DefaultFacilityLimit)
	assert.Equal(t, 5, cfg.Matching.DefaultProviderLimit)
	assert.Equal(t, 20, cfg.Matching.MaxResultLimit)
	assert.True(t, cfg.Matching.SkipRankingOnEmergency)
	assert.Equal(t, "America/Los_Angeles", cfg.Matching.HoursTimezone)
	assert.Equal(t, "file", cfg.Corpus.Source)
	assert.False(t, cfg.Corpus.UpdateEvents)
}

func TestLoad_MatchingOverrides(t *testing.T) {
	t.Setenv("MATCH_STRATEGY", "Hybrid")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEMANTIC_THRESHOLD", "0.62")
	t.Setenv("SKIP_RANKING_ON_EMERGENCY", "false")
	t.Setenv("MAX_RESULT_LIMIT", "10")
	t.Setenv("CORPUS_REFRESH_INTERVAL", "15m")
	t.Setenv("CORPUS_UPDATE_EVENTS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hybrid", cfg.Matching.Strategy)
	assert.Equal(t, 0.62, cfg.Matching.SemanticThreshold)
	assert.False(t, cfg.Matching.SkipRankingOnEmergency)
	assert.Equal(t, 10, cfg.Matching.MaxResultLimit)
	assert.Equal(t, 15*time.Minute, cfg.Corpus.RefreshInterval)
	assert.True(t, cfg.Corpus.UpdateEvents)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_RejectsUnknownStrategy(t *testing.T) {
	t.Setenv("MATCH_STRATEGY", "fuzzy")

	_, err := Load()
	assert.ErrorContains(t, err, "MATCH_STRATEGY")
}

func TestLoad_SemanticNeedsAPIKey(t *testing.T) {
	t.Setenv("MATCH_STRATEGY", "semantic")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("HOURS_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.ErrorContains(t, err, "HOURS_TIMEZONE")
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "cf", Password: "pw", Database: "carefinder", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=cf password=pw dbname=carefinder sslmode=require", db.DatabaseDSN())
}
