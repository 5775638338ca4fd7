package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MAX_CONTINUATION_PASSES", "")
	t.Setenv("PRIMARY_MAX_TOKENS", "not-a-number")

	LoadConfig()

	d := Defaults()
	assert.Equal(t, "", AppConfig.GeminiAPIKey)
	assert.Equal(t, d.MaxContinuationPasses, AppConfig.MaxContinuationPasses)
	assert.Equal(t, d.PrimaryMaxTokens, AppConfig.PrimaryMaxTokens)
	assert.Equal(t, 10*time.Minute, AppConfig.KnowledgeCacheTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("KNOWLEDGE_DIR", "/data/knowledge")
	t.Setenv("LITERATURE_CONTEXT_MAX_CHARS", "9000")
	t.Setenv("MAX_CONTINUATION_PASSES", "1")
	t.Setenv("KNOWLEDGE_CACHE_TTL_SECONDS", "30")
	t.Setenv("WATCH_KNOWLEDGE_DIR", "false")

	LoadConfig()

	assert.Equal(t, "secret", AppConfig.GeminiAPIKey)
	assert.Equal(t, "gemini-test", AppConfig.GeminiModel)
	assert.Equal(t, "/data/knowledge", AppConfig.KnowledgeDir)
	assert.Equal(t, 9000, AppConfig.LiteratureContextMaxChars)
	assert.Equal(t, 1, AppConfig.MaxContinuationPasses)
	assert.Equal(t, 30*time.Second, AppConfig.KnowledgeCacheTTL)
	assert.False(t, AppConfig.WatchKnowledgeDir)
}
