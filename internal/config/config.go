package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	HTTPPort     string
	LogLevel     string

	KnowledgeDir      string
	AuxiliaryFile     string
	KnowledgeCacheTTL time.Duration
	WatchKnowledgeDir bool

	KnowledgeTextMaxChars     int
	ReportTextMaxChars        int
	LiteratureContextMaxChars int

	PrimaryMaxTokens      int
	ContinuationMaxTokens int
	MaxContinuationPasses int

	MaxBodyBytes int64
}

var AppConfig Config

// Defaults returns the configuration used when no environment is set.
func Defaults() Config {
	return Config{
		GeminiModel:               "gemini-2.0-flash",
		HTTPPort:                  "8080",
		LogLevel:                  "INFO",
		KnowledgeDir:              "knowledge",
		AuxiliaryFile:             "assets/ademgasanalyse-drempelbepaling.pdf",
		KnowledgeCacheTTL:         10 * time.Minute,
		WatchKnowledgeDir:         true,
		KnowledgeTextMaxChars:     180000,
		ReportTextMaxChars:        30000,
		LiteratureContextMaxChars: 16000,
		PrimaryMaxTokens:          2048,
		ContinuationMaxTokens:     900,
		MaxContinuationPasses:     3,
		MaxBodyBytes:              15 << 20,
	}
}

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	d := Defaults()
	AppConfig = Config{
		GeminiAPIKey:              getEnv("GEMINI_API_KEY", ""),
		GeminiModel:               getEnv("GEMINI_MODEL", d.GeminiModel),
		HTTPPort:                  getEnv("HTTP_PORT", d.HTTPPort),
		LogLevel:                  getEnv("LOG_LEVEL", d.LogLevel),
		KnowledgeDir:              getEnv("KNOWLEDGE_DIR", d.KnowledgeDir),
		AuxiliaryFile:             getEnv("AUXILIARY_FILE", d.AuxiliaryFile),
		KnowledgeCacheTTL:         time.Duration(getEnvAsInt("KNOWLEDGE_CACHE_TTL_SECONDS", int(d.KnowledgeCacheTTL/time.Second))) * time.Second,
		WatchKnowledgeDir:         getEnvAsBool("WATCH_KNOWLEDGE_DIR", d.WatchKnowledgeDir),
		KnowledgeTextMaxChars:     getEnvAsInt("KNOWLEDGE_TEXT_MAX_CHARS", d.KnowledgeTextMaxChars),
		ReportTextMaxChars:        getEnvAsInt("REPORT_TEXT_MAX_CHARS", d.ReportTextMaxChars),
		LiteratureContextMaxChars: getEnvAsInt("LITERATURE_CONTEXT_MAX_CHARS", d.LiteratureContextMaxChars),
		PrimaryMaxTokens:          getEnvAsInt("PRIMARY_MAX_TOKENS", d.PrimaryMaxTokens),
		ContinuationMaxTokens:     getEnvAsInt("CONTINUATION_MAX_TOKENS", d.ContinuationMaxTokens),
		MaxContinuationPasses:     getEnvAsInt("MAX_CONTINUATION_PASSES", d.MaxContinuationPasses),
		MaxBodyBytes:              int64(getEnvAsInt("MAX_BODY_BYTES", int(d.MaxBodyBytes))),
	}

	if AppConfig.GeminiAPIKey == "" {
		// Requests fail with 500 until the key is configured.
		log.Println("Warning: GEMINI_API_KEY is not set")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
