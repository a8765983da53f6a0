package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Ai       AIConfig
	Guidance GuidanceConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type AIConfig struct {
	LLMProvider    string // "ollama", "gemini"
	LLMModel       string // e.g. "llama3", "gemini-2.0-flash"
	OllamaBaseURL  string
	GeminiAPIKey   string
	RetrievalURL   string // external retrieval backend base URL
	TurnEventTopic string
}

type GuidanceConfig struct {
	SessionTTL        time.Duration // inactivity timeout per session
	SweepInterval     time.Duration // background eviction sweep
	MaxTurns          int           // retained turns per session
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
	CitationSeed      int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			RetrievalURL:   getEnv("RETRIEVAL_BASE_URL", "http://localhost:8001"),
			TurnEventTopic: getEnv("TURN_EVENT_TOPIC_NAME", "GUIDANCE_TURN_SYNTHESIZED"),
		},
		Guidance: GuidanceConfig{
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 60*time.Minute),
			SweepInterval:     getEnvAsDuration("SESSION_SWEEP_INTERVAL", 30*time.Minute),
			MaxTurns:          getEnvAsInt("SESSION_MAX_TURNS", 50),
			RetrievalTimeout:  getEnvAsDuration("RETRIEVAL_TIMEOUT", 30*time.Second),
			GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 60*time.Second),
			CitationSeed:      int64(getEnvAsInt("CITATION_SEED", 0)),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
