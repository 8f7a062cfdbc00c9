package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ai-research-be/pkg/agent"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	Tavily string
	Groq   string
	OpenAI string
}

type AIConfig struct {
	LLMProvider    string // "groq", "openai" or "ollama"
	LLMModel       string // summarizer model
	CriticModel    string
	OllamaBaseURL  string
	OpenAIBaseURL  string // override for OpenAI-compatible gateways
	SearchProvider string // "tavily" or "duckduckgo"
}

// PipelineConfig carries the loop tunables. Agent code takes agent.Config;
// use the Agent() method to convert.
type PipelineConfig struct {
	ResearchCap         int
	SummarizeCap        int
	LoopCeiling         int
	MaxIterations       int
	ReviewAfterLoops    int
	SimilarityThreshold float64
	MinSearchChars      int
	MinContentChars     int
	ContentTruncation   int
	SummarizeRetries    int
}

func (p PipelineConfig) Agent() agent.Config {
	cfg := agent.DefaultConfig()
	cfg.ResearchCap = p.ResearchCap
	cfg.SummarizeCap = p.SummarizeCap
	cfg.LoopCeiling = p.LoopCeiling
	cfg.MaxIterations = p.MaxIterations
	cfg.ReviewAfterLoops = p.ReviewAfterLoops
	cfg.SimilarityThreshold = p.SimilarityThreshold
	cfg.MinSearchChars = p.MinSearchChars
	cfg.MinContentChars = p.MinContentChars
	cfg.ContentTruncation = p.ContentTruncation
	cfg.SummarizeRetries = p.SummarizeRetries
	return cfg
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ResearchAssistant"),
		},
		Keys: APIKeys{
			Tavily: getEnv("TAVILY_API_KEY", ""),
			Groq:   getEnv("GROQ_API_KEY", ""),
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "groq"),
			LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			CriticModel:    getEnv("CRITIC_MODEL", "llama-3.1-8b-instant"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
			SearchProvider: getEnv("SEARCH_PROVIDER", "tavily"),
		},
		Pipeline: PipelineConfig{
			ResearchCap:         getEnvAsInt("RESEARCH_ATTEMPT_CAP", 4),
			SummarizeCap:        getEnvAsInt("SUMMARIZE_ATTEMPT_CAP", 4),
			LoopCeiling:         getEnvAsInt("LOOP_CEILING", 6),
			MaxIterations:       getEnvAsInt("MAX_ITERATIONS", 30),
			ReviewAfterLoops:    getEnvAsInt("REVIEW_AFTER_LOOPS", 1),
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.75),
			MinSearchChars:      getEnvAsInt("MIN_SEARCH_CHARS", 50),
			MinContentChars:     getEnvAsInt("MIN_CONTENT_CHARS", 100),
			ContentTruncation:   getEnvAsInt("CONTENT_TRUNCATION", 2000),
			SummarizeRetries:    getEnvAsInt("SUMMARIZE_RETRIES", 2),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
