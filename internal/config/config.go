package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Vector index persistence
	IndexDir          string `envconfig:"INDEX_DIR" default:"./data/index"`
	ChunkMaxChars     int    `envconfig:"CHUNK_MAX_CHARS" default:"1000"`
	ChunkOverlap      int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	RetrievalK        int    `envconfig:"RETRIEVAL_K" default:"3"`
	StrictOwnerFilter bool   `envconfig:"STRICT_OWNER_FILTER" default:"false"`

	// Scoring and routing thresholds
	IntentThreshold float64 `envconfig:"INTENT_THRESHOLD" default:"0.6"`
	MinValueScore   float64 `envconfig:"MIN_VALUE_SCORE" default:"0.3"`

	// LLM providers: Groq for chat completions, OpenAI for embeddings
	GroqAPIKey   string `envconfig:"GROQ_API_KEY"`
	GroqBaseURL  string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Web search
	SearxNGURL string `envconfig:"SEARXNG_URL"`

	// Optional off-host snapshot backup
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"orbia-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Bootstrap: create initial user and API key on startup
	InitUserName string `envconfig:"INIT_USER_NAME"`
	InitAPIKey   string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ORBIA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasGroq() bool {
	return c.GroqAPIKey != ""
}

func (c *Config) HasSearxNG() bool {
	return c.SearxNGURL != ""
}
