package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port           int    `envconfig:"PORT" default:"8000"`
	Environment    string `envconfig:"ENV" default:"development"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	// Flat-file logs
	LogDir string `envconfig:"LOG_DIR" default:"/logs"`

	// Caption classifier
	CaptionProvider string `envconfig:"CAPTION_PROVIDER" default:"clip"`
	ClipURL         string `envconfig:"CLIP_URL" default:"http://localhost:5010"`

	// Face attribute analyzer
	FaceProvider     string  `envconfig:"FACE_PROVIDER" default:"deepface"`
	DeepFaceURL      string  `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceDetector string  `envconfig:"DEEPFACE_DETECTOR" default:"opencv"`
	AWSRegion        string  `envconfig:"AWS_REGION" default:"us-east-1"`
	GenderThreshold  float64 `envconfig:"GENDER_CONFIDENCE_THRESHOLD" default:"0.7"`

	// Graph store
	GraphBackend  string `envconfig:"GRAPH_BACKEND" default:"neo4j"`
	Neo4jURI      string `envconfig:"NEO4J_URI" default:"bolt://neo4j:7687"`
	Neo4jUser     string `envconfig:"NEO4J_USER" default:"neo4j"`
	Neo4jPassword string `envconfig:"NEO4J_PASSWORD" default:"password"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	// Optional analysis webhook
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.GraphBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when GRAPH_BACKEND=postgres")
	}
	if c.GenderThreshold <= 0 || c.GenderThreshold > 1 {
		return fmt.Errorf("GENDER_CONFIDENCE_THRESHOLD must be in (0, 1], got %v", c.GenderThreshold)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
