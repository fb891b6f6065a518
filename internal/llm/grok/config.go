package grok

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the Grok (x.ai) client. The API is OpenAI-compatible.
type Config struct {
	APIKey      string        // if empty, falls back to env XAI_API_KEY
	BaseURL     string        // default https://api.x.ai/v1
	Model       string        // e.g. "grok-2-1212"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("XAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "grok-2-1212"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}
