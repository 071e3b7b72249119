package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	OpenAIAPIKey      string
	OpenAIAssistantID string

	GoogleSearchAPIKey   string
	GoogleSearchEngineID string

	QueuePollInterval time.Duration
	RunPollInterval   time.Duration
	FetchTimeout      time.Duration
	SchedulerDisabled bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		JWTSecret: mustGetenv("JWT_SECRET"),

		OpenAIAPIKey:      mustGetenv("OPENAI_API_KEY"),
		OpenAIAssistantID: getenv("OPENAI_ASSISTANT_ID", ""),

		GoogleSearchAPIKey:   getenv("GOOGLE_SEARCH_API_KEY", ""),
		GoogleSearchEngineID: getenv("GOOGLE_SEARCH_ENGINE_ID", ""),

		QueuePollInterval: getenvMillis("QUEUE_POLL_MS", time.Second),
		RunPollInterval:   getenvMillis("RUN_POLL_MS", time.Second),
		FetchTimeout:      getenvMillis("FETCH_TIMEOUT_MS", 15*time.Second),
		SchedulerDisabled: getenv("SCHEDULER_DISABLED", "false") == "true",
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}

func getenvMillis(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
