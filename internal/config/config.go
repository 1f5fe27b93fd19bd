package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI provider
	AIProvider        string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string

	// generation calls are aborted past this deadline
	GenerationTimeout time.Duration

	// transcription
	TranscriberCommand string
	TranscriberArgs    []string
	MediaRoot          string
	WorkerConcurrency  int

	// blob store for videos with no local copy
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// embedding model (the hash fallback is used when these are unusable)
	EmbedModelPath     string
	EmbedTokenizerPath string
	ONNXLibraryPath    string
}

func Load() Config {
	// DSN demo:
	// app:apppass@tcp(127.0.0.1:3306)/course_assistant?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			"app", "apppass", "127.0.0.1", "3306", "course_assistant",
		)
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "ollama"
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3:latest"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openrouter/auto"
	}

	genTimeout := 60 * time.Second
	if v := os.Getenv("GENERATION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			genTimeout = time.Duration(n) * time.Second
		}
	}

	transcriberCmd := os.Getenv("TRANSCRIBER_COMMAND")
	if transcriberCmd == "" {
		transcriberCmd = "python"
	}
	script := os.Getenv("TRANSCRIBER_SCRIPT")
	if script == "" {
		script = "scripts/transcriber.py"
	}

	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "./media"
	}

	concurrency := 2
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 50 {
				n = 50
			}
			concurrency = n
		}
	}

	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "lecture-videos"
	}
	minioUseSSL := false
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			minioUseSSL = b
		}
	}

	embedModel := os.Getenv("EMBED_MODEL_PATH")
	if embedModel == "" {
		embedModel = "models/all-MiniLM-L6-v2.onnx"
	}
	embedTokenizer := os.Getenv("EMBED_TOKENIZER_PATH")
	if embedTokenizer == "" {
		embedTokenizer = "models/tokenizer.json"
	}

	return Config{
		HTTPAddr:  httpAddr,
		DBDSN:     dsn,
		JWTSecret: secret,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		AIProvider:        aiProvider,
		OllamaBaseURL:     ollamaBaseURL,
		OllamaModel:       ollamaModel,
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),

		GenerationTimeout: genTimeout,

		TranscriberCommand: transcriberCmd,
		TranscriberArgs:    []string{script},
		MediaRoot:          mediaRoot,
		WorkerConcurrency:  concurrency,

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    minioBucket,
		MinioUseSSL:    minioUseSSL,

		EmbedModelPath:     embedModel,
		EmbedTokenizerPath: embedTokenizer,
		ONNXLibraryPath:    os.Getenv("ONNX_LIBRARY_PATH"),
	}
}
