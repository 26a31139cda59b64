package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	LLM       LLMConfig
	Proxy     ProxyConfig
	R2        R2Config
	Chunking  ChunkingConfig
	Pipeline  PipelineConfig
	Overrides []DomainOverride
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	SubmitPerHour int
	StatusPerMin  int
	UploadPerHour int
}

// LLMConfig configures the chat-completion service used for language
// detection and chunk translation.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout int // seconds, per call
}

// ProxyConfig configures the rendering-proxy fallback used when a direct
// fetch fails (server-side JavaScript execution).
type ProxyConfig struct {
	APIKey  string
	BaseURL string
	Timeout int // seconds
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// ChunkBand bounds segmenter output for one source kind.
type ChunkBand struct {
	MinWords    int
	TargetWords int
	MaxWords    int
}

type ChunkingConfig struct {
	URL    ChunkBand
	Pasted ChunkBand
	PDF    ChunkBand
}

type PipelineConfig struct {
	WaveSize        int
	FetchTimeout    int // seconds, direct fetch
	MinFetchBytes   int // bodies shorter than this trigger the proxy fallback
	MinContentChars int // extracted text shorter than this fails the job
	RetentionHours  int // job record TTL in Redis
}

// DomainOverride adjusts extraction for a source matched by hostname
// substring.
type DomainOverride struct {
	Match          string `mapstructure:"match"`
	SkipExtraction bool   `mapstructure:"skip_extraction"`
	SingleChunk    bool   `mapstructure:"single_chunk"`
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("LLM_API_KEY")
	readSecret("PROXY_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("llm.api_key", "LLM_API_KEY")
	_ = viper.BindEnv("llm.base_url", "LLM_BASE_URL")
	_ = viper.BindEnv("llm.model", "LLM_MODEL")
	_ = viper.BindEnv("llm.timeout", "LLM_TIMEOUT")
	_ = viper.BindEnv("proxy.api_key", "PROXY_API_KEY")
	_ = viper.BindEnv("proxy.base_url", "PROXY_BASE_URL")
	_ = viper.BindEnv("proxy.timeout", "PROXY_TIMEOUT")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("pipeline.wave_size", "PIPELINE_WAVE_SIZE")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("ratelimit.submit_per_hour", 20)
	viper.SetDefault("ratelimit.status_per_min", 120)
	viper.SetDefault("ratelimit.upload_per_hour", 10)

	// LLM defaults
	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "llama-3.3-70b-versatile")
	viper.SetDefault("llm.timeout", 90)

	// Rendering proxy defaults
	viper.SetDefault("proxy.base_url", "https://api.scrapingproxy.io")
	viper.SetDefault("proxy.timeout", 60)

	// Chunk bands: URL extraction tends to produce longer natural
	// paragraphs than pasted text or PDFs.
	viper.SetDefault("chunking.url.min_words", 250)
	viper.SetDefault("chunking.url.target_words", 1500)
	viper.SetDefault("chunking.url.max_words", 2500)
	viper.SetDefault("chunking.pasted.min_words", 50)
	viper.SetDefault("chunking.pasted.target_words", 250)
	viper.SetDefault("chunking.pasted.max_words", 500)
	viper.SetDefault("chunking.pdf.min_words", 50)
	viper.SetDefault("chunking.pdf.target_words", 250)
	viper.SetDefault("chunking.pdf.max_words", 500)

	// Pipeline defaults
	viper.SetDefault("pipeline.wave_size", 15)
	viper.SetDefault("pipeline.fetch_timeout", 30)
	viper.SetDefault("pipeline.min_fetch_bytes", 512)
	viper.SetDefault("pipeline.min_content_chars", 200)
	viper.SetDefault("pipeline.retention_hours", 168)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	var overrides []DomainOverride
	_ = viper.UnmarshalKey("overrides", &overrides)

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerHour: viper.GetInt("ratelimit.submit_per_hour"),
			StatusPerMin:  viper.GetInt("ratelimit.status_per_min"),
			UploadPerHour: viper.GetInt("ratelimit.upload_per_hour"),
		},
		LLM: LLMConfig{
			APIKey:  viper.GetString("llm.api_key"),
			BaseURL: viper.GetString("llm.base_url"),
			Model:   viper.GetString("llm.model"),
			Timeout: viper.GetInt("llm.timeout"),
		},
		Proxy: ProxyConfig{
			APIKey:  viper.GetString("proxy.api_key"),
			BaseURL: viper.GetString("proxy.base_url"),
			Timeout: viper.GetInt("proxy.timeout"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		Chunking: ChunkingConfig{
			URL: ChunkBand{
				MinWords:    viper.GetInt("chunking.url.min_words"),
				TargetWords: viper.GetInt("chunking.url.target_words"),
				MaxWords:    viper.GetInt("chunking.url.max_words"),
			},
			Pasted: ChunkBand{
				MinWords:    viper.GetInt("chunking.pasted.min_words"),
				TargetWords: viper.GetInt("chunking.pasted.target_words"),
				MaxWords:    viper.GetInt("chunking.pasted.max_words"),
			},
			PDF: ChunkBand{
				MinWords:    viper.GetInt("chunking.pdf.min_words"),
				TargetWords: viper.GetInt("chunking.pdf.target_words"),
				MaxWords:    viper.GetInt("chunking.pdf.max_words"),
			},
		},
		Pipeline: PipelineConfig{
			WaveSize:        viper.GetInt("pipeline.wave_size"),
			FetchTimeout:    viper.GetInt("pipeline.fetch_timeout"),
			MinFetchBytes:   viper.GetInt("pipeline.min_fetch_bytes"),
			MinContentChars: viper.GetInt("pipeline.min_content_chars"),
			RetentionHours:  viper.GetInt("pipeline.retention_hours"),
		},
		Overrides: overrides,
	}

	return cfg, nil
}
