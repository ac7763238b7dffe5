package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Bedrock   BedrockConfig   `mapstructure:"bedrock"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Doubao    DoubaoConfig    `mapstructure:"doubao"`
	Qwen      QwenConfig      `mapstructure:"qwen"`
	Image     ImageConfig     `mapstructure:"image"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Session   SessionConfig   `mapstructure:"session"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// ModelConfig 选择模型后端。PrimaryModel 用于写作类任务，AnalysisModel 用于数据分析和语法检查。
type ModelConfig struct {
	Provider      string        `mapstructure:"provider"`
	PrimaryModel  string        `mapstructure:"primary_model"`
	AnalysisModel string        `mapstructure:"analysis_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DebugRequest  bool          `mapstructure:"debug_request"`
}

type BedrockConfig struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type DoubaoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type QwenConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type ImageConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

var cfg *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 180*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("model.provider", "bedrock")
	v.SetDefault("model.primary_model", "us.anthropic.claude-3-5-sonnet-20241022-v2:0")
	v.SetDefault("model.analysis_model", "us.anthropic.claude-3-sonnet-20240229-v1:0")
	v.SetDefault("model.timeout", 120*time.Second)

	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("image.max_upload_bytes", 10<<20)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept"})
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)
}

// Load 读取 yaml 配置。configPath 为空或文件不存在时只使用默认值和环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, err
	}

	// 配置文件优先，如果配置文件中没有设置，则使用各厂商的标准环境变量
	if loaded.OpenAI.APIKey == "" {
		loaded.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if loaded.Doubao.APIKey == "" {
		if apiKey := os.Getenv("DOUBAO_API_KEY"); apiKey != "" {
			loaded.Doubao.APIKey = apiKey
		}
		if apiKey := os.Getenv("ARK_API_KEY"); apiKey != "" {
			loaded.Doubao.APIKey = apiKey
		}
	}
	if loaded.Qwen.APIKey == "" {
		loaded.Qwen.APIKey = os.Getenv("DASHSCOPE_API_KEY")
	}

	cfg = loaded
	return cfg, nil
}

func Get() *Config {
	return cfg
}
