package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	// LLM OpenAI兼容接口 或 Gemini
	LLM struct {
		Provider       string  `yaml:"provider"` // openai | gemini
		APIKey         string  `yaml:"api_key"`
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`      // 单次调用（意图解析、计划生成）
		ChatModel      string  `yaml:"chat_model"` // 流式对话
		TimeoutSec     int     `yaml:"timeout_sec"`
		MaxRetries     int     `yaml:"max_retries"`
		RequestsPerSec float64 `yaml:"requests_per_sec"` // 出站请求速率，0 表示不限
		Burst          int     `yaml:"burst"`
	} `yaml:"llm"`
	Gemini struct {
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		ChatModel string `yaml:"chat_model"`
	} `yaml:"gemini"`

	DB struct {
		PostgresURL     string `yaml:"postgres_url"` // 优先级最高的数据源
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		ParseTime       bool   `yaml:"parse_time"`
		DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
	} `yaml:"database"`
	Data struct {
		SampleFile  string `yaml:"sample_file"`
		SQLitePath  string `yaml:"sqlite_path"`
		MaxProfiles int    `yaml:"max_profiles"`
	} `yaml:"data"`
	Session struct {
		Store            string `yaml:"store"` // memory | redis
		RedisURL         string `yaml:"redis_url"`
		KeyPrefix        string `yaml:"key_prefix"`
		TTLMinutes       int    `yaml:"ttl_minutes"`        // redis 键过期，0 表示不过期
		IdleTTLMinutes   int    `yaml:"idle_ttl_minutes"`   // 空闲会话清理，0 表示关闭
		SweepIntervalSec int    `yaml:"sweep_interval_sec"` // 清理检查间隔（秒）
	} `yaml:"session"`
	Timeouts struct {
		RequestSec  int `yaml:"request_sec"`  // 请求超时，单位：秒
		ResponseSec int `yaml:"response_sec"` // 响应超时，单位：秒
		IdleSec     int `yaml:"idle_sec"`     // 空闲超时，单位：秒
	} `yaml:"timeouts"`
}

func Load() *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量
	return LoadFrom(defaultConfigFile)
}

// LoadFrom 从指定yaml文件加载配置，文件不存在时完全从环境变量加载
func LoadFrom(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("Error loading %s: %v, falling back to environment variables", path, err)
		return loadFromEnv()
	}
	log.Printf("Loading configuration from %s", path)

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func loadFromEnv() *Config {
	var cfg Config

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	cfg.LLM.Provider = getenv("LLM_PROVIDER", "")
	cfg.LLM.BaseURL = getenv("LLM_BASE_URL", "")
	cfg.Session.Store = getenv("SESSION_STORE", "")

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	log.Println("Configuration loaded from environment, some settings may be missing")
	return &cfg
}

// applyEnvOverrides 从环境变量中加载敏感信息和连接串
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DB.PostgresURL = v
	}
	if v := os.Getenv("DATABASE_USERNAME"); v != "" {
		cfg.DB.Username = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}

	// LLM_API_KEY 优先，其次兼容 OPENAI_API_KEY
	if v := getenv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Session.RedisURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	// 计算 Server.Addr 字段
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-3.5-turbo"
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = "gpt-4o"
	}
	if cfg.LLM.TimeoutSec <= 0 {
		cfg.LLM.TimeoutSec = 60
	}
	if cfg.LLM.MaxRetries < 0 {
		cfg.LLM.MaxRetries = 0
	}
	if cfg.LLM.Burst <= 0 {
		cfg.LLM.Burst = 1
	}

	if cfg.Data.SampleFile == "" {
		cfg.Data.SampleFile = "sample_data.json"
	}
	if cfg.Data.SQLitePath == "" {
		cfg.Data.SQLitePath = "yale.db"
	}
	if cfg.Data.MaxProfiles <= 0 {
		cfg.Data.MaxProfiles = 100000
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "milo:session:"
	}
	if cfg.Session.SweepIntervalSec <= 0 {
		cfg.Session.SweepIntervalSec = 60
	}

	// 计算 DB.DSN 字段，只有在没有直接提供DSN且有主机信息时才构建
	if cfg.DB.DSN == "" && cfg.DB.Host != "" {
		if cfg.DB.Charset == "" {
			cfg.DB.Charset = "utf8mb4"
		}
		if cfg.DB.Port == 0 {
			cfg.DB.Port = 3306
		}
		parseTime := ""
		if cfg.DB.ParseTime {
			parseTime = "&parseTime=true"
		}
		cfg.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s%s",
			cfg.DB.Username,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Database,
			cfg.DB.Charset,
			parseTime)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
