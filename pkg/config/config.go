package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`

	// 数据库配置
	DatabaseDriver string `yaml:"database_driver"`
	PostgresDSN    string `yaml:"postgres_dsn"`
	SQLitePath     string `yaml:"sqlite_path"`

	// JWT配置
	JWTSecret string `yaml:"jwt_secret"`

	// NATS invalidation bus, disabled when empty
	NATSURL string `yaml:"nats_url"`

	// CORS配置
	AllowedOrigins []string `yaml:"allowed_origins"`

	// 调试配置
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
}

// LoadConfig 加载配置. A broken CONFIG_FILE is reported and skipped.
func LoadConfig() *Config {
	cfg, err := Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Warn("ignoring config file", "path", os.Getenv("CONFIG_FILE"), "error", err)
		cfg, _ = Load("")
	}
	return cfg
}

// Load builds the configuration from defaults, the optional YAML file at path
// and finally the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 按优先级加载环境文件
	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := defaults()
	if path != "" {
		if err := config.mergeFile(path); err != nil {
			return nil, err
		}
	}
	config.applyEnv()

	// 环境特定配置
	if config.IsProduction() {
		config.Debug = false
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		Environment:    "development",
		Port:           "3000",
		DatabaseDriver: "",
		SQLitePath:     "data/dashboard.db",
		JWTSecret:      defaultJWTSecret,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
		RequestTimeout: 25 * time.Second,
		MetricsEnabled: true,
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// Decoding into the populated struct keeps defaults for absent keys
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnvWithDefault("ENVIRONMENT", c.Environment)
	c.Port = getEnvWithDefault("PORT", c.Port)

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(getEnvWithDefault("DATABASE_DRIVER", c.DatabaseDriver)))
	c.PostgresDSN = strings.TrimSpace(getEnvWithDefault("POSTGRES_DSN", c.PostgresDSN))
	c.SQLitePath = strings.TrimSpace(getEnvWithDefault("SQLITE_PATH", c.SQLitePath))
	c.NATSURL = strings.TrimSpace(getEnvWithDefault("NATS_URL", c.NATSURL))

	c.JWTSecret = getEnvWithDefault("JWT_SECRET", c.JWTSecret)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogLevel = strings.ToLower(getEnvWithDefault("LOG_LEVEL", c.LogLevel))
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)

	// CORS配置
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless platforms it initializes once per cold start and is reused
// across warm invocations.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	switch c.DatabaseDriver {
	case "":
		if c.PostgresDSN == "" && c.SQLitePath == "" {
			return fmt.Errorf("database not configured: set POSTGRES_DSN or SQLITE_PATH")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_DRIVER=postgres requires POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("DATABASE_DRIVER=sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in development secret
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile 加载 .env 文件到环境变量
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return // 文件不存在，静默返回
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		// 只有当环境变量不存在时才设置
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}
