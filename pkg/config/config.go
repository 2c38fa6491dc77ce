package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// AppConfig 全局配置实例
var AppConfig *Config

// Config 应用配置结构
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`
	Export  ExportConfig  `yaml:"export"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT" default:"8801"`
	Mode         string        `yaml:"mode" env:"GIN_MODE" default:"debug"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
	RateLimit    int           `yaml:"rate_limit" default:"1000"` // 每分钟请求数
	// AllowedOrigins CORS 允许的来源
	AllowedOrigins []string `yaml:"allowed_origins"`
	// LogDir 非空时请求日志按天写入该目录
	LogDir string `yaml:"log_dir" env:"LOG_DIR"`
}

// BackendConfig 报表后端配置
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" env:"REPORTES_URL" default:"http://localhost:8080/reportes"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" env:"REDIS_ENABLED" default:"false"`
	Addr         string        `yaml:"addr" env:"REDIS_ADDR" default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" default:"0"`
	PoolSize     int           `yaml:"pool_size" default:"10"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"3s"`
}

// CacheConfig 报表数据缓存，TTL 为 0 时不缓存
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" default:"5m"`
}

// ExportConfig 导出配置
type ExportConfig struct {
	// ArchiveDir 非空时每次导出的文件同时归档到该目录
	ArchiveDir string `yaml:"archive_dir" env:"EXPORT_ARCHIVE_DIR"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	Secret  string        `yaml:"secret" env:"SESSION_SECRET"`
	IdleTTL time.Duration `yaml:"idle_ttl" default:"30m"`
}

// InitConfig 初始化配置
func InitConfig() error {
	// 加载环境变量
	if err := loadEnv(); err != nil {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	config := &Config{}
	setDefaults(config)

	// 尝试从配置文件加载
	if err := loadFromFile(config); err != nil {
		log.Printf("Warning: failed to load config file: %v", err)
	}

	// 从环境变量覆盖配置
	if err := loadFromEnv(config); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	AppConfig = config
	return nil
}

// loadEnv 加载环境变量文件
func loadEnv() error {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFiles := []string{
		".env",
		fmt.Sprintf(".env.%s", env),
		".env.local",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				return err
			}
		}
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(config *Config) {
	config.Server.Port = "8801"
	config.Server.Mode = "debug"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.RateLimit = 1000
	config.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

	config.Backend.BaseURL = "http://localhost:8080/reportes"
	config.Backend.Timeout = 15 * time.Second

	config.Redis.Addr = "localhost:6379"
	config.Redis.DB = 0
	config.Redis.PoolSize = 10
	config.Redis.DialTimeout = 5 * time.Second
	config.Redis.ReadTimeout = 3 * time.Second
	config.Redis.WriteTimeout = 3 * time.Second

	config.Cache.TTL = 5 * time.Minute

	config.Session.IdleTTL = 30 * time.Minute
}

// loadFromFile 从配置文件加载
func loadFromFile(config *Config) error {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载
func loadFromEnv(config *Config) error {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	if dir := os.Getenv("LOG_DIR"); dir != "" {
		config.Server.LogDir = dir
	}

	if base := os.Getenv("REPORTES_URL"); base != "" {
		config.Backend.BaseURL = base
	}
	if timeout := os.Getenv("REPORTES_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid REPORTES_TIMEOUT: %w", err)
		}
		config.Backend.Timeout = d
	}

	if enabled := os.Getenv("REDIS_ENABLED"); enabled != "" {
		config.Redis.Enabled = enabled == "true" || enabled == "1"
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			config.Redis.DB = db
		}
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		config.Cache.TTL = d
	}

	if dir := os.Getenv("EXPORT_ARCHIVE_DIR"); dir != "" {
		config.Export.ArchiveDir = dir
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.Secret = secret
	}

	return nil
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	u, err := url.Parse(config.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base url: %q", config.Backend.BaseURL)
	}

	if config.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	if _, err := strconv.Atoi(strings.TrimPrefix(config.Server.Port, ":")); err != nil {
		return fmt.Errorf("invalid server port: %s", config.Server.Port)
	}

	validModes := []string{"debug", "release", "test"}
	modeValid := false
	for _, mode := range validModes {
		if config.Server.Mode == mode {
			modeValid = true
			break
		}
	}
	if !modeValid {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	if config.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	if config.Server.Mode == "release" && config.Session.Secret == "" {
		return fmt.Errorf("session secret is required in release mode")
	}

	return nil
}

// GetConfig 获取配置实例
func GetConfig() *Config {
	if AppConfig == nil {
		log.Fatal("config not initialized, call InitConfig() first")
	}
	return AppConfig
}

// IsProduction 判断是否为生产环境
func IsProduction() bool {
	return AppConfig != nil && AppConfig.Server.Mode == "release"
}
