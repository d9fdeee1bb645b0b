package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Store     Store     `yaml:"store"`
	Cache     Cache     `yaml:"cache"`
	Redis     Redis     `yaml:"redis"`
	Shortener Shortener `yaml:"shortener"`
	Reaper    Reaper    `yaml:"reaper"`
	Auth      Auth      `yaml:"auth"`
	RateLimit Limit     `yaml:"rate_limit"`
	Log       Log       `yaml:"log"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
	BaseURL string `yaml:"base_url"`
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置，Driver 可选 mysql / postgres / sqlite
type DB struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Path     string `yaml:"path"`
}

// 短链接存储后端，Backend 可选 sql / redis / memory
type Store struct {
	Backend   string        `yaml:"backend"`
	KeyPrefix string        `yaml:"key_prefix"`
	Retention time.Duration `yaml:"retention"`
}

// 进程内缓存配置
type Cache struct {
	Size         int           `yaml:"size"`
	MaxStaleness time.Duration `yaml:"max_staleness"`
	LoadTimeout  time.Duration `yaml:"load_timeout"`
}

// Redis 配置
type Redis struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// 短码分配配置
type Shortener struct {
	CodeLength      int      `yaml:"code_length"`
	MaxAttempts     int      `yaml:"max_attempts"`
	MinAliasLength  int      `yaml:"min_alias_length"`
	MaxAliasLength  int      `yaml:"max_alias_length"`
	ReservedAliases []string `yaml:"reserved_aliases"`
}

// 过期清理配置
type Reaper struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
	AdminUsername   string `yaml:"admin_username"`
	AdminPassword   string `yaml:"admin_password"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  float64  `yaml:"requests_per_second"`
	Burst     int      `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 加载配置文件，随后用 .env 与环境变量覆盖
// path 为空或文件不存在时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		App:       App{Name: "shortlink-service", Mode: "development", Version: "1.0.0", BaseURL: "http://localhost:8080"},
		Server:    Server{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database:  DB{Driver: "sqlite", Path: "shortlink.db", Charset: "utf8mb4"},
		Store:     Store{Backend: "sql", KeyPrefix: "shortlink:", Retention: 24 * time.Hour},
		Cache:     Cache{Size: 10000, MaxStaleness: 30 * time.Second, LoadTimeout: 3 * time.Second},
		Redis:     Redis{Port: 6379, PoolSize: 20, DialTimeout: 5 * time.Second},
		Shortener: Shortener{CodeLength: 6, MaxAttempts: 5, MinAliasLength: 3, MaxAliasLength: 32},
		Reaper:    Reaper{Enabled: true, Interval: time.Minute},
		Auth:      Auth{Issuer: "shortlink-service", ExpirationHours: 24, AdminUsername: "admin"},
		RateLimit: Limit{Enabled: true, Requests: 20, Burst: 40, SkipPaths: []string{"/health", "/metrics", "/swagger"}},
		Log:       Log{Level: "info", File: "./logs/app.log", MaxSize: 10, MaxBackups: 5, MaxAge: 30},
	}
}

// fillDefaults 文件中显式写成零值的关键字段回落到默认值
func (c *Config) fillDefaults() {
	def := Default()
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Shortener.CodeLength <= 0 {
		c.Shortener.CodeLength = def.Shortener.CodeLength
	}
	if c.Shortener.MaxAttempts <= 0 {
		c.Shortener.MaxAttempts = def.Shortener.MaxAttempts
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = def.Cache.Size
	}
	if c.Reaper.Interval <= 0 {
		c.Reaper.Interval = def.Reaper.Interval
	}
	if c.Auth.ExpirationHours <= 0 {
		c.Auth.ExpirationHours = def.Auth.ExpirationHours
	}
}

func applyEnv(cfg *Config) error {
	strVars := map[string]*string{
		"SHORTLINK_MODE":           &cfg.App.Mode,
		"SHORTLINK_BASE_URL":       &cfg.App.BaseURL,
		"SHORTLINK_DB_DRIVER":      &cfg.Database.Driver,
		"SHORTLINK_DB_HOST":        &cfg.Database.Host,
		"SHORTLINK_DB_USER":        &cfg.Database.User,
		"SHORTLINK_DB_PASSWORD":    &cfg.Database.Password,
		"SHORTLINK_DB_NAME":        &cfg.Database.Name,
		"SHORTLINK_DB_PATH":        &cfg.Database.Path,
		"SHORTLINK_STORE_BACKEND":  &cfg.Store.Backend,
		"SHORTLINK_REDIS_HOST":     &cfg.Redis.Host,
		"SHORTLINK_REDIS_PASSWORD": &cfg.Redis.Password,
		"SHORTLINK_JWT_SECRET":     &cfg.Auth.Secret,
		"SHORTLINK_ADMIN_PASSWORD": &cfg.Auth.AdminPassword,
		"SHORTLINK_LOG_LEVEL":      &cfg.Log.Level,
	}
	for key, dst := range strVars {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"SHORTLINK_PORT":        &cfg.Server.Port,
		"SHORTLINK_DB_PORT":     &cfg.Database.Port,
		"SHORTLINK_REDIS_PORT":  &cfg.Redis.Port,
		"SHORTLINK_REDIS_DB":    &cfg.Redis.DB,
		"SHORTLINK_CODE_LENGTH": &cfg.Shortener.CodeLength,
		"SHORTLINK_CACHE_SIZE":  &cfg.Cache.Size,
	}
	for key, dst := range intVars {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是整数: %w", key, err)
		}
		*dst = n
	}
	return nil
}
