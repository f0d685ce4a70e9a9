package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// DSN renders the connection string for the configured driver.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	case "sqlite":
		return d.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset)
	}
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret       string `mapstructure:"secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	CookieName   string `mapstructure:"cookie_name"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

// Expire is the token and cookie lifetime.
func (j *JWTConfig) Expire() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

type UploadConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
	MaxBytes  int64  `mapstructure:"max_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Bootstrap is read from the process environment before the config file.
type Bootstrap struct {
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config.yaml"`
}

var Global *Config

// ParseBootstrap reads the bootstrap settings from the environment.
func ParseBootstrap() (Bootstrap, error) {
	var b Bootstrap
	if err := env.Parse(&b); err != nil {
		return Bootstrap{}, fmt.Errorf("parse env: %w", err)
	}
	return b, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "ezgu.db")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ezgu")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.cookie_secure", false)
	v.SetDefault("jwt.expire_hours", 24*30)
	v.SetDefault("jwt.cookie_name", "auth_token")
	v.SetDefault("upload.dir", "public/uploads")
	v.SetDefault("upload.url_prefix", "/uploads")
	v.SetDefault("upload.max_bytes", 2<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the YAML file at path, applies EZGU_* environment overrides
// and fills defaults. A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ezgu")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	Global = &cfg
	return &cfg, nil
}
