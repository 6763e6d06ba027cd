// Package config 提供配置管理
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Engine   EngineConfig   `envPrefix:"ENGINE_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string `env:"NAME" envDefault:"lunban"`
	Env       string `env:"ENV" envDefault:"development"`
	Port      int    `env:"PORT" envDefault:"7021"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"lunban"`
	User            string        `env:"USER" envDefault:"lunban"`
	Password        string        `env:"PASSWORD" envDefault:"lunban123"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// EngineConfig 排班引擎配置
type EngineConfig struct {
	MaxIterations int           `env:"MAX_ITERATIONS" envDefault:"2000"`
	TimeLimit     time.Duration `env:"TIME_LIMIT" envDefault:"10s"`
	TabuSize      int           `env:"TABU_SIZE" envDefault:"64"`
	InitialTemp   float64       `env:"INITIAL_TEMP" envDefault:"100"`
	CoolingRate   float64       `env:"COOLING_RATE" envDefault:"0.995"`
	Seed          int64         `env:"SEED" envDefault:"1"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}
	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
