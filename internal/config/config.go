// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 引擎配置
type Config struct {
	App        AppConfig        `yaml:"app"`
	Solver     SolverConfig     `yaml:"solver"`
	RatioCache RatioCacheConfig `yaml:"ratio_cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// SolverConfig 求解器运行期配置
type SolverConfig struct {
	DefaultTimeLimit  time.Duration `yaml:"default_time_limit"`
	MaxIterations     int           `yaml:"max_iterations"`
	OptimizationLevel int           `yaml:"optimization_level"` // 1=快速, 2=平衡, 3=最优
	ParallelWorkers   int           `yaml:"parallel_workers"`
}

// RatioCacheBackend 选择严格遵从率缓存的持久化后端。
type RatioCacheBackend string

const (
	RatioCacheFile     RatioCacheBackend = "file"
	RatioCachePostgres RatioCacheBackend = "postgres"
)

// RatioCacheConfig 配置遵从率缓存存储；file 后端始终可用，
// postgres 后端用于多进程共享缓存的部署。
type RatioCacheConfig struct {
	Backend  RatioCacheBackend `yaml:"backend"`
	FilePath string            `yaml:"file_path"`
	Postgres PostgresConfig    `yaml:"postgres"`
}

// PostgresConfig 是可选 postgres 遵从率缓存后端的连接配置。
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("PAIBAN_APP_NAME", "paiban-engine"),
			Env:      getEnv("PAIBAN_APP_ENV", "development"),
			LogLevel: getEnv("PAIBAN_LOG_LEVEL", "info"),
		},
		Solver: SolverConfig{
			DefaultTimeLimit:  getEnvDuration("PAIBAN_SOLVER_TIME_LIMIT", 30*time.Second),
			MaxIterations:     getEnvInt("PAIBAN_SOLVER_MAX_ITERATIONS", 1000),
			OptimizationLevel: getEnvInt("PAIBAN_SOLVER_OPTIMIZATION_LEVEL", 2),
			ParallelWorkers:   getEnvInt("PAIBAN_SOLVER_PARALLEL_WORKERS", 4),
		},
		RatioCache: RatioCacheConfig{
			Backend:  RatioCacheBackend(getEnv("PAIBAN_RATIO_CACHE_BACKEND", string(RatioCacheFile))),
			FilePath: getEnv("PAIBAN_RATIO_CACHE_FILE", "./ratio_cache.json"),
			Postgres: PostgresConfig{
				Host:            getEnv("PAIBAN_PG_HOST", "localhost"),
				Port:            getEnvInt("PAIBAN_PG_PORT", 5432),
				Name:            getEnv("PAIBAN_PG_NAME", "paiban"),
				User:            getEnv("PAIBAN_PG_USER", "paiban"),
				Password:        getEnv("PAIBAN_PG_PASSWORD", ""),
				SSLMode:         getEnv("PAIBAN_PG_SSL_MODE", "disable"),
				MaxOpenConns:    getEnvInt("PAIBAN_PG_MAX_OPEN_CONNS", 10),
				MaxIdleConns:    getEnvInt("PAIBAN_PG_MAX_IDLE_CONNS", 2),
				ConnMaxLifetime: getEnvDuration("PAIBAN_PG_CONN_MAX_LIFETIME", 5*time.Minute),
			},
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("PAIBAN_METRICS_ENABLED", true),
		},
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

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
