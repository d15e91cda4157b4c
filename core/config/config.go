package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"slotpoll/core/logger"
)

type ServerConfig struct {
	Host string
	Port int
	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

var (
	instance *AppConfig
	mu       sync.RWMutex
)

// Load reads .env (if present) and environment variables into the
// process-wide config singleton.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.cors_origins", "http://localhost:5173")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "slotpoll")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	cfg := &AppConfig{
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log.level"),
		Server: ServerConfig{
			Host:        v.GetString("server.host"),
			Port:        v.GetInt("server.port"),
			CORSOrigins: splitCSV(v.GetString("server.cors_origins")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	if cfg.Database.DBName == "" {
		return nil, fmt.Errorf("db.name must not be empty")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the loaded config. It panics when Load was never called;
// use GetSafe from code paths that can run before initialization.
func Get() *AppConfig {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: not initialized, call config.Load first")
	}
	return cfg
}

// GetSafe returns the loaded config and whether it is available.
func GetSafe() (*AppConfig, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
