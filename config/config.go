package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv              string `yaml:"app_env"`
	AppPort             string `yaml:"app_port"`
	AllowedOrigins      string `yaml:"allowed_origins"`
	DBDriver            string `yaml:"db_driver"`
	DBHost              string `yaml:"db_host"`
	DBPort              string `yaml:"db_port"`
	DBUser              string `yaml:"db_user"`
	DBPassword          string `yaml:"db_password"`
	DBName              string `yaml:"db_name"`
	DBSSLMode           string `yaml:"db_sslmode"`
	DBPath              string `yaml:"db_path"`
	DBMaxIdleConns      int    `yaml:"db_max_idle_conns"`
	DBMaxOpenConns      int    `yaml:"db_max_open_conns"`
	DBLogLevel          string `yaml:"db_log_level"`
	JWTSecret           string `yaml:"jwt_secret"`
	JWTExpirationHours  int    `yaml:"jwt_expiration_hours"`
	NatsURL             string `yaml:"nats_url"`
	EventPollIntervalMs int    `yaml:"event_poll_interval_ms"`
}

func defaults() Config {
	return Config{
		AppEnv:              "development",
		AppPort:             "8080",
		AllowedOrigins:      "*",
		DBDriver:            "postgres",
		DBHost:              "localhost",
		DBPort:              "5432",
		DBUser:              "minijira",
		DBPassword:          "minijira",
		DBName:              "minijira",
		DBSSLMode:           "disable",
		DBPath:              "minijira.db",
		DBMaxIdleConns:      10,
		DBMaxOpenConns:      100,
		DBLogLevel:          "warn",
		JWTSecret:           "your-super-secret-key-change-this-in-production",
		JWTExpirationHours:  24,
		NatsURL:             "",
		EventPollIntervalMs: 1000,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("%s not set, defaulting to %s", key, defaultValue)
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

// loadFile overlays the YAML file at path on top of cfg.
func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Load resolves configuration from built-in defaults, then CONFIG_FILE, then the
// environment (including a .env file in the working directory).
func Load() Config {
	log.Println("Loading configuration...")

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	base := defaults()
	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := loadFile(path, &base); err != nil {
			log.Printf("Ignoring config file %s: %v", path, err)
		}
	}

	return Config{
		AppEnv:              getEnv("APP_ENV", base.AppEnv),
		AppPort:             getEnv("APP_PORT", base.AppPort),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", base.AllowedOrigins),
		DBDriver:            getEnv("DB_DRIVER", base.DBDriver),
		DBHost:              getEnv("DB_HOST", base.DBHost),
		DBPort:              getEnv("DB_PORT", base.DBPort),
		DBUser:              getEnv("DB_USER", base.DBUser),
		DBPassword:          getEnv("DB_PASSWORD", base.DBPassword),
		DBName:              getEnv("DB_NAME", base.DBName),
		DBSSLMode:           getEnv("DB_SSLMODE", base.DBSSLMode),
		DBPath:              getEnv("DB_PATH", base.DBPath),
		DBMaxIdleConns:      getEnvAsInt("DB_MAX_IDLE_CONNS", base.DBMaxIdleConns),
		DBMaxOpenConns:      getEnvAsInt("DB_MAX_OPEN_CONNS", base.DBMaxOpenConns),
		DBLogLevel:          getEnv("DB_LOG_LEVEL", base.DBLogLevel),
		JWTSecret:           getEnv("JWT_SECRET", base.JWTSecret),
		JWTExpirationHours:  getEnvAsInt("JWT_EXPIRATION_HOURS", base.JWTExpirationHours),
		NatsURL:             getEnv("NATS_URL", base.NatsURL),
		EventPollIntervalMs: getEnvAsInt("EVENT_POLL_INTERVAL_MS", base.EventPollIntervalMs),
	}
}
