package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Store    StoreConfig
	Auth     AuthConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// RedisConfig описывает канал событий между экземплярами. Пустой Addr отключает мост.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type StoreConfig struct {
	Driver  string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	if err := loadEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{Env: getEnv("APP_ENV", "local")}

	loaders := []func(*Config) error{
		loadServer,
		loadDatabase,
		loadDocumentStore,
		loadRedis,
		loadAuth,
		loadSession,
	}
	for _, load := range loaders {
		if err := load(&cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadServer(cfg *Config) error {
	port, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return err
	}

	read, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return err
	}

	// SSE-поток держит соединение открытым, поэтому запись не ограничена по умолчанию.
	write, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 0)
	if err != nil {
		return err
	}

	idle, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return err
	}

	cfg.Server = ServerConfig{
		Host:           getEnv("SERVER_HOST", "0.0.0.0"),
		Port:           port,
		ReadTimeout:    read,
		WriteTimeout:   write,
		IdleTimeout:    idle,
		AllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS"),
	}
	return nil
}

func loadDatabase(cfg *Config) error {
	db := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		User:     getEnv("DB_USER", "trips"),
		Password: getEnv("DB_PASSWORD", "trips"),
		Name:     getEnv("DB_NAME", "trip_planner"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	var err error
	if db.Port, err = parseIntEnv("DB_PORT", 5432); err != nil {
		return err
	}
	if db.MaxOpenConns, err = parseIntEnv("DB_MAX_OPEN_CONNS", 10); err != nil {
		return err
	}
	if db.MaxIdleConns, err = parseIntEnv("DB_MAX_IDLE_CONNS", 5); err != nil {
		return err
	}
	if db.ConnMaxIdleTime, err = parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute); err != nil {
		return err
	}
	if db.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return err
	}

	cfg.Database = db
	return nil
}

// loadDocumentStore читает выбор хранилища поездок и параметры MongoDB.
func loadDocumentStore(cfg *Config) error {
	timeout, err := parseDurationEnv("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return err
	}

	cfg.Store = StoreConfig{
		Driver:  strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		Timeout: timeout,
	}
	cfg.Mongo = MongoConfig{
		URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:   getEnv("MONGO_DATABASE", "trip_planner"),
		Collection: getEnv("MONGO_COLLECTION", "trips"),
	}
	return nil
}

func loadRedis(cfg *Config) error {
	db, err := parseIntEnvMin("REDIS_DB", 0, 0)
	if err != nil {
		return err
	}

	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		Channel:  getEnv("REDIS_CHANNEL", "trip-events"),
	}
	return nil
}

func loadAuth(cfg *Config) error {
	auth := AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "trip-planner"),
	}

	var err error
	if auth.AccessTokenTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute); err != nil {
		return err
	}
	if auth.RateLimitPerMinute, err = parseIntEnv("EDIT_RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return err
	}
	if auth.RateLimitBurst, err = parseIntEnv("EDIT_RATE_LIMIT_BURST", 20); err != nil {
		return err
	}

	cfg.Auth = auth
	return nil
}

func loadSession(cfg *Config) error {
	idleTTL, err := parseDurationEnv("SESSION_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return err
	}

	sweepInterval, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return err
	}

	cfg.Session = SessionConfig{IdleTTL: idleTTL, SweepInterval: sweepInterval}
	return nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}

		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}

		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}

		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
		}
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}

		if c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("MONGO_DATABASE and MONGO_COLLECTION are required")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, c.Store.Driver)
	}

	if c.Redis.Addr != "" && c.Redis.Channel == "" {
		return fmt.Errorf("REDIS_CHANNEL is required when REDIS_ADDR is set")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if c.Session.SweepInterval > c.Session.IdleTTL {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL cannot exceed SESSION_IDLE_TTL")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	return parseIntEnvMin(key, fallback, 1)
}

func parseIntEnvMin(key string, fallback, min int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed < min {
		return 0, fmt.Errorf("%s must be at least %d", key, min)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
