package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"funnel-server/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию Funnel Service.
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"FUNNEL_SERVER_PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis (игровые сессии)
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"PLAY_SESSION_TTL" default:"30m"`
	AnswerLockTTL time.Duration `envconfig:"ANSWER_LOCK_WINDOW" default:"500ms"`

	// Настройки RabbitMQ
	RabbitMQURL         string `envconfig:"RABBITMQ_URL" required:"true"`
	ConversionQueueName string `envconfig:"CONVERSION_QUEUE_NAME" default:"funnel_conversions"`

	// Настройки Firebase (верификация ID-токенов и custom claims)
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH" required:"true"`

	// Настройки редактора
	SaveDebounce time.Duration `envconfig:"SAVE_DEBOUNCE_INTERVAL" default:"1s"`
	GateTokenTTL time.Duration `envconfig:"GATE_TOKEN_TTL" default:"12h"`

	// Публичные ссылки
	PublicBaseURL        string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	FallbackRedirectLink string `envconfig:"FALLBACK_REDIRECT_LINK"`

	// CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Секретные поля БЕЗ envconfig тегов
	GateSecretHash string // bcrypt-хэш пароля редакторского гейта
	GateJWTSecret  string // ключ подписи гейт-токенов
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins разбирает список origin'ов для CORS.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации funnel-server: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.GateSecretHash, loadErr = utils.ReadSecret("gate_secret_hash")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.GateJWTSecret, loadErr = utils.ReadSecret("gate_jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация Funnel Service загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Redis: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  Conversion Queue: %s", cfg.ConversionQueueName)
	log.Printf("  Session TTL: %v, Answer Lock Window: %v", cfg.SessionTTL, cfg.AnswerLockTTL)
	log.Printf("  Save Debounce: %v", cfg.SaveDebounce)
	log.Printf("  Public Base URL: %s", cfg.PublicBaseURL)
	log.Println("  Gate Secrets: [ЗАГРУЖЕНЫ]")

	return &cfg, nil
}
