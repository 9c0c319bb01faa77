package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Event       EventConfig
	Transaction TransactionConfig
	Reservation ReservationConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// EventConfig はこのデプロイメントが扱うイベントの設定
// イベントIDは環境から明示的に注入され、コアのロジックは参照のみ行う
type EventConfig struct {
	ID         string
	Name       string
	TotalSeats int
}

// TransactionConfig はトランザクションの時間制限設定
type TransactionConfig struct {
	// Timeout は予約・キャンセル1回あたりの全体タイムアウト
	Timeout time.Duration
	// LockWait はストア側の行ロック待ちの上限
	LockWait time.Duration
}

// ReservationConfig は予約ポリシー設定
type ReservationConfig struct {
	// MaxSeatsPerRequest は1リクエストで予約できる座席数の上限
	MaxSeatsPerRequest int
	// SummaryCacheTTL はサマリーキャッシュの有効期間
	SummaryCacheTTL time.Duration
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ticketboss"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Event: EventConfig{
			ID:         getEnv("EVENT_ID", "budokan-live-2025"),
			Name:       getEnv("EVENT_NAME", "武道館ライブ 2025"),
			TotalSeats: getIntEnv("EVENT_TOTAL_SEATS", 500),
		},
		Transaction: TransactionConfig{
			Timeout:  getDurationEnv("TX_TIMEOUT", 10*time.Second),
			LockWait: getDurationEnv("TX_LOCK_WAIT", 5*time.Second),
		},
		Reservation: ReservationConfig{
			MaxSeatsPerRequest: getIntEnv("MAX_SEATS_PER_REQUEST", 10),
			SummaryCacheTTL:    getDurationEnv("SUMMARY_CACHE_TTL", 2*time.Second),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
