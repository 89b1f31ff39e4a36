// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"neko-signal-bot/internal/core/domain/features"
	"neko-signal-bot/internal/core/domain/market"
	"neko-signal-bot/internal/core/domain/risk"
	"neko-signal-bot/internal/core/domain/signals/filters"
	"neko-signal-bot/internal/core/domain/signals/scoring"
	"neko-signal-bot/pkg/period"
)

// DefaultSymbols инструменты по умолчанию
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT", "XRPUSDT"}

// ============================================
// СКАНЕР
// ============================================

// ScannerConfig - цикл сканирования
type ScannerConfig struct {
	Symbols      []string      `mapstructure:"TRADING_PAIRS"`
	Interval     string        `mapstructure:"PRIMARY_TIMEFRAME"`
	LoopInterval time.Duration `mapstructure:"LOOP_INTERVAL"`
	MaxWorkers   int           `mapstructure:"SCAN_MAX_WORKERS"`
	CycleTimeout time.Duration `mapstructure:"SCAN_CYCLE_TIMEOUT"`
}

// SessionConfig - торговая сессия, часы UTC [start, end)
type SessionConfig struct {
	StartHour int `mapstructure:"SESSION_START_UTC"`
	EndHour   int `mapstructure:"SESSION_END_UTC"`
}

// ScoringConfig - пороги счёта
type ScoringConfig struct {
	LongThreshold  int `mapstructure:"SCORE_LONG_THRESHOLD"`
	ShortThreshold int `mapstructure:"SCORE_SHORT_THRESHOLD"`
}

// IndicatorsConfig - окна индикаторов
type IndicatorsConfig struct {
	OFIWindow           int     `mapstructure:"OFI_WINDOW"`
	CVDWindow           int     `mapstructure:"CVD_WINDOW"`
	ATRPeriod           int     `mapstructure:"ATR_PERIOD"`
	ATRMAPeriod         int     `mapstructure:"ATR_MA_PERIOD"`
	ROCPeriod           int     `mapstructure:"MOMENTUM_ROC_PERIOD"`
	ProfileBins         int     `mapstructure:"VP_BINS"`
	HVNPercentile       float64 `mapstructure:"HVN_PERCENTILE"`
	HVNProximityPct     float64 `mapstructure:"HVN_PROXIMITY_PCT"`
	SwingLookback       int     `mapstructure:"SWING_LOOKBACK"`
	BookProximityPct    float64 `mapstructure:"OB_PROXIMITY_PCT"`
	BookImbalanceFactor float64 `mapstructure:"OB_IMBALANCE_FACTOR"`
}

// GatesConfig - анти-манипуляционный фильтр
type GatesConfig struct {
	MinEfficiency float64 `mapstructure:"MIN_VOLUME_EFFICIENCY"`
	WashLow       float64 `mapstructure:"WASH_TRADE_TAKER_RATIO_LOW"`
	WashHigh      float64 `mapstructure:"WASH_TRADE_TAKER_RATIO_HIGH"`
}

// RiskConfig - SL/TP
type RiskConfig struct {
	SLMultiplier         float64 `mapstructure:"ATR_SL_MULTIPLIER"`
	MinRR                float64 `mapstructure:"MIN_RR_RATIO"`
	MaxAnchorDistancePct float64 `mapstructure:"MAX_ANCHOR_DISTANCE_PCT"`
	UseWicks             bool    `mapstructure:"RESOLVE_ON_WICKS"`
}

// ExchangeConfig - Binance USDⓈ-M
type ExchangeConfig struct {
	BaseURL    string        `mapstructure:"BINANCE_BASE_URL"`
	ApiKey     string        `mapstructure:"BINANCE_API_KEY"`
	KlineLimit int           `mapstructure:"OHLCV_LIMIT"`
	DepthLimit int           `mapstructure:"ORDERBOOK_DEPTH"`
	MaxRetries int           `mapstructure:"MAX_RETRIES"`
	RetryDelay time.Duration `mapstructure:"RETRY_DELAY"`
	RateLimit  time.Duration `mapstructure:"API_RATE_LIMIT"` // минимальная пауза между запросами
	Timeout    time.Duration `mapstructure:"EXCHANGE_TIMEOUT"`
}

// WebhookConfig - исходящий вебхук сигналов
type WebhookConfig struct {
	Enabled  bool          `mapstructure:"WEBHOOK_ENABLED"`
	URL      string        `mapstructure:"WEBHOOK_URL"`
	Timeout  time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
	Strategy string        `mapstructure:"STRATEGY_NAME"`
}

// RedisConfig - зеркало состояния пар
type RedisConfig struct {
	Enabled      bool          `mapstructure:"REDIS_ENABLED"`
	Host         string        `mapstructure:"REDIS_HOST"`
	Port         int           `mapstructure:"REDIS_PORT"`
	Password     string        `mapstructure:"REDIS_PASSWORD"`
	DB           int           `mapstructure:"REDIS_DB"`
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	MaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
	Prefix       string        `mapstructure:"REDIS_PREFIX"`
	StateTTL     time.Duration `mapstructure:"REDIS_STATE_TTL"`
}

// DatabaseConfig - журнал сигналов в PostgreSQL
type DatabaseConfig struct {
	Enabled           bool          `mapstructure:"DB_ENABLED"`
	Host              string        `mapstructure:"DB_HOST"`
	Port              int           `mapstructure:"DB_PORT"`
	User              string        `mapstructure:"DB_USER"`
	Password          string        `mapstructure:"DB_PASSWORD"`
	Name              string        `mapstructure:"DB_NAME"`
	SSLMode           string        `mapstructure:"DB_SSLMODE"`
	MaxOpenConns      int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns      int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime   time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime   time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`
	EnableAutoMigrate bool          `mapstructure:"DB_ENABLE_AUTO_MIGRATE"`
}

// InfluxConfig - телеметрия рынка
type InfluxConfig struct {
	Enabled     bool          `mapstructure:"INFLUXDB_ENABLED"`
	URL         string        `mapstructure:"INFLUXDB_URL"`
	Token       string        `mapstructure:"INFLUXDB_TOKEN"`
	Org         string        `mapstructure:"INFLUXDB_ORG"`
	Bucket      string        `mapstructure:"INFLUXDB_BUCKET"`
	Measurement string        `mapstructure:"INFLUXDB_MEASUREMENT"`
	Timeout     time.Duration `mapstructure:"INFLUXDB_TIMEOUT"`
}

// EventBusConfig - шина событий
type EventBusConfig struct {
	BufferSize    int  `mapstructure:"EVENT_BUS_BUFFER_SIZE"`
	WorkerCount   int  `mapstructure:"EVENT_BUS_WORKER_COUNT"`
	EnableLogging bool `mapstructure:"EVENT_BUS_ENABLE_LOGGING"`
}

// MetricsConfig - HTTP сервер /metrics, /healthz, /status
type MetricsConfig struct {
	Enabled bool `mapstructure:"METRICS_ENABLED"`
	Port    int  `mapstructure:"METRICS_PORT"`
}

// LoggingConfig - логирование
type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
	File  string `mapstructure:"LOG_FILE"`
	Debug bool   `mapstructure:"DEBUG_MODE"`
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	Scanner    ScannerConfig
	Session    SessionConfig
	Scoring    ScoringConfig
	Indicators IndicatorsConfig
	Gates      GatesConfig
	Risk       RiskConfig
	Exchange   ExchangeConfig

	Webhook  WebhookConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Influx   InfluxConfig
	EventBus EventBusConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// LoadConfig читает .env (если есть) и переменные окружения
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("⚠️  Config file not found, using environment variables\n")
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	// ======================
	// СКАНЕР И СЕССИЯ
	// ======================
	cfg.Scanner.Symbols = parseSymbols(getEnv("TRADING_PAIRS", ""))
	cfg.Scanner.Interval = getEnv("PRIMARY_TIMEFRAME", "1m")
	cfg.Scanner.LoopInterval = getEnvSeconds("LOOP_INTERVAL_S", 60*time.Second)
	cfg.Scanner.MaxWorkers = getEnvInt("SCAN_MAX_WORKERS", 5)
	cfg.Scanner.CycleTimeout = getEnvDuration("SCAN_CYCLE_TIMEOUT", 45*time.Second)

	cfg.Session.StartHour = getEnvInt("SESSION_START_UTC", 12)
	cfg.Session.EndHour = getEnvInt("SESSION_END_UTC", 21)

	cfg.Scoring.LongThreshold = getEnvInt("SCORE_LONG_THRESHOLD", 4)
	cfg.Scoring.ShortThreshold = getEnvInt("SCORE_SHORT_THRESHOLD", -4)

	// ======================
	// ИНДИКАТОРЫ
	// ======================
	cfg.Indicators.OFIWindow = getEnvInt("OFI_WINDOW", 10)
	cfg.Indicators.CVDWindow = getEnvInt("CVD_WINDOW", 20)
	cfg.Indicators.ATRPeriod = getEnvInt("ATR_PERIOD", 14)
	cfg.Indicators.ATRMAPeriod = getEnvInt("ATR_MA_PERIOD", 24)
	cfg.Indicators.ROCPeriod = getEnvInt("MOMENTUM_ROC_PERIOD", 5)
	cfg.Indicators.ProfileBins = getEnvInt("VP_BINS", 30)
	cfg.Indicators.HVNPercentile = getEnvFloat("HVN_PERCENTILE", 75.0)
	cfg.Indicators.HVNProximityPct = getEnvFloat("HVN_PROXIMITY_PCT", 0.005)
	cfg.Indicators.SwingLookback = getEnvInt("SWING_LOOKBACK", 20)
	cfg.Indicators.BookProximityPct = getEnvFloat("OB_PROXIMITY_PCT", 0.005)
	cfg.Indicators.BookImbalanceFactor = getEnvFloat("OB_IMBALANCE_FACTOR", 1.2)

	cfg.Gates.MinEfficiency = getEnvFloat("MIN_VOLUME_EFFICIENCY", 0.0002)
	cfg.Gates.WashLow = getEnvFloat("WASH_TRADE_TAKER_RATIO_LOW", 0.49)
	cfg.Gates.WashHigh = getEnvFloat("WASH_TRADE_TAKER_RATIO_HIGH", 0.51)

	cfg.Risk.SLMultiplier = getEnvFloat("ATR_SL_MULTIPLIER", 1.5)
	cfg.Risk.MinRR = getEnvFloat("MIN_RR_RATIO", 2.0)
	cfg.Risk.MaxAnchorDistancePct = getEnvFloat("MAX_ANCHOR_DISTANCE_PCT", 0.05)
	cfg.Risk.UseWicks = getEnvBool("RESOLVE_ON_WICKS", false)

	// ======================
	// БИРЖА
	// ======================
	cfg.Exchange.BaseURL = getEnv("BINANCE_BASE_URL", "https://fapi.binance.com")
	cfg.Exchange.ApiKey = getEnv("BINANCE_API_KEY", "")
	cfg.Exchange.KlineLimit = getEnvInt("OHLCV_LIMIT", 500)
	cfg.Exchange.DepthLimit = getEnvInt("ORDERBOOK_DEPTH", 50)
	cfg.Exchange.MaxRetries = getEnvInt("MAX_RETRIES", 3)
	cfg.Exchange.RetryDelay = getEnvSeconds("RETRY_DELAY_S", 2*time.Second)
	cfg.Exchange.RateLimit = time.Duration(getEnvInt("API_RATE_LIMIT_MS", 200)) * time.Millisecond
	cfg.Exchange.Timeout = getEnvDuration("EXCHANGE_TIMEOUT", 10*time.Second)

	// ======================
	// ВЕБХУК
	// ======================
	cfg.Webhook.Enabled = getEnvBool("WEBHOOK_ENABLED", false)
	cfg.Webhook.URL = getEnv("WEBHOOK_URL", "")
	cfg.Webhook.Timeout = getEnvSeconds("WEBHOOK_TIMEOUT_S", 10*time.Second)
	cfg.Webhook.Strategy = getEnv("STRATEGY_NAME", "Order Flow + Volume Profile")

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 2)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.Prefix = getEnv("REDIS_PREFIX", "neko:")
	cfg.Redis.StateTTL = getEnvDuration("REDIS_STATE_TTL", 24*time.Hour)

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "neko_signal")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.EnableAutoMigrate = getEnvBool("DB_ENABLE_AUTO_MIGRATE", true)

	// ======================
	// INFLUXDB
	// ======================
	cfg.Influx.Enabled = getEnvBool("INFLUXDB_ENABLED", false)
	cfg.Influx.URL = getEnv("INFLUXDB_URL", "http://localhost:8086")
	cfg.Influx.Token = getEnv("INFLUXDB_TOKEN", "")
	cfg.Influx.Org = getEnv("INFLUXDB_ORG", "neko")
	cfg.Influx.Bucket = getEnv("INFLUXDB_BUCKET", "neko_signal")
	cfg.Influx.Measurement = getEnv("INFLUXDB_MEASUREMENT", "market_data")
	cfg.Influx.Timeout = getEnvDuration("INFLUXDB_TIMEOUT", 5*time.Second)

	// ======================
	// ШИНА, МЕТРИКИ, ЛОГИ
	// ======================
	cfg.EventBus.BufferSize = getEnvInt("EVENT_BUS_BUFFER_SIZE", 1000)
	cfg.EventBus.WorkerCount = getEnvInt("EVENT_BUS_WORKER_COUNT", 4)
	cfg.EventBus.EnableLogging = getEnvBool("EVENT_BUS_ENABLE_LOGGING", true)

	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Metrics.Port = getEnvInt("METRICS_PORT", 9102)

	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "logs/neko-signal.log")
	cfg.Logging.Debug = getEnvBool("DEBUG_MODE", false)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ============================================
// ВАЛИДАЦИЯ
// ============================================

// validate проверяет параметры и собирает все ошибки в одну
func (c *Config) validate() error {
	var validationErrors []string

	if len(c.Scanner.Symbols) == 0 {
		validationErrors = append(validationErrors, "TRADING_PAIRS must not be empty")
	}
	if !period.IsValidPeriod(c.Scanner.Interval) {
		validationErrors = append(validationErrors, fmt.Sprintf("PRIMARY_TIMEFRAME %q is not supported", c.Scanner.Interval))
	}
	if c.Scanner.LoopInterval <= 0 {
		validationErrors = append(validationErrors, "LOOP_INTERVAL_S must be positive")
	}
	if c.Scanner.MaxWorkers <= 0 {
		validationErrors = append(validationErrors, "SCAN_MAX_WORKERS must be positive")
	}

	if c.Session.StartHour < 0 || c.Session.StartHour > 23 {
		validationErrors = append(validationErrors, "SESSION_START_UTC must be in 0..23")
	}
	if c.Session.EndHour < 0 || c.Session.EndHour > 23 {
		validationErrors = append(validationErrors, "SESSION_END_UTC must be in 0..23")
	}
	if c.Session.StartHour == c.Session.EndHour {
		validationErrors = append(validationErrors, "SESSION_START_UTC and SESSION_END_UTC must differ")
	}

	if err := c.Thresholds().Validate(); err != nil {
		validationErrors = append(validationErrors, "SCORE thresholds: "+err.Error())
	}
	if err := c.FeatureConfig().Validate(); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}
	if err := c.RiskConfig().Validate(); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if c.Gates.MinEfficiency <= 0 {
		validationErrors = append(validationErrors, "MIN_VOLUME_EFFICIENCY must be > 0")
	}
	if c.Gates.WashLow >= c.Gates.WashHigh {
		validationErrors = append(validationErrors, "WASH_TRADE_TAKER_RATIO_LOW must be below WASH_TRADE_TAKER_RATIO_HIGH")
	}

	// формирующаяся свеча отбрасывается, закрытых остаётся на одну меньше
	if need := c.FeatureConfig().MinBars() + 1; c.Exchange.KlineLimit < need {
		validationErrors = append(validationErrors,
			fmt.Sprintf("OHLCV_LIMIT must be at least %d (one kline is still forming)", need))
	}
	if c.Exchange.DepthLimit <= 0 {
		validationErrors = append(validationErrors, "ORDERBOOK_DEPTH must be positive")
	}
	if c.Exchange.MaxRetries < 1 {
		validationErrors = append(validationErrors, "MAX_RETRIES must be at least 1")
	}

	if c.Webhook.Enabled && c.Webhook.URL == "" {
		validationErrors = append(validationErrors, "WEBHOOK_URL is required when webhook is enabled")
	}
	if c.Database.Enabled {
		if c.Database.User == "" {
			validationErrors = append(validationErrors, "DB_USER is required when DB is enabled")
		}
		if c.Database.Name == "" {
			validationErrors = append(validationErrors, "DB_NAME is required when DB is enabled")
		}
	}
	if c.Influx.Enabled && c.Influx.Token == "" {
		validationErrors = append(validationErrors, "INFLUXDB_TOKEN is required when InfluxDB is enabled")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		validationErrors = append(validationErrors, "METRICS_PORT must be in 1..65535")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, "; "))
	}
	return nil
}

// Validate экспортируемая обертка
func (c *Config) Validate() error {
	return c.validate()
}

// ============================================
// ПРЕОБРАЗОВАНИЕ В ДОМЕННЫЕ КОНФИГИ
// ============================================

// FeatureConfig параметры расчёта признаков
func (c *Config) FeatureConfig() features.Config {
	return features.Config{
		OFIWindow:           c.Indicators.OFIWindow,
		CVDWindow:           c.Indicators.CVDWindow,
		ATRPeriod:           c.Indicators.ATRPeriod,
		ATRMAPeriod:         c.Indicators.ATRMAPeriod,
		ROCPeriod:           c.Indicators.ROCPeriod,
		ProfileBins:         c.Indicators.ProfileBins,
		HVNPercentile:       c.Indicators.HVNPercentile,
		HVNProximityPct:     c.Indicators.HVNProximityPct,
		SwingLookback:       c.Indicators.SwingLookback,
		BookProximityPct:    c.Indicators.BookProximityPct,
		BookImbalanceFactor: c.Indicators.BookImbalanceFactor,
		SessionStartHour:    c.Session.StartHour,
	}
}

// WashConfig параметры анти-манипуляционного фильтра
func (c *Config) WashConfig() filters.WashConfig {
	return filters.WashConfig{
		MinEfficiency: c.Gates.MinEfficiency,
		ATRPeriod:     c.Indicators.ATRPeriod,
		ATRMAPeriod:   c.Indicators.ATRMAPeriod,
		WashLow:       c.Gates.WashLow,
		WashHigh:      c.Gates.WashHigh,
	}
}

// RiskConfig параметры риск-менеджера
func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		SLMultiplier:         c.Risk.SLMultiplier,
		MinRR:                c.Risk.MinRR,
		MaxAnchorDistancePct: c.Risk.MaxAnchorDistancePct,
	}
}

// Thresholds пороги открытия
func (c *Config) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{Long: c.Scoring.LongThreshold, Short: c.Scoring.ShortThreshold}
}

// IntervalDuration длительность бара
func (c *Config) IntervalDuration() time.Duration {
	return period.MustDuration(c.Scanner.Interval)
}

// SessionWindow строка вида "12:00-21:00 UTC"
func (c *Config) SessionWindow() string {
	return fmt.Sprintf("%02d:00-%02d:00 UTC", c.Session.StartHour, c.Session.EndHour)
}

// GetPostgresDSN возвращает DSN для подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddress адрес Redis host:port
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) IsDev() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// PrintSummary выводит основные параметры
func (c *Config) PrintSummary() {
	log.Printf("📋 Конфигурация приложения:")
	log.Printf("   • Окружение: %s (v%s)", c.Environment, c.Version)
	log.Printf("   • Инструменты: %s", strings.Join(c.Scanner.Symbols, ", "))
	log.Printf("   • Таймфрейм: %s, цикл: %v, воркеров: %d", c.Scanner.Interval, c.Scanner.LoopInterval, c.Scanner.MaxWorkers)
	log.Printf("   • Сессия: %s", c.SessionWindow())
	log.Printf("   • Пороги счёта: LONG ≥ %+d, SHORT ≤ %+d", c.Scoring.LongThreshold, c.Scoring.ShortThreshold)
	log.Printf("   • Мин. RR: %.2f, SL = якорь ± %.2f×ATR", c.Risk.MinRR, c.Risk.SLMultiplier)
	log.Printf("   • Биржа: %s (klines %d, стакан %d)", c.Exchange.BaseURL, c.Exchange.KlineLimit, c.Exchange.DepthLimit)
	log.Printf("   • Вебхук: %v", c.Webhook.Enabled)
	log.Printf("   • Redis: %v (%s)", c.Redis.Enabled, c.GetRedisAddress())
	log.Printf("   • PostgreSQL: %v (%s:%d/%s)", c.Database.Enabled, c.Database.Host, c.Database.Port, c.Database.Name)
	log.Printf("   • InfluxDB: %v (%s, bucket %s)", c.Influx.Enabled, c.Influx.URL, c.Influx.Bucket)
	log.Printf("   • Метрики: %v (порт: %d)", c.Metrics.Enabled, c.Metrics.Port)
	log.Printf("   • Уровень логирования: %s", c.Logging.Level)
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := getEnv(key, ""); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvSeconds секунды дробным числом: "2.5" -> 2.5s
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if seconds, err := strconv.ParseFloat(value, 64); err == nil {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return defaultValue
}

// parseSymbols принимает "BTCUSDT" и "BTC/USDT:USDT"; пустая строка - список по умолчанию
func parseSymbols(value string) []string {
	if value == "" {
		return append([]string(nil), DefaultSymbols...)
	}

	var result []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		symbol := market.DisplaySymbol(strings.TrimSpace(part))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		result = append(result, symbol)
	}
	return result
}
