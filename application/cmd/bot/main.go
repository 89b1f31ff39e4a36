// application/cmd/bot/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"neko-signal-bot/application/bootstrap"
	"neko-signal-bot/internal/infrastructure/config"
	"neko-signal-bot/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	var (
		env         string
		cfgPath     string
		logLevel    string
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&env, "env", "dev", "Окружение (dev/prod)")
	flag.StringVar(&cfgPath, "config", "", "Путь к файлу конфигурации (переопределяет env)")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}
	if showHelp {
		printHelp()
		return
	}

	configFile := resolveConfigFile(env, cfgPath)

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.Error("❌ Не удалось загрузить конфигурацию: %v", err)
		os.Exit(1)
	}
	cfg.Environment = env
	if cfg.Version == "" {
		cfg.Version = version
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Debug); err != nil {
		fmt.Printf("❌ Не удалось инициализировать файловый логгер: %v. Переход на консольный...\n", err)
		if err := logger.InitGlobal("", cfg.Logging.Level, cfg.Logging.Debug); err != nil {
			fmt.Printf("❌ Не удалось инициализировать консольный логгер: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Close()

	logger.Info("🐱 Neko Signal Bot v%s (сборка: %s)", version, buildTime)
	cfg.PrintSummary()

	app, err := bootstrap.NewAppBuilder().WithConfig(cfg).Build()
	if err != nil {
		logger.Error("❌ Не удалось собрать приложение: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx); err != nil {
		logger.Error("❌ Ошибка запуска приложения: %v", err)
		os.Exit(1)
	}
	logger.Info("🛑 Нажмите Ctrl+C для остановки")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("📶 Получен сигнал: %v", sig)

	cancel()
	if err := app.Stop(); err != nil {
		logger.Error("❌ Ошибка остановки приложения: %v", err)
		os.Exit(1)
	}
}

// resolveConfigFile: явный путь, затем configs/<env>/.env, затем .env
func resolveConfigFile(env, explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := filepath.Join("configs", env, ".env")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	logger.Warn("⚠️  %s не найден, используется .env", candidate)
	return ".env"
}

func printVersion() {
	fmt.Printf("🐱 Neko Signal Bot v%s\n", version)
	fmt.Printf("📅 Сборка: %s\n", buildTime)
	fmt.Println("📊 Стратегия: Order Flow + Volume Profile, Binance USDⓈ-M")
}

func printHelp() {
	fmt.Println("🐱 Neko Signal Bot")
	fmt.Println("Сканер фьючерсов Binance: сигналы по потоку ордеров и профилю объёма с виртуальным сопровождением позиций")
	fmt.Println()
	fmt.Println("Использование: bot [опции]")
	fmt.Println()
	fmt.Println("Опции:")
	fmt.Println("  --env string       Окружение (dev/prod) (по умолчанию: dev)")
	fmt.Println("  --config string    Путь к файлу конфигурации (переопределяет env)")
	fmt.Println("  --log-level string Уровень логирования: debug, info, warn, error")
	fmt.Println("  --version          Показать информацию о версии")
	fmt.Println("  --help             Показать это справочное сообщение")
	fmt.Println()
	fmt.Println("Основные переменные окружения:")
	fmt.Println("  TRADING_PAIRS      Список пар через запятую (BTCUSDT,ETHUSDT)")
	fmt.Println("  PRIMARY_TIMEFRAME  Таймфрейм свечей (1m, 5m, 15m...)")
	fmt.Println("  LOOP_INTERVAL_S    Пауза между циклами, секунды")
	fmt.Println("  SESSION_START_UTC  Начало торговой сессии, час UTC")
	fmt.Println("  SESSION_END_UTC    Конец торговой сессии, час UTC")
	fmt.Println("  WEBHOOK_ENABLED    Отправка сигналов на вебхук")
	fmt.Println("  REDIS_ENABLED      Зеркало состояния пар в Redis")
	fmt.Println("  DB_ENABLED         Журнал сигналов в PostgreSQL")
	fmt.Println("  INFLUXDB_ENABLED   Экспорт снимков рынка в InfluxDB")
	fmt.Println("  METRICS_PORT       Порт /metrics, /healthz, /status")
}
