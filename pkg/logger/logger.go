// pkg/logger/logger.go

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Уровни логирования
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

var levelPriority = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

type Logger struct {
	mu        sync.Mutex
	logFile   *os.File
	out       io.Writer
	logLevel  string
	debugMode bool
	now       func() time.Time
}

// NewLogger пишет в stdout и, если указан путь, дополнительно в файл
func NewLogger(logPath string, logLevel string, debug bool) (*Logger, error) {
	l := &Logger{
		out:       os.Stdout,
		logLevel:  normalizeLevel(logLevel),
		debugMode: debug,
		now:       time.Now,
	}

	if logPath == "" {
		return l, nil
	}

	if dir := filepath.Dir(logPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("logger: create dir %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", logPath, err)
	}

	l.logFile = file
	l.out = io.MultiWriter(os.Stdout, file)
	return l, nil
}

// NewWriterLogger логгер без файла, пишет в произвольный writer (тесты, pipe)
func NewWriterLogger(w io.Writer, logLevel string) *Logger {
	return &Logger{
		out:      w,
		logLevel: normalizeLevel(logLevel),
		now:      time.Now,
	}
}

func normalizeLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "WARNING" {
		return LevelWarn
	}
	if _, ok := levelPriority[level]; !ok {
		return LevelInfo
	}
	return level
}

// shouldLog проверяет, нужно ли логировать сообщение на данном уровне
func (l *Logger) shouldLog(level string) bool {
	return levelPriority[level] >= levelPriority[l.logLevel]
}

func (l *Logger) log(level string, format string, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	timestamp := l.now().UTC().Format("2006-01-02 15:04:05")

	color, reset := "", ""
	if l.debugMode {
		switch level {
		case LevelDebug:
			color = "\033[36m" // Cyan
		case LevelInfo:
			color = "\033[32m" // Green
		case LevelWarn:
			color = "\033[33m" // Yellow
		case LevelError:
			color = "\033[31m" // Red
		case LevelFatal:
			color = "\033[35m" // Magenta
		}
		reset = "\033[0m"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s[%s] %s %s%s\n", color, level, timestamp, msg, reset)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, format, v...)
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log(LevelFatal, format, v...)
	l.Close()
	os.Exit(1)
}

// Level возвращает текущий уровень
func (l *Logger) Level() string {
	return l.logLevel
}

// Status печатает блок статуса системы
func (l *Logger) Status(stats map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.out, strings.Repeat("─", 50))
	fmt.Fprintln(l.out, "📊 СТАТУС СИСТЕМЫ")
	for key, value := range stats {
		fmt.Fprintf(l.out, "   %-20s: %s\n", key, value)
	}
	fmt.Fprintln(l.out, strings.Repeat("─", 50))
}

// Signal логирует открытие виртуальной позиции
func (l *Logger) Signal(symbol, direction string, entry, takeProfit, stopLoss, rr float64, score int) {
	icon := "🟢"
	if direction == "SHORT" {
		icon = "🔴"
	}
	l.Info("%s СИГНАЛ %s %s: вход=%.4f TP=%.4f SL=%.4f RR=%.2f счёт=%+d",
		icon, direction, symbol, entry, takeProfit, stopLoss, rr, score)
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
}
