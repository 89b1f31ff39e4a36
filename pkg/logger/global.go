// pkg/logger/global.go
package logger

import (
	"os"
	"sync"
)

var (
	globalMu sync.RWMutex
	// До InitGlobal пишем в stdout на уровне INFO
	globalLogger = NewWriterLogger(os.Stdout, LevelInfo)
)

func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// SetGlobal подменяет глобальный логгер (используется в тестах)
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func GetLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	GetLogger().Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	GetLogger().Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	GetLogger().Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	GetLogger().Error(format, v...)
}

func Fatal(format string, v ...interface{}) {
	GetLogger().Fatal(format, v...)
}

func Signal(symbol, direction string, entry, takeProfit, stopLoss, rr float64, score int) {
	GetLogger().Signal(symbol, direction, entry, takeProfit, stopLoss, rr, score)
}

func Close() {
	GetLogger().Close()
}
