// internal/infrastructure/api/types.go
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError - биржа ответила не 200
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Retryable 429 и 5xx имеет смысл повторить, остальные 4xx - нет
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// IsRetryable ошибка транспорта или повторяемый статус
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var pe *ParseError
	return !errors.As(err, &pe)
}

// ParseError - ответ не удалось разобрать; повторять бессмысленно
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
