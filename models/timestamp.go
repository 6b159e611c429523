package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LayoutMicros задает основной формат дат бэкенда: UTC с микросекундами.
const LayoutMicros = "2006-01-02T15:04:05.000000Z"

// ErrInvalidTimestamp возвращается, если строку даты не удалось разобрать ни одним из форматов.
var ErrInvalidTimestamp = errors.New("неподдерживаемый формат даты")

// Timestamp хранит время из JSON ответа сервера.
// Сначала пробуется LayoutMicros, затем строгий ISO-8601 с дробными секундами.
type Timestamp struct {
	time.Time
}

// NewTimestamp оборачивает time.Time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp разбирает строку даты в одном из двух поддерживаемых форматов.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(LayoutMicros, value); err == nil {
		return t, nil
	}
	// RFC3339Nano в Go принимает и строку без дробной части, поэтому проверяем ее наличие сами.
	if hasFractionalSeconds(value) {
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

func hasFractionalSeconds(value string) bool {
	tIdx := strings.IndexByte(value, 'T')
	if tIdx < 0 {
		return false
	}
	dot := strings.IndexByte(value[tIdx:], '.')
	if dot < 0 {
		return false
	}
	next := tIdx + dot + 1
	return next < len(value) && value[next] >= '0' && value[next] <= '9'
}

// UnmarshalJSON реализует json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("дата должна быть строкой: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON кодирует время в основном формате сервера, чтобы его можно было разобрать обратно.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(LayoutMicros))
}
