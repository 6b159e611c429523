package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldError описывает структурное несоответствие ответа: ключ отсутствует или равен null.
type FieldError struct {
	Key    string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("поле %q: %s", e.Key, e.Reason)
}

const (
	reasonMissing = "отсутствует"
	reasonNull    = "равно null"
)

var jsonNull = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// isArray сообщает, что JSON-документ является массивом.
func isArray(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("["))
}

// requireKeys проверяет, что обязательные ключи объекта присутствуют и не равны null.
// encoding/json сам по себе молча пропускает такие ключи.
func requireKeys(data []byte, keys ...string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			return &FieldError{Key: key, Reason: reasonMissing}
		}
		if isNull(value) {
			return &FieldError{Key: key, Reason: reasonNull}
		}
	}
	return nil
}

// coalesce возвращает первый не-nil указатель.
func coalesce[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// PageMeta хранит метаданные пагинации из конверта списка.
type PageMeta struct {
	Total      *int `json:"total,omitempty"`
	Page       *int `json:"page,omitempty"`
	PageSize   *int `json:"page_size,omitempty"`
	TotalPages *int `json:"total_pages,omitempty"`
}

// HasNextPage сообщает, есть ли еще страницы. Без метаданных ответ считается последней страницей.
func (m PageMeta) HasNextPage() bool {
	if m.Page == nil || m.TotalPages == nil {
		return false
	}
	return *m.Page < *m.TotalPages
}

// decodeList разбирает ответ списочного эндпоинта.
// Сначала пробуется конверт {<field>: [...], total, page, ...}, затем голый массив.
func decodeList[T any](data []byte, fields ...string) ([]T, PageMeta, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err == nil {
		for _, field := range fields {
			rawItems, ok := envelope[field]
			if !ok || isNull(rawItems) {
				continue
			}
			var items []T
			if err = json.Unmarshal(rawItems, &items); err != nil {
				return nil, PageMeta{}, fmt.Errorf("поле %q: %w", field, err)
			}
			var meta PageMeta
			if err = json.Unmarshal(data, &meta); err != nil {
				return nil, PageMeta{}, fmt.Errorf("метаданные пагинации: %w", err)
			}
			return items, meta, nil
		}
		return nil, PageMeta{}, &FieldError{Key: fields[0], Reason: reasonMissing}
	}

	// Бэкенд вернул голый массив.
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, PageMeta{}, err
	}
	return items, PageMeta{}, nil
}
