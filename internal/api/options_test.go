//nolint:testpackage // Проверяется внутренний HTTP клиент
package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithHTTPClient(t *testing.T) {
	t.Run("Без таймаута действует значение по умолчанию", func(t *testing.T) {
		custom := &http.Client{}
		c := NewClient("http://localhost", nil, WithHTTPClient(custom))
		assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
		assert.Zero(t, custom.Timeout, "Переданный клиент не изменяется")
	})

	t.Run("Собственный таймаут сохраняется", func(t *testing.T) {
		c := NewClient("http://localhost", nil, WithHTTPClient(&http.Client{Timeout: time.Second}))
		assert.Equal(t, time.Second, c.httpClient.Timeout)
	})

	t.Run("WithTimeout не меняет переданный клиент", func(t *testing.T) {
		custom := &http.Client{}
		c := NewClient("http://localhost", nil, WithHTTPClient(custom), WithTimeout(50*time.Millisecond))
		assert.Equal(t, 50*time.Millisecond, c.httpClient.Timeout)
		assert.Zero(t, custom.Timeout)
	})

	t.Run("nil игнорируется", func(t *testing.T) {
		c := NewClient("http://localhost", nil, WithHTTPClient(nil))
		assert.NotNil(t, c.httpClient)
		assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	})
}
