package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maynagashev/glutenfree/internal/tokenstore"
	"github.com/maynagashev/glutenfree/models"
)

const (
	// VersionPrefix добавляется к базовому URL перед путем операции.
	VersionPrefix = "/api/v1"
	// DefaultTimeout ограничивает время одного запроса.
	DefaultTimeout = 30 * time.Second
	// TokenKey задает ключ токена доступа в хранилище.
	TokenKey = "access_token"

	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// TokenStore описывает хранилище, через которое клиент читает и пишет токен доступа.
type TokenStore interface {
	Save(key, value string) error
	Get(key string) (string, bool)
	Delete(key string) error
}

// Requester выполняет вызов бэкенда. Контроллеры зависят от него, а не от *Client.
type Requester interface {
	// Do выполняет запрос. При body == nil тело не отправляется, при out == nil ответ не декодируется.
	Do(ctx context.Context, endpoint Endpoint, body, out any) error
}

// Client выполняет все запросы к бэкенду. Другого сетевого кода в клиенте нет.
type Client struct {
	baseURL    string       // Базовый URL сервера, например "http://localhost:8000"
	httpClient *http.Client // HTTP клиент с ограничением времени
	tokens     TokenStore   // Хранилище токена доступа
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент (для тестов и нестандартного транспорта).
// Переданный клиент копируется. Если у него не задан Timeout, действует DefaultTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		custom := *hc
		if custom.Timeout <= 0 {
			custom.Timeout = DefaultTimeout
		}
		c.httpClient = &custom
	}
}

// WithTimeout задает ограничение времени на запрос.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient создает клиент. Если tokens == nil, токен хранится в памяти процесса.
func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = tokenstore.NewMemory()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает базовый URL сервера.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken сохраняет токен доступа. Ошибка хранилища не фатальна: она логируется,
// а следующий запрос просто уйдет без токена.
func (c *Client) SetToken(token string) {
	if err := c.tokens.Save(TokenKey, token); err != nil {
		slog.Warn("Не удалось сохранить токен доступа", "error", err)
	}
}

// ClearToken удаляет токен доступа.
func (c *Client) ClearToken() {
	if err := c.tokens.Delete(TokenKey); err != nil {
		slog.Warn("Не удалось удалить токен доступа", "error", err)
	}
}

// Token возвращает текущий токен доступа, если он есть.
func (c *Client) Token() (string, bool) {
	token, ok := c.tokens.Get(TokenKey)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// HasToken сообщает, сохранен ли токен доступа.
func (c *Client) HasToken() bool {
	_, ok := c.Token()
	return ok
}

// Do выполняет запрос к эндпоинту. Любая ошибка возвращается как *Error.
func (c *Client) Do(ctx context.Context, endpoint Endpoint, body, out any) error {
	req, err := c.newRequest(ctx, endpoint, body)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	logger := slog.With(
		"request_id", requestID,
		"method", endpoint.Method(),
		"path", endpoint.Path(),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := transportError(err)
		logger.Warn("Ошибка выполнения запроса",
			"kind", apiErr.Kind.String(), "error", err, "duration", time.Since(start))
		return apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(err)
		logger.Warn("Ошибка чтения ответа",
			"kind", apiErr.Kind.String(), "error", err, "status", resp.StatusCode)
		return apiErr
	}

	if apiErr := StatusError(resp.StatusCode); apiErr != nil {
		if apiErr.Kind == KindServer {
			attachServerMessage(apiErr, data)
		}
		logger.Warn("Сервер вернул ошибку",
			"kind", apiErr.Kind.String(), "status", resp.StatusCode, "duration", time.Since(start))
		return apiErr
	}

	logger.Debug("Запрос выполнен", "status", resp.StatusCode, "duration", time.Since(start))

	if out == nil {
		return nil
	}
	return decodeBody(data, out)
}

// newRequest собирает HTTP запрос: URL, тело, заголовки и авторизацию.
func (c *Client) newRequest(ctx context.Context, endpoint Endpoint, body any) (*http.Request, error) {
	target, err := c.buildURL(endpoint)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, encErr := json.Marshal(body)
		if encErr != nil {
			return nil, newError(KindEncoding, encErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, endpoint.Method(), target, reader)
	if err != nil {
		return nil, newError(KindInvalidURL, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	// Если токена нет, запрос все равно уходит: решение об авторизации принимает сервер.
	if endpoint.RequiresAuth() {
		if token, ok := c.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// buildURL собирает базовый URL, префикс версии, путь и параметры запроса в заданном порядке.
func (c *Client) buildURL(endpoint Endpoint) (string, error) {
	u, err := url.Parse(c.baseURL + VersionPrefix + endpoint.Path())
	if err != nil {
		return "", newError(KindInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", newError(KindInvalidURL, &url.Error{Op: "parse", URL: c.baseURL, Err: errMissingHost})
	}
	if params := endpoint.QueryItems(); len(params) > 0 {
		u.RawQuery = encodeQuery(params)
	}
	return u.String(), nil
}

var errMissingHost = errors.New("в базовом URL нет схемы или хоста")

// encodeQuery кодирует параметры, сохраняя порядок (url.Values сортирует ключи).
func encodeQuery(params []QueryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// attachServerMessage добавляет к ошибке сообщение из тела ответа, если его удалось разобрать.
func attachServerMessage(apiErr *Error, data []byte) {
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}
	var payload models.ErrorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	apiErr.ServerMessage = payload.Message
	apiErr.ServerCode = payload.Code
	apiErr.Details = payload.Details
}

// decodeBody разбирает JSON ответа в out. Подробности ошибки остаются в логе и в Unwrap.
func decodeBody(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return newError(KindNoData, nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Debug("Ошибка декодирования ответа", "error", err)
		return newError(KindDecoding, err)
	}
	return nil
}

// Request выполняет запрос и декодирует ответ в T.
func Request[T any](ctx context.Context, r Requester, endpoint Endpoint, body any) (T, error) {
	var out T
	if err := r.Do(ctx, endpoint, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Send выполняет запрос, успешный ответ которого не несет данных.
func Send(ctx context.Context, r Requester, endpoint Endpoint, body any) error {
	return r.Do(ctx, endpoint, body, nil)
}
