package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "glutenfree-devserver"

// Ошибки проверки токена.
var (
	ErrMissingToken = errors.New("требуется аутентификация")
	ErrInvalidToken = errors.New("невалидный токен")
)

// contextKey используется для ключей контекста запроса.
type contextKey string

const (
	userIDKey contextKey = "userID"
	claimsKey contextKey = "claims"
)

// claims описывает полезную нагрузку JWT.
type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// tokens выдает и проверяет JWT (HS256).
type tokens struct {
	secret []byte
	ttl    time.Duration
	repo   *repository
}

// issue создает подписанный токен для пользователя.
func (t *tokens) issue(userID int64) (string, error) {
	now := time.Now()
	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}

// parse проверяет подпись, срок действия и отзыв токена.
func (t *tokens) parse(raw string) (*claims, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if t.repo.isRevoked(c.ID) {
		return nil, fmt.Errorf("%w: токен отозван", ErrInvalidToken)
	}
	return c, nil
}

// revoke делает токен недействительным до истечения его срока.
func (t *tokens) revoke(c *claims) {
	expires := time.Now().Add(t.ttl)
	if c.ExpiresAt != nil {
		expires = c.ExpiresAt.Time
	}
	t.repo.revoke(c.ID, expires)
}

// authenticator проверяет заголовок Authorization и кладет пользователя в контекст.
func (t *tokens) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			slog.Debug("Запрос без токена", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
			return
		}
		c, err := t.parse(raw)
		if err != nil {
			slog.Debug("Токен отклонен", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "invalid_token", ErrInvalidToken.Error(), nil)
			return
		}
		if _, err = t.repo.accountByID(c.UserID); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", ErrUserNotFound.Error(), nil)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, c.UserID)
		ctx = context.WithValue(ctx, claimsKey, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// userIDFromContext извлекает пользователя, установленного authenticator.
func userIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func claimsFromContext(ctx context.Context) (*claims, bool) {
	c, ok := ctx.Value(claimsKey).(*claims)
	return c, ok
}
