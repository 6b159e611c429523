package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// User представляет пользователя приложения.
// Запись неизменяемая: обновления приходят только новым ответом сервера.
type User struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	PhoneNumber       *string    `json:"phone_number,omitempty"`
	ProfileImageURL   *string    `json:"profile_image_url,omitempty"`
	PreferredLanguage *string    `json:"preferred_language,omitempty"`
	CreatedAt         Timestamp  `json:"created_at"`
	UpdatedAt         *Timestamp `json:"updated_at,omitempty"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (u *User) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "id", "email", "first_name", "last_name", "created_at"); err != nil {
		return fmt.Errorf("user: %w", err)
	}
	type plain User
	return json.Unmarshal(data, (*plain)(u))
}

// FullName возвращает имя и фамилию через пробел.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials возвращает заглавные первые буквы имени и фамилии.
func (u User) Initials() string {
	return firstUpper(u.FirstName) + firstUpper(u.LastName)
}

func firstUpper(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// LoginRequest описывает тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest описывает тело запроса на регистрацию.
type RegisterRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
}

// ForgotPasswordRequest запрашивает письмо для сброса пароля.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest устанавливает новый пароль по токену из письма.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest меняет пароль авторизованного пользователя.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest частично обновляет профиль. Отсутствующие поля не отправляются.
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// LoginResponse содержит ответ на успешный вход.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (r *LoginResponse) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "access_token", "token_type", "user"); err != nil {
		return fmt.Errorf("login response: %w", err)
	}
	type plain LoginResponse
	return json.Unmarshal(data, (*plain)(r))
}

// RegisterResponse содержит ответ на успешную регистрацию.
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (r *RegisterResponse) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "user"); err != nil {
		return fmt.Errorf("register response: %w", err)
	}
	type plain RegisterResponse
	return json.Unmarshal(data, (*plain)(r))
}

// RefreshTokenResponse содержит новый токен доступа.
type RefreshTokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (r *RefreshTokenResponse) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "access_token"); err != nil {
		return fmt.Errorf("refresh response: %w", err)
	}
	type plain RefreshTokenResponse
	return json.Unmarshal(data, (*plain)(r))
}

// MessageResponse описывает типовой ответ {success, message} для операций без полезной нагрузки.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse описывает тело ошибки бэкенда.
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
