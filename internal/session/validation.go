package session

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

// ValidationError сообщает об ошибке в пользовательском вводе до обращения к сети.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail проверяет адрес по упрощенному шаблону.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func validateEmail(email string) *ValidationError {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "E-posta adresi boş bırakılamaz")
	}
	if !IsValidEmail(email) {
		return invalid("email", "Geçerli bir e-posta adresi girin")
	}
	return nil
}

func validateName(field, value, emptyMsg, shortMsg string) *ValidationError {
	value = strings.TrimSpace(value)
	if value == "" {
		return invalid(field, emptyMsg)
	}
	if utf8.RuneCountInString(value) < minNameLength {
		return invalid(field, shortMsg)
	}
	return nil
}

// validateNewPassword проверяет новый пароль и его подтверждение.
func validateNewPassword(field, password, confirm string) *ValidationError {
	if password == "" {
		return invalid(field, "Şifre boş bırakılamaz")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid(field, "Şifre en az 6 karakter olmalıdır")
	}
	if confirm == "" {
		return invalid("password_confirm", "Şifre onayı boş bırakılamaz")
	}
	if password != confirm {
		return invalid("password_confirm", "Şifreler eşleşmiyor")
	}
	return nil
}

// ValidateLogin проверяет форму входа.
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return invalid("password", "Şifre boş bırakılamaz")
	}
	return nil
}

// RegisterInput содержит данные формы регистрации.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
	PhoneNumber     *string
}

// Validate проверяет форму регистрации в порядке полей на экране.
func (in RegisterInput) Validate() error {
	if err := validateName("first_name", in.FirstName,
		"Ad boş bırakılamaz", "Ad en az 2 karakter olmalıdır"); err != nil {
		return err
	}
	if err := validateName("last_name", in.LastName,
		"Soyad boş bırakılamaz", "Soyad en az 2 karakter olmalıdır"); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validateNewPassword("password", in.Password, in.PasswordConfirm); err != nil {
		return err
	}
	return nil
}

// ProfileInput содержит изменяемые поля профиля. Поле со значением nil не меняется.
type ProfileInput struct {
	FirstName       *string
	LastName        *string
	PhoneNumber     *string
	ProfileImageURL *string
}

// Validate проверяет только заданные поля.
func (in ProfileInput) Validate() error {
	if in.FirstName != nil {
		if err := validateName("first_name", *in.FirstName,
			"Ad boş bırakılamaz", "Ad en az 2 karakter olmalıdır"); err != nil {
			return err
		}
	}
	if in.LastName != nil {
		if err := validateName("last_name", *in.LastName,
			"Soyad boş bırakılamaz", "Soyad en az 2 karakter olmalıdır"); err != nil {
			return err
		}
	}
	return nil
}
