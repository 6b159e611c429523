package devserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/maynagashev/glutenfree/internal/session"
	"github.com/maynagashev/glutenfree/models"
)

const minPasswordLength = 6

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	email := session.NormalizeEmail(req.Email)
	details := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(req.FirstName)) < 2 {
		details["first_name"] = "Ad en az 2 karakter olmalıdır"
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.LastName)) < 2 {
		details["last_name"] = "Soyad en az 2 karakter olmalıdır"
	}
	if !session.IsValidEmail(email) {
		details["email"] = "Geçerli bir e-posta adresi girin"
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		details["password"] = "Şifre en az 6 karakter olmalıdır"
	} else if req.Password != req.PasswordConfirm {
		details["password_confirm"] = "Şifreler eşleşmiyor"
	}
	if len(details) > 0 {
		validationError(w, details)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Ошибка хеширования пароля", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
		return
	}
	user, err := s.repo.createUser(models.User{
		Email:       email,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		PhoneNumber: req.PhoneNumber,
	}, hash)
	if errors.Is(err, ErrEmailTaken) {
		writeError(w, http.StatusConflict, "email_taken", "Bu e-posta adresi zaten kayıtlı", nil)
		return
	}
	if err != nil {
		slog.Error("Ошибка создания пользователя", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
		return
	}
	slog.Info("Пользователь зарегистрирован", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, models.RegisterResponse{Message: "Kayıt başarılı", User: user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acc, err := s.repo.accountByEmail(session.NormalizeEmail(req.Email))
	if err == nil {
		err = bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password))
	}
	if err != nil {
		// Несуществующий пользователь и неверный пароль неразличимы.
		slog.Info("Неудачная попытка входа", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "E-posta veya şifre hatalı", nil)
		return
	}

	token, err := s.tokens.issue(acc.user.ID)
	if err != nil {
		slog.Error("Ошибка выдачи токена", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
		return
	}
	slog.Info("Пользователь вошел", "user_id", acc.user.ID)
	writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: token, TokenType: "bearer", User: acc.user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, ok := claimsFromContext(r.Context()); ok {
		s.tokens.revoke(c)
		slog.Info("Пользователь вышел", "user_id", c.UserID)
	}
	writeMessage(w, http.StatusOK, "Çıkış yapıldı")
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrMissingToken.Error(), nil)
		return
	}
	token, err := s.tokens.issue(c.UserID)
	if err != nil {
		slog.Error("Ошибка выдачи токена", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
		return
	}
	s.tokens.revoke(c)
	writeJSON(w, http.StatusOK, models.RefreshTokenResponse{AccessToken: token})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	email := session.NormalizeEmail(req.Email)
	if acc, err := s.repo.accountByEmail(email); err == nil {
		code := uuid.NewString()
		s.repo.saveResetToken(code, acc.user.ID)
		// Почты у dev-сервера нет, код доступен в логе.
		slog.Info("Выдан код сброса пароля", "user_id", acc.user.ID, "code", code)
	}
	// Ответ не раскрывает, зарегистрирован ли адрес.
	writeMessage(w, http.StatusOK, "Şifre sıfırlama bağlantısı e-posta adresinize gönderildi")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLength {
		validationError(w, map[string]string{"new_password": "Şifre en az 6 karakter olmalıdır"})
		return
	}
	userID, err := s.repo.consumeResetToken(strings.TrimSpace(req.Token))
	if err != nil {
		validationError(w, map[string]string{"token": "Sıfırlama kodu geçersiz"})
		return
	}
	if !s.storePassword(w, userID, req.NewPassword) {
		return
	}
	writeMessage(w, http.StatusOK, "Şifreniz güncellendi")
}

// storePassword хеширует и сохраняет пароль. При ошибке ответ уже отправлен.
func (s *Server) storePassword(w http.ResponseWriter, userID int64, password string) bool {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Ошибка хеширования пароля", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
		return false
	}
	if err = s.repo.setPasswordHash(userID, hash); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Kullanıcı bulunamadı", nil)
		return false
	}
	return true
}
