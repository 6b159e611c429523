package devserver

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/maynagashev/glutenfree/models"
)

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	acc, err := s.repo.accountByID(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Kullanıcı bulunamadı", nil)
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	details := map[string]string{}
	if req.FirstName != nil && utf8.RuneCountInString(strings.TrimSpace(*req.FirstName)) < 2 {
		details["first_name"] = "Ad en az 2 karakter olmalıdır"
	}
	if req.LastName != nil && utf8.RuneCountInString(strings.TrimSpace(*req.LastName)) < 2 {
		details["last_name"] = "Soyad en az 2 karakter olmalıdır"
	}
	if len(details) > 0 {
		validationError(w, details)
		return
	}

	user, err := s.repo.updateUser(userID, func(u *models.User) {
		if req.FirstName != nil {
			u.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			u.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.PhoneNumber != nil {
			u.PhoneNumber = req.PhoneNumber
		}
		if req.ProfileImageURL != nil {
			u.ProfileImageURL = req.ProfileImageURL
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Kullanıcı bulunamadı", nil)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acc, err := s.repo.accountByID(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Kullanıcı bulunamadı", nil)
		return
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.CurrentPassword)) != nil {
		validationError(w, map[string]string{"current_password": "Mevcut şifre hatalı"})
		return
	}
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLength {
		validationError(w, map[string]string{"new_password": "Şifre en az 6 karakter olmalıdır"})
		return
	}
	if !s.storePassword(w, userID, req.NewPassword) {
		return
	}
	slog.Info("Пароль изменен", "user_id", userID)
	writeMessage(w, http.StatusOK, "Şifreniz değiştirildi")
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := s.repo.deleteUser(userID); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Kullanıcı bulunamadı", nil)
		return
	}
	if c, ok := claimsFromContext(r.Context()); ok {
		s.tokens.revoke(c)
	}
	slog.Info("Аккаунт удален", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
