package devserver

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/maynagashev/glutenfree/models"
)

func validateReview(rating *float64, comment *string) map[string]string {
	details := map[string]string{}
	if rating != nil && (*rating < 1 || *rating > 5) {
		details["rating"] = "Puan 1 ile 5 arasında olmalıdır"
	}
	if comment != nil && strings.TrimSpace(*comment) == "" {
		details["comment"] = "Yorum boş bırakılamaz"
	}
	return details
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	reviews, err := s.repo.restaurantReviews(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Restoran bulunamadı", nil)
		return
	}
	writeJSON(w, http.StatusOK, models.ReviewsResponse{
		Reviews:            reviews,
		Total:              len(reviews),
		AverageRating:      math.Round(models.AverageRating(reviews)*10) / 10,
		RatingDistribution: distribution(reviews),
	})
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	restaurantID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.AddReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := validateReview(&req.Rating, &req.Comment); len(details) > 0 {
		validationError(w, details)
		return
	}
	acc, err := s.repo.accountByID(userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", ErrUserNotFound.Error(), nil)
		return
	}

	review, err := s.repo.createReview(models.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		UserName:     acc.user.FullName(),
		UserAvatar:   acc.user.ProfileImageURL,
		Rating:       req.Rating,
		Title:        req.Title,
		Comment:      strings.TrimSpace(req.Comment),
		VisitDate:    req.VisitDate,
		Photos:       req.Photos,
	})
	if errors.Is(err, ErrRestaurantNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Restoran bulunamadı", nil)
		return
	}
	slog.Info("Отзыв добавлен", "review_id", review.ID, "restaurant_id", restaurantID, "user_id", userID)
	message := "Değerlendirmeniz eklendi"
	writeJSON(w, http.StatusCreated, models.AddReviewResponse{Review: review, Message: &message})
}

func (s *Server) updateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	reviewID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := validateReview(req.Rating, req.Comment); len(details) > 0 {
		validationError(w, details)
		return
	}

	review, err := s.repo.updateReview(userID, reviewID, func(rv *models.Review) {
		if req.Rating != nil {
			rv.Rating = *req.Rating
		}
		if req.Title != nil {
			rv.Title = req.Title
		}
		if req.Comment != nil {
			rv.Comment = strings.TrimSpace(*req.Comment)
		}
		if req.VisitDate != nil {
			rv.VisitDate = req.VisitDate
		}
	})
	if !s.reviewError(w, err) {
		return
	}
	// Обновленный отзыв отдается без конверта.
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	reviewID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !s.reviewError(w, s.repo.deleteReview(userID, reviewID)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reviewError отправляет ответ на ошибку операции с отзывом. Возвращает true, если ошибки нет.
func (s *Server) reviewError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrReviewNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Değerlendirme bulunamadı", nil)
	case errors.Is(err, ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden", "Bu değerlendirmeyi değiştiremezsiniz", nil)
	default:
		slog.Error("Ошибка операции с отзывом", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Sunucu hatası", nil)
	}
	return false
}

func distribution(reviews []models.Review) *models.RatingDistribution {
	var d models.RatingDistribution
	for _, rv := range reviews {
		switch int(math.Round(rv.Rating)) {
		case 5:
			d.FiveStars++
		case 4:
			d.FourStars++
		case 3:
			d.ThreeStars++
		case 2:
			d.TwoStars++
		case 1:
			d.OneStar++
		}
	}
	return &d
}
