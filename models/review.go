package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Review описывает отзыв пользователя о ресторане.
type Review struct {
	ID           int64      `json:"id"`
	RestaurantID int64      `json:"restaurant_id"`
	UserID       int64      `json:"user_id"`
	UserName     string     `json:"user_name"`
	UserAvatar   *string    `json:"user_avatar,omitempty"`
	Rating       float64    `json:"rating"`
	Title        *string    `json:"title,omitempty"`
	Comment      string     `json:"comment"`
	VisitDate    *Timestamp `json:"visit_date,omitempty"`
	Photos       []string   `json:"photos,omitempty"`
	IsVerified   bool       `json:"is_verified"`
	HelpfulCount int        `json:"helpful_count"`
	CreatedAt    Timestamp  `json:"created_at"`
	UpdatedAt    Timestamp  `json:"updated_at"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (r *Review) UnmarshalJSON(data []byte) error {
	err := requireKeys(data, "id", "restaurant_id", "user_id", "user_name", "rating", "comment", "created_at", "updated_at")
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}
	type plain Review
	return json.Unmarshal(data, (*plain)(r))
}

// DisplayRating возвращает оценку с одним знаком после запятой.
func (r Review) DisplayRating() string {
	return strconv.FormatFloat(r.Rating, 'f', 1, 64)
}

// AddReviewRequest описывает тело запроса на добавление отзыва.
type AddReviewRequest struct {
	RestaurantID int64      `json:"restaurant_id"`
	Rating       float64    `json:"rating"`
	Title        *string    `json:"title,omitempty"`
	Comment      string     `json:"comment"`
	VisitDate    *Timestamp `json:"visit_date,omitempty"`
	Photos       []string   `json:"photos,omitempty"`
}

// UpdateReviewRequest частично обновляет отзыв.
type UpdateReviewRequest struct {
	Rating    *float64   `json:"rating,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Comment   *string    `json:"comment,omitempty"`
	VisitDate *Timestamp `json:"visit_date,omitempty"`
}

// AddReviewResponse содержит ответ на добавление или обновление отзыва.
type AddReviewResponse struct {
	Review  Review  `json:"review"`
	Message *string `json:"message,omitempty"`
}

// UnmarshalJSON принимает как конверт {review, message}, так и сам отзыв.
func (r *AddReviewResponse) UnmarshalJSON(data []byte) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("add review response: %w", err)
	}
	if raw, ok := envelope["review"]; ok && !isNull(raw) {
		type plain AddReviewResponse
		return json.Unmarshal(data, (*plain)(r))
	}
	r.Message = nil
	return json.Unmarshal(data, &r.Review)
}

// RatingDistribution хранит распределение оценок по звездам.
type RatingDistribution struct {
	FiveStars  int `json:"five_stars"`
	FourStars  int `json:"four_stars"`
	ThreeStars int `json:"three_stars"`
	TwoStars   int `json:"two_stars"`
	OneStar    int `json:"one_star"`
}

// Total возвращает общее количество оценок.
func (d RatingDistribution) Total() int {
	return d.FiveStars + d.FourStars + d.ThreeStars + d.TwoStars + d.OneStar
}

// Percentage возвращает долю оценок rating (1..5) в процентах.
func (d RatingDistribution) Percentage(rating int) float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	var count int
	switch rating {
	case 5:
		count = d.FiveStars
	case 4:
		count = d.FourStars
	case 3:
		count = d.ThreeStars
	case 2:
		count = d.TwoStars
	case 1:
		count = d.OneStar
	}
	return float64(count) / float64(total) * 100
}

// Adjust меняет на delta счетчик звезд, соответствующий оценке rating.
// Оценка округляется до целой звезды, счетчик не опускается ниже нуля.
func (d *RatingDistribution) Adjust(rating float64, delta int) {
	var counter *int
	switch max(1, min(5, int(math.Round(rating)))) {
	case 5:
		counter = &d.FiveStars
	case 4:
		counter = &d.FourStars
	case 3:
		counter = &d.ThreeStars
	case 2:
		counter = &d.TwoStars
	default:
		counter = &d.OneStar
	}
	*counter = max(0, *counter+delta)
}

// ReviewsResponse содержит отзывы ресторана со сводкой.
type ReviewsResponse struct {
	Reviews            []Review            `json:"reviews"`
	Total              int                 `json:"total"`
	AverageRating      float64             `json:"average_rating"`
	RatingDistribution *RatingDistribution `json:"rating_distribution,omitempty"`
}

// UnmarshalJSON принимает конверт со сводкой или голый массив отзывов.
// Для голого массива сводка вычисляется на клиенте.
func (r *ReviewsResponse) UnmarshalJSON(data []byte) error {
	items, _, err := decodeList[Review](data, "reviews", "data")
	if err != nil {
		return fmt.Errorf("reviews response: %w", err)
	}

	var summary struct {
		Total              *int                `json:"total"`
		AverageRating      *float64            `json:"average_rating"`
		RatingDistribution *RatingDistribution `json:"rating_distribution"`
	}
	// У голого массива сводки нет, ее считаем сами.
	if !isArray(data) {
		if err = json.Unmarshal(data, &summary); err != nil {
			return fmt.Errorf("reviews summary: %w", err)
		}
	}

	r.Reviews = items
	r.RatingDistribution = summary.RatingDistribution
	r.Total = len(items)
	if summary.Total != nil {
		r.Total = *summary.Total
	}
	if summary.AverageRating != nil {
		r.AverageRating = *summary.AverageRating
	} else {
		r.AverageRating = AverageRating(items)
	}
	return nil
}

// AverageRating считает среднюю оценку набора отзывов. Для пустого набора возвращает 0.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return sum / float64(len(reviews))
}
