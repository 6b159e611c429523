// Package reviews управляет отзывами о ресторане: список со сводкой, добавление, изменение, удаление.
package reviews

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/state"
	"github.com/maynagashev/glutenfree/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ValidationError сообщает об ошибке в форме отзыва до обращения к сети.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	// ErrInvalidRating сигнализирует об оценке вне диапазона 1..5.
	ErrInvalidRating = &ValidationError{Field: "rating", Message: "Puan 1 ile 5 arasında olmalıdır"}
	// ErrEmptyComment сигнализирует о пустом тексте отзыва.
	ErrEmptyComment = &ValidationError{Field: "comment", Message: "Yorum boş bırakılamaz"}
	// ErrNoRestaurant возвращается, если отзывы еще не загружались.
	ErrNoRestaurant = errors.New("reviews: restaurant not loaded")
)

// Input содержит данные формы отзыва.
type Input struct {
	Rating    float64
	Title     string
	Comment   string
	VisitDate *time.Time
}

// Validate проверяет оценку и текст.
func (in Input) Validate() error {
	if in.Rating < MinRating || in.Rating > MaxRating {
		return ErrInvalidRating
	}
	if strings.TrimSpace(in.Comment) == "" {
		return ErrEmptyComment
	}
	return nil
}

func (in Input) title() *string {
	t := strings.TrimSpace(in.Title)
	if t == "" {
		return nil
	}
	return &t
}

func (in Input) visitDate() *models.Timestamp {
	if in.VisitDate == nil {
		return nil
	}
	ts := models.NewTimestamp(*in.VisitDate)
	return &ts
}

// State описывает снимок отзывов выбранного ресторана.
type State struct {
	RestaurantID  int64
	Reviews       []models.Review
	Total         int
	AverageRating float64
	Distribution  *models.RatingDistribution
	Loading       bool
	Submitting    bool
	Err           error
	Notice        string
}

func (s State) clone() State {
	s.Reviews = slices.Clone(s.Reviews)
	if s.Distribution != nil {
		d := *s.Distribution
		s.Distribution = &d
	}
	return s
}

type (
	evLoadStarted   struct{ restaurantID int64 }
	evLoaded        struct{ resp models.ReviewsResponse }
	evSubmitStarted struct{}
	evSaved         struct {
		review  models.Review
		notice  string
		created bool
	}
	evDeleted struct{ id int64 }
	evFailed  struct{ err error }
)

func reduce(s State, e any) State {
	switch e := e.(type) {
	case evLoadStarted:
		if s.RestaurantID != e.restaurantID {
			s = State{RestaurantID: e.restaurantID}
		}
		s.Loading = true
		s.Err = nil
	case evLoaded:
		s.Loading = false
		s.Reviews = e.resp.Reviews
		s.Total = e.resp.Total
		s.AverageRating = e.resp.AverageRating
		s.Distribution = e.resp.RatingDistribution
	case evSubmitStarted:
		s.Submitting = true
		s.Err = nil
		s.Notice = ""
	case evSaved:
		s.Submitting = false
		s.Notice = e.notice
		reviews := slices.Clone(s.Reviews)
		i := slices.IndexFunc(reviews, func(r models.Review) bool { return r.ID == e.review.ID })
		switch {
		case e.created:
			reviews = append([]models.Review{e.review}, reviews...)
			s = withRating(s, e.review.Rating, 1)
		case i >= 0:
			s = withRating(s, reviews[i].Rating, -1)
			s = withRating(s, e.review.Rating, 1)
			reviews[i] = e.review
		}
		s.Reviews = reviews
	case evDeleted:
		s.Submitting = false
		if i := slices.IndexFunc(s.Reviews, func(r models.Review) bool { return r.ID == e.id }); i >= 0 {
			s = withRating(s, s.Reviews[i].Rating, -1)
			s.Reviews = slices.Delete(slices.Clone(s.Reviews), i, i+1)
		}
	case evFailed:
		s.Loading = false
		s.Submitting = false
		s.Err = e.err
	}
	return s
}

// withRating добавляет (delta = 1) или убирает (delta = -1) одну оценку из сводки.
// Сводка пересчитывается от значений сервера: загружен может быть не весь список.
func withRating(s State, rating float64, delta int) State {
	sum := s.AverageRating*float64(s.Total) + rating*float64(delta)
	s.Total = max(0, s.Total+delta)
	s.AverageRating = 0
	if s.Total > 0 {
		s.AverageRating = sum / float64(s.Total)
	}
	if s.Distribution != nil {
		d := *s.Distribution
		d.Adjust(rating, delta)
		s.Distribution = &d
	}
	return s
}

// Controller владеет отзывами одного ресторана за раз.
type Controller struct {
	client api.Requester
	store  *state.Store[State]
}

func NewController(client api.Requester) *Controller {
	return &Controller{client: client, store: state.New(State{}, State.clone)}
}

// State возвращает снимок состояния.
func (c *Controller) State() State {
	return c.store.Get()
}

// Subscribe возвращает канал снимков и функцию отписки.
func (c *Controller) Subscribe() (<-chan State, func()) {
	return c.store.Subscribe()
}

func (c *Controller) dispatch(e any) {
	c.store.Update(func(s State) State { return reduce(s, e) })
}

// Load загружает отзывы ресторана. Смена ресторана сбрасывает прежний список.
func (c *Controller) Load(ctx context.Context, restaurantID int64) error {
	c.dispatch(evLoadStarted{restaurantID: restaurantID})
	resp, err := api.Request[models.ReviewsResponse](ctx, c.client, api.Reviews(restaurantID), nil)
	if err != nil {
		return c.fail("Не удалось загрузить отзывы", err)
	}
	c.dispatch(evLoaded{resp: resp})
	return nil
}

// Add публикует отзыв о загруженном ресторане.
func (c *Controller) Add(ctx context.Context, in Input) (models.Review, error) {
	restaurantID := c.State().RestaurantID
	if restaurantID == 0 {
		return models.Review{}, ErrNoRestaurant
	}
	if err := in.Validate(); err != nil {
		c.dispatch(evFailed{err: err})
		return models.Review{}, err
	}

	req := models.AddReviewRequest{
		RestaurantID: restaurantID,
		Rating:       in.Rating,
		Title:        in.title(),
		Comment:      strings.TrimSpace(in.Comment),
		VisitDate:    in.visitDate(),
	}
	c.dispatch(evSubmitStarted{})
	resp, err := api.Request[models.AddReviewResponse](ctx, c.client, api.AddReview(restaurantID), req)
	if err != nil {
		return models.Review{}, c.fail("Не удалось добавить отзыв", err)
	}
	c.dispatch(evSaved{review: resp.Review, notice: messageOr(resp.Message, "Değerlendirmeniz eklendi"), created: true})
	slog.Info("Отзыв добавлен", "restaurant_id", restaurantID, "review_id", resp.Review.ID)
	return resp.Review, nil
}

// Update изменяет отзыв пользователя.
func (c *Controller) Update(ctx context.Context, reviewID int64, in Input) (models.Review, error) {
	if err := in.Validate(); err != nil {
		c.dispatch(evFailed{err: err})
		return models.Review{}, err
	}
	comment := strings.TrimSpace(in.Comment)
	req := models.UpdateReviewRequest{
		Rating:    &in.Rating,
		Title:     in.title(),
		Comment:   &comment,
		VisitDate: in.visitDate(),
	}
	c.dispatch(evSubmitStarted{})
	resp, err := api.Request[models.AddReviewResponse](ctx, c.client, api.UpdateReview(reviewID), req)
	if err != nil {
		return models.Review{}, c.fail("Не удалось изменить отзыв", err)
	}
	c.dispatch(evSaved{review: resp.Review, notice: messageOr(resp.Message, "Değerlendirmeniz güncellendi")})
	return resp.Review, nil
}

// Delete удаляет отзыв.
func (c *Controller) Delete(ctx context.Context, reviewID int64) error {
	c.dispatch(evSubmitStarted{})
	if err := api.Send(ctx, c.client, api.DeleteReview(reviewID), nil); err != nil {
		return c.fail("Не удалось удалить отзыв", err)
	}
	c.dispatch(evDeleted{id: reviewID})
	return nil
}

func (c *Controller) fail(msg string, err error) error {
	slog.Warn(msg, "error", err, "kind", api.KindOf(err).String())
	c.dispatch(evFailed{err: err})
	return err
}

func messageOr(message *string, fallback string) string {
	if message != nil && strings.TrimSpace(*message) != "" {
		return *message
	}
	return fallback
}
