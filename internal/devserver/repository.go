package devserver

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/maynagashev/glutenfree/models"
)

// Ошибки хранилища.
var (
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrEmailTaken         = errors.New("адрес электронной почты уже занят")
	ErrRestaurantNotFound = errors.New("ресторан не найден")
	ErrReviewNotFound     = errors.New("отзыв не найден")
	ErrNotOwner           = errors.New("отзыв принадлежит другому пользователю")
	ErrResetTokenInvalid  = errors.New("код сброса пароля недействителен")
)

// account хранит пользователя вместе с хешем пароля.
type account struct {
	user         models.User
	passwordHash []byte
}

// repository хранит данные dev-сервера в памяти процесса.
type repository struct {
	mu sync.RWMutex

	accounts     map[int64]*account
	emails       map[string]int64
	restaurants  map[int64]models.Restaurant
	menus        map[int64][]models.MenuItem
	reviews      map[int64]models.Review
	favorites    map[int64]map[int64]time.Time // пользователь -> ресторан -> время добавления
	resetTokens  map[string]int64
	revokedToken map[string]time.Time // jti -> срок действия

	nextUserID   int64
	nextReviewID int64
}

func newRepository() *repository {
	return &repository{
		accounts:     make(map[int64]*account),
		emails:       make(map[string]int64),
		restaurants:  make(map[int64]models.Restaurant),
		menus:        make(map[int64][]models.MenuItem),
		reviews:      make(map[int64]models.Review),
		favorites:    make(map[int64]map[int64]time.Time),
		resetTokens:  make(map[string]int64),
		revokedToken: make(map[string]time.Time),
	}
}

// --- Пользователи --- //

func (r *repository) createUser(user models.User, hash []byte) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.emails[user.Email]; ok {
		return models.User{}, ErrEmailTaken
	}
	r.nextUserID++
	user.ID = r.nextUserID
	user.CreatedAt = models.NewTimestamp(time.Now())
	r.accounts[user.ID] = &account{user: user, passwordHash: hash}
	r.emails[user.Email] = user.ID
	return user, nil
}

func (r *repository) accountByEmail(email string) (account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[email]
	if !ok {
		return account{}, ErrUserNotFound
	}
	return *r.accounts[id], nil
}

func (r *repository) accountByID(id int64) (account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[id]
	if !ok {
		return account{}, ErrUserNotFound
	}
	return *acc, nil
}

// updateUser применяет fn к пользователю и возвращает результат.
func (r *repository) updateUser(id int64, fn func(*models.User)) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	fn(&acc.user)
	now := models.NewTimestamp(time.Now())
	acc.user.UpdatedAt = &now
	return acc.user, nil
}

func (r *repository) setPasswordHash(id int64, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return ErrUserNotFound
	}
	acc.passwordHash = hash
	return nil
}

// deleteUser удаляет пользователя вместе с избранным и отзывами.
func (r *repository) deleteUser(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(r.emails, acc.user.Email)
	delete(r.accounts, id)
	delete(r.favorites, id)
	for reviewID, review := range r.reviews {
		if review.UserID == id {
			delete(r.reviews, reviewID)
			r.recalculateRating(review.RestaurantID)
		}
	}
	for token, userID := range r.resetTokens {
		if userID == id {
			delete(r.resetTokens, token)
		}
	}
	return nil
}

func (r *repository) saveResetToken(token string, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetTokens[token] = userID
}

// consumeResetToken возвращает владельца кода и удаляет код.
func (r *repository) consumeResetToken(token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.resetTokens[token]
	if !ok {
		return 0, ErrResetTokenInvalid
	}
	delete(r.resetTokens, token)
	return userID, nil
}

// resetTokenFor возвращает выданный пользователю код сброса.
func (r *repository) resetTokenFor(email string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[email]
	if !ok {
		return "", false
	}
	for token, userID := range r.resetTokens {
		if userID == id {
			return token, true
		}
	}
	return "", false
}

// --- Отозванные токены --- //

func (r *repository) revoke(jti string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, exp := range r.revokedToken {
		if exp.Before(now) {
			delete(r.revokedToken, id)
		}
	}
	r.revokedToken[jti] = expiresAt
}

func (r *repository) isRevoked(jti string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revokedToken[jti]
	return ok
}

// --- Рестораны --- //

func (r *repository) addRestaurant(rest models.Restaurant, menu []models.MenuItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restaurants[rest.ID] = rest
	if len(menu) > 0 {
		r.menus[rest.ID] = menu
	}
}

// listRestaurants возвращает рестораны, прошедшие фильтр, по возрастанию id.
func (r *repository) listRestaurants(keep func(models.Restaurant) bool) []models.Restaurant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Restaurant, 0, len(r.restaurants))
	for _, rest := range r.restaurants {
		if keep == nil || keep(rest) {
			out = append(out, rest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *repository) restaurant(id int64) (models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rest, ok := r.restaurants[id]
	if !ok {
		return models.Restaurant{}, ErrRestaurantNotFound
	}
	return rest, nil
}

func (r *repository) menu(restaurantID int64) []models.MenuItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.menus[restaurantID])
}

// --- Избранное --- //

func (r *repository) addFavorite(userID, restaurantID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.restaurants[restaurantID]; !ok {
		return ErrRestaurantNotFound
	}
	favs, ok := r.favorites[userID]
	if !ok {
		favs = make(map[int64]time.Time)
		r.favorites[userID] = favs
	}
	if _, exists := favs[restaurantID]; !exists {
		favs[restaurantID] = time.Now()
	}
	return nil
}

func (r *repository) removeFavorite(userID, restaurantID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.favorites[userID], restaurantID)
}

func (r *repository) isFavorite(userID, restaurantID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.favorites[userID][restaurantID]
	return ok
}

// favoriteRestaurants возвращает избранное в порядке добавления.
func (r *repository) favoriteRestaurants(userID int64) []models.Restaurant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	favs := r.favorites[userID]
	ids := make([]int64, 0, len(favs))
	for id := range favs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if favs[ids[i]].Equal(favs[ids[j]]) {
			return ids[i] < ids[j]
		}
		return favs[ids[i]].Before(favs[ids[j]])
	})
	out := make([]models.Restaurant, 0, len(ids))
	for _, id := range ids {
		if rest, ok := r.restaurants[id]; ok {
			out = append(out, rest)
		}
	}
	return out
}

// --- Отзывы --- //

// restaurantReviews возвращает отзывы ресторана, новые первыми.
func (r *repository) restaurantReviews(restaurantID int64) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.restaurants[restaurantID]; !ok {
		return nil, ErrRestaurantNotFound
	}
	out := make([]models.Review, 0)
	for _, review := range r.reviews {
		if review.RestaurantID == restaurantID {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *repository) createReview(review models.Review) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.restaurants[review.RestaurantID]; !ok {
		return models.Review{}, ErrRestaurantNotFound
	}
	r.nextReviewID++
	review.ID = r.nextReviewID
	now := models.NewTimestamp(time.Now())
	review.CreatedAt = now
	review.UpdatedAt = now
	r.reviews[review.ID] = review
	r.recalculateRating(review.RestaurantID)
	return review, nil
}

// updateReview меняет отзыв, если он принадлежит userID.
func (r *repository) updateReview(userID, reviewID int64, fn func(*models.Review)) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[reviewID]
	if !ok {
		return models.Review{}, ErrReviewNotFound
	}
	if review.UserID != userID {
		return models.Review{}, ErrNotOwner
	}
	fn(&review)
	review.UpdatedAt = models.NewTimestamp(time.Now())
	r.reviews[reviewID] = review
	r.recalculateRating(review.RestaurantID)
	return review, nil
}

func (r *repository) deleteReview(userID, reviewID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[reviewID]
	if !ok {
		return ErrReviewNotFound
	}
	if review.UserID != userID {
		return ErrNotOwner
	}
	delete(r.reviews, reviewID)
	r.recalculateRating(review.RestaurantID)
	return nil
}

// recalculateRating обновляет рейтинг и число отзывов ресторана. Вызывается под r.mu.
func (r *repository) recalculateRating(restaurantID int64) {
	rest, ok := r.restaurants[restaurantID]
	if !ok {
		return
	}
	var ratings []models.Review
	for _, review := range r.reviews {
		if review.RestaurantID == restaurantID {
			ratings = append(ratings, review)
		}
	}
	count := len(ratings)
	rest.ReviewCount = &count
	if count > 0 {
		avg := models.AverageRating(ratings)
		rest.Rating = &avg
	}
	r.restaurants[restaurantID] = rest
}
