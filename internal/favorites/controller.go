// Package favorites управляет избранными ресторанами пользователя.
package favorites

import (
	"context"
	"log/slog"
	"slices"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/state"
	"github.com/maynagashev/glutenfree/models"
)

// State описывает снимок избранного.
type State struct {
	Restaurants []models.Restaurant
	Loading     bool
	Err         error
}

// Contains сообщает, есть ли ресторан в избранном.
func (s State) Contains(id int64) bool {
	return slices.ContainsFunc(s.Restaurants, func(r models.Restaurant) bool { return r.ID == id })
}

func (s State) clone() State {
	s.Restaurants = slices.Clone(s.Restaurants)
	return s
}

type (
	evLoadStarted struct{}
	evLoaded      struct{ items []models.Restaurant }
	evAdded       struct{ restaurant models.Restaurant }
	evRemoved     struct{ id int64 }
	evFailed      struct{ err error }
)

func reduce(s State, e any) State {
	switch e := e.(type) {
	case evLoadStarted:
		s.Loading = true
		s.Err = nil
	case evLoaded:
		s.Loading = false
		s.Restaurants = e.items
	case evAdded:
		s.Err = nil
		if !s.Contains(e.restaurant.ID) {
			s.Restaurants = append(slices.Clone(s.Restaurants), e.restaurant)
		}
	case evRemoved:
		s.Err = nil
		s.Restaurants = slices.DeleteFunc(slices.Clone(s.Restaurants),
			func(r models.Restaurant) bool { return r.ID == e.id })
	case evFailed:
		s.Loading = false
		s.Err = e.err
	}
	return s
}

// Controller владеет списком избранного. Локальный список меняется только после ответа сервера.
type Controller struct {
	client api.Requester
	store  *state.Store[State]
}

// NewController создает контроллер с пустым избранным.
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

// Load загружает избранное с сервера.
func (c *Controller) Load(ctx context.Context) error {
	c.dispatch(evLoadStarted{})
	resp, err := api.Request[models.FavoritesResponse](ctx, c.client, api.Favorites(), nil)
	if err != nil {
		return c.fail("Не удалось загрузить избранное", err)
	}
	c.dispatch(evLoaded{items: resp.Restaurants})
	return nil
}

// IsFavorite сообщает, есть ли ресторан в загруженном избранном.
func (c *Controller) IsFavorite(id int64) bool {
	return c.State().Contains(id)
}

// Add добавляет ресторан в избранное.
func (c *Controller) Add(ctx context.Context, restaurant models.Restaurant) error {
	if err := api.Send(ctx, c.client, api.AddFavorite(restaurant.ID), nil); err != nil {
		return c.fail("Не удалось добавить в избранное", err)
	}
	c.dispatch(evAdded{restaurant: restaurant})
	slog.Debug("Ресторан добавлен в избранное", "restaurant_id", restaurant.ID)
	return nil
}

// Remove удаляет ресторан из избранного.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	if err := api.Send(ctx, c.client, api.RemoveFavorite(id), nil); err != nil {
		return c.fail("Не удалось удалить из избранного", err)
	}
	c.dispatch(evRemoved{id: id})
	slog.Debug("Ресторан удален из избранного", "restaurant_id", id)
	return nil
}

// Toggle переключает ресторан и возвращает, находится ли он теперь в избранном.
func (c *Controller) Toggle(ctx context.Context, restaurant models.Restaurant) (bool, error) {
	if c.IsFavorite(restaurant.ID) {
		if err := c.Remove(ctx, restaurant.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := c.Add(ctx, restaurant); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) fail(msg string, err error) error {
	slog.Warn(msg, "error", err, "kind", api.KindOf(err).String())
	c.dispatch(evFailed{err: err})
	return err
}
