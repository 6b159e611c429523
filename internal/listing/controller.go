// Package listing управляет списком ресторанов: страницы, фильтры, поиск и рестораны рядом.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/location"
	"github.com/maynagashev/glutenfree/internal/state"
	"github.com/maynagashev/glutenfree/models"
)

const (
	// PageSize задает размер страницы списка ресторанов.
	PageSize = 20
	// DefaultRadiusKm используется для поиска рядом, если фильтр расстояния не задан.
	DefaultRadiusKm = 10.0
)

// ErrBusy сигнализирует, что загрузка списка уже выполняется.
var ErrBusy = errors.New("restoranlar zaten yükleniyor")

// Controller владеет списком ресторанов. Одновременно выполняется не более одной загрузки списка.
type Controller struct {
	client   api.Requester
	location location.Provider
	store    *state.Store[State]
	fetching atomic.Bool
}

// NewController создает контроллер. provider может быть nil: тогда местоположение неизвестно.
func NewController(client api.Requester, provider location.Provider) *Controller {
	if provider == nil {
		provider = &location.Settable{}
	}
	return &Controller{
		client:   client,
		location: provider,
		store:    state.New(State{}, State.clone),
	}
}

// State возвращает снимок состояния.
func (c *Controller) State() State {
	return c.store.Get()
}

// Subscribe возвращает канал снимков и функцию отписки.
func (c *Controller) Subscribe() (<-chan State, func()) {
	return c.store.Subscribe()
}

func (c *Controller) dispatch(e any) State {
	return c.store.Update(func(s State) State { return reduce(s, e) })
}

// DismissError сбрасывает последнюю ошибку.
func (c *Controller) DismissError() {
	c.dispatch(evDismissed{})
}

// Fetch загружает следующую страницу с текущими фильтрами. refresh начинает список заново.
// Без refresh вызов ничего не делает, если последняя страница уже получена.
func (c *Controller) Fetch(ctx context.Context, refresh bool) error {
	if !c.fetching.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.fetching.Store(false)
	return c.fetchPage(ctx, refresh)
}

// fetchPage выполняет загрузку страницы. Флаг fetching уже установлен вызывающим.
func (c *Controller) fetchPage(ctx context.Context, refresh bool) error {
	current := c.State()
	if !refresh && current.Mode == ModeAll && current.Page > 0 && !current.CanLoadMore {
		slog.Debug("Все страницы уже загружены", "page", current.Page)
		return nil
	}
	if !refresh && current.Mode != ModeAll {
		// Результаты поиска и выборка рядом не разбиты на страницы.
		return nil
	}

	page := current.Page + 1
	if refresh {
		page = 1
	}
	c.dispatch(evFetchStarted{mode: ModeAll, refresh: refresh})

	filters := current.Filters
	ep := api.Restaurants(&filters, &api.Page{Number: page, Size: PageSize})
	resp, err := api.Request[models.RestaurantsResponse](ctx, c.client, ep, nil)
	if err != nil {
		return c.fail("Не удалось загрузить рестораны", err)
	}

	canLoadMore := len(resp.Restaurants) >= PageSize
	if resp.TotalPages != nil {
		canLoadMore = canLoadMore && resp.HasNextPage()
	}
	c.dispatch(evPageLoaded{items: resp.Restaurants, page: page, canLoadMore: canLoadMore})
	slog.Debug("Страница ресторанов загружена",
		"page", page, "count", len(resp.Restaurants), "can_load_more", canLoadMore)
	return nil
}

// Search выполняет серверный поиск. Пустой запрос равнозначен Fetch(ctx, true).
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Fetch(ctx, true)
	}
	if !c.fetching.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.fetching.Store(false)

	c.dispatch(evFetchStarted{mode: ModeSearch, refresh: true, query: query})
	resp, err := api.Request[models.RestaurantsResponse](ctx, c.client, api.SearchRestaurants(query), nil)
	if err != nil {
		return c.fail("Ошибка поиска ресторанов", err)
	}
	c.dispatch(evPageLoaded{items: resp.Restaurants, page: 1})
	return nil
}

// FetchNearby загружает рестораны вокруг текущего местоположения.
// Без известного местоположения возвращает location.ErrUnknown и не обращается к сети.
func (c *Controller) FetchNearby(ctx context.Context) error {
	here, ok := c.location.Current()
	if !ok {
		c.dispatch(evFailed{err: location.ErrUnknown})
		return location.ErrUnknown
	}
	if !c.fetching.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.fetching.Store(false)

	current := c.State()
	radius := DefaultRadiusKm
	if current.Filters.MaxDistance != nil && *current.Filters.MaxDistance > 0 {
		radius = *current.Filters.MaxDistance
	}

	c.dispatch(evFetchStarted{mode: ModeNearby, refresh: true})
	ep := api.NearbyRestaurants(here.Latitude, here.Longitude, radius)
	resp, err := api.Request[models.RestaurantsResponse](ctx, c.client, ep, nil)
	if err != nil {
		return c.fail("Не удалось загрузить рестораны рядом", err)
	}
	c.dispatch(evPageLoaded{items: withDistances(resp.Restaurants, here), page: 1})
	return nil
}

// ApplyFilters заменяет фильтры и загружает список заново.
// Во время другой загрузки фильтры не меняются, возвращается ErrBusy.
func (c *Controller) ApplyFilters(ctx context.Context, filters api.RestaurantFilters) error {
	if !c.fetching.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.fetching.Store(false)

	c.dispatch(evFiltersChanged{filters: copyFilters(filters)})
	return c.fetchPage(ctx, true)
}

// ClearFilters сбрасывает фильтры и загружает список заново.
func (c *Controller) ClearFilters(ctx context.Context) error {
	return c.ApplyFilters(ctx, api.RestaurantFilters{})
}

// HasActiveFilters сообщает, задан ли хотя бы один фильтр.
func (c *Controller) HasActiveFilters() bool {
	filters := c.State().Filters
	return !filters.IsEmpty()
}

// SetSearchText задает клиентский фильтр. Сервер не вызывается.
func (c *Controller) SetSearchText(text string) {
	c.dispatch(evSearchText{text: text})
}

// Filtered возвращает загруженные рестораны, название или кухня которых
// содержат строку клиентского фильтра без учета регистра.
func (c *Controller) Filtered() []models.Restaurant {
	s := c.State()
	return FilterRestaurants(s.Restaurants, s.SearchText)
}

// FilterRestaurants отбирает рестораны по названию и типам кухни без обращения к серверу.
// Регистр сравнивается по правилам турецкого языка (İ/i, I/ı).
func FilterRestaurants(restaurants []models.Restaurant, text string) []models.Restaurant {
	text = strings.TrimSpace(text)
	if text == "" {
		return restaurants
	}
	lower := cases.Lower(language.Turkish)
	needle := lower.String(text)

	var out []models.Restaurant
	for _, r := range restaurants {
		if strings.Contains(lower.String(r.Name), needle) ||
			strings.Contains(lower.String(r.CuisineTypesString()), needle) {
			out = append(out, r)
		}
	}
	return out
}

// FetchChains загружает список сетей ресторанов.
func (c *Controller) FetchChains(ctx context.Context) error {
	resp, err := api.Request[models.ChainRestaurantsResponse](ctx, c.client, api.ChainRestaurants(), nil)
	if err != nil {
		return c.fail("Не удалось загрузить сети ресторанов", err)
	}
	c.dispatch(evChains{chains: resp.Chains})
	return nil
}

// FetchDetail загружает карточку ресторана и сохраняет ее в состоянии.
func (c *Controller) FetchDetail(ctx context.Context, id int64) (models.RestaurantDetail, error) {
	detail, err := api.Request[models.RestaurantDetail](ctx, c.client, api.RestaurantDetail(id), nil)
	if err != nil {
		return models.RestaurantDetail{}, c.fail("Не удалось загрузить ресторан", err)
	}
	if here, ok := c.location.Current(); ok && detail.Distance == nil && detail.Restaurant.HasCoordinate() {
		km := location.Distance(here, coordinateOf(detail.Restaurant))
		detail.Distance = &km
	}
	c.dispatch(evDetail{detail: detail})
	return detail, nil
}

func (c *Controller) fail(msg string, err error) error {
	slog.Warn(msg, "error", err, "kind", api.KindOf(err).String())
	c.dispatch(evFailed{err: err})
	return err
}

// withDistances дополняет рестораны расстоянием от точки, если сервер его не прислал.
func withDistances(restaurants []models.Restaurant, here location.Coordinate) []models.Restaurant {
	for i := range restaurants {
		r := &restaurants[i]
		if r.DistanceKm != nil || !r.HasCoordinate() {
			continue
		}
		km := location.Distance(here, coordinateOf(*r))
		r.DistanceKm = &km
	}
	return restaurants
}

func coordinateOf(r models.Restaurant) location.Coordinate {
	return location.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}
