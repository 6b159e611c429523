package listing

import (
	"slices"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/models"
)

// Mode показывает, откуда получен текущий набор ресторанов.
type Mode int

const (
	ModeAll Mode = iota
	ModeSearch
	ModeNearby
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeSearch:
		return "search"
	case ModeNearby:
		return "nearby"
	default:
		return "unknown"
	}
}

// State описывает снимок списка ресторанов.
type State struct {
	Mode        Mode
	Restaurants []models.Restaurant
	// Page хранит номер последней загруженной страницы. 0 значит, что ничего не загружено.
	Page        int
	CanLoadMore bool
	Loading     bool
	Filters     api.RestaurantFilters
	// Query хранит строку последнего серверного поиска.
	Query string
	// SearchText фильтрует уже загруженные рестораны на клиенте.
	SearchText string
	Chains     []models.ChainRestaurant
	Detail     *models.RestaurantDetail
	Err        error
}

func (s State) clone() State {
	s.Restaurants = slices.Clone(s.Restaurants)
	s.Chains = slices.Clone(s.Chains)
	s.Filters = copyFilters(s.Filters)
	if s.Detail != nil {
		d := *s.Detail
		s.Detail = &d
	}
	return s
}

type (
	evFetchStarted struct {
		mode    Mode
		refresh bool
		query   string
	}
	evPageLoaded struct {
		items       []models.Restaurant
		page        int
		canLoadMore bool
	}
	evFailed         struct{ err error }
	evFiltersChanged struct{ filters api.RestaurantFilters }
	evSearchText     struct{ text string }
	evChains         struct{ chains []models.ChainRestaurant }
	evDetail         struct{ detail models.RestaurantDetail }
	evDismissed      struct{}
)

func reduce(s State, e any) State {
	switch e := e.(type) {
	case evFetchStarted:
		s.Loading = true
		s.Err = nil
		if e.refresh {
			s.Mode = e.mode
			s.Query = e.query
			s.Restaurants = nil
			s.Page = 0
			s.CanLoadMore = false
		}
		return s
	case evPageLoaded:
		s.Loading = false
		s.Restaurants = append(slices.Clone(s.Restaurants), e.items...)
		s.Page = e.page
		s.CanLoadMore = e.canLoadMore
		return s
	case evFailed:
		s.Loading = false
		s.Err = e.err
		return s
	case evFiltersChanged:
		s.Filters = e.filters
		return s
	case evSearchText:
		s.SearchText = e.text
		return s
	case evChains:
		s.Chains = e.chains
		return s
	case evDetail:
		detail := e.detail
		s.Detail = &detail
		return s
	case evDismissed:
		s.Err = nil
		return s
	default:
		return s
	}
}

// copyFilters копирует фильтры вместе со значениями под указателями.
func copyFilters(f api.RestaurantFilters) api.RestaurantFilters {
	return api.RestaurantFilters{
		City:        copyPtr(f.City),
		CuisineType: copyPtr(f.CuisineType),
		MinRating:   copyPtr(f.MinRating),
		MaxDistance: copyPtr(f.MaxDistance),
		IsChain:     copyPtr(f.IsChain),
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
