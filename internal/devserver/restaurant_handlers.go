package devserver

import (
	"errors"
	"math"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maynagashev/glutenfree/internal/location"
	"github.com/maynagashev/glutenfree/models"
)

const (
	defaultPageSize     = 20
	maxPageSize         = 100
	defaultNearbyRadius = 10.0
	recentReviewsLimit  = 3
)

// restaurantQuery хранит разобранные параметры GET /restaurants.
type restaurantQuery struct {
	city        string
	cuisineType string
	minRating   *float64
	maxDistance *float64
	isChain     *bool
	origin      *location.Coordinate
	page        int
	pageSize    int
}

func parseRestaurantQuery(r *http.Request) (restaurantQuery, map[string]string) {
	q := r.URL.Query()
	details := map[string]string{}
	parsed := restaurantQuery{
		city:        strings.TrimSpace(q.Get("city")),
		cuisineType: strings.TrimSpace(q.Get("cuisine_type")),
		page:        1,
		pageSize:    defaultPageSize,
	}

	parseFloat := func(key string) *float64 {
		raw := q.Get(key)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			details[key] = "Geçersiz sayı"
			return nil
		}
		return &v
	}
	parsed.minRating = parseFloat("min_rating")
	parsed.maxDistance = parseFloat("max_distance")
	lat, lon := parseFloat("latitude"), parseFloat("longitude")
	if lat != nil && lon != nil {
		parsed.origin = &location.Coordinate{Latitude: *lat, Longitude: *lon}
	}

	if raw := q.Get("is_chain"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details["is_chain"] = "Geçersiz değer"
		} else {
			parsed.isChain = &v
		}
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			details["page"] = "Geçersiz sayfa"
		} else {
			parsed.page = v
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			details["page_size"] = "Geçersiz sayfa boyutu"
		} else {
			parsed.pageSize = min(v, maxPageSize)
		}
	}
	return parsed, details
}

// matches применяет фильтры к ресторану. Расстояние учитывается только при известной точке отсчета.
func (q restaurantQuery) matches(lower cases.Caser, rest models.Restaurant) bool {
	if q.city != "" && (rest.City == nil || lower.String(*rest.City) != lower.String(q.city)) {
		return false
	}
	if q.cuisineType != "" {
		want := lower.String(q.cuisineType)
		if !slices.ContainsFunc(rest.CuisineTypes, func(c string) bool { return lower.String(c) == want }) {
			return false
		}
	}
	if q.minRating != nil && (rest.Rating == nil || *rest.Rating < *q.minRating) {
		return false
	}
	if q.isChain != nil && (rest.IsChain != nil && *rest.IsChain) != *q.isChain {
		return false
	}
	if q.maxDistance != nil && q.origin != nil {
		if !rest.HasCoordinate() || distanceTo(*q.origin, rest) > *q.maxDistance {
			return false
		}
	}
	return true
}

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	query, details := parseRestaurantQuery(r)
	if len(details) > 0 {
		validationError(w, details)
		return
	}
	lower := cases.Lower(language.Turkish)
	all := s.repo.listRestaurants(func(rest models.Restaurant) bool { return query.matches(lower, rest) })

	total := len(all)
	totalPages := (total + query.pageSize - 1) / query.pageSize
	start := min((query.page-1)*query.pageSize, total)
	end := min(start+query.pageSize, total)

	writeJSON(w, http.StatusOK, models.RestaurantsResponse{
		Restaurants: all[start:end],
		PageMeta: models.PageMeta{
			Total:      &total,
			Page:       &query.page,
			PageSize:   &query.pageSize,
			TotalPages: &totalPages,
		},
	})
}

func (s *Server) searchRestaurants(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		validationError(w, map[string]string{"q": "Arama metni boş bırakılamaz"})
		return
	}
	lower := cases.Lower(language.Turkish)
	needle := lower.String(text)
	found := s.repo.listRestaurants(func(rest models.Restaurant) bool {
		fields := []string{rest.Name, rest.CuisineTypesString()}
		if rest.City != nil {
			fields = append(fields, *rest.City)
		}
		if rest.District != nil {
			fields = append(fields, *rest.District)
		}
		return slices.ContainsFunc(fields, func(f string) bool { return strings.Contains(lower.String(f), needle) })
	})
	total := len(found)
	writeJSON(w, http.StatusOK, models.RestaurantsResponse{
		Restaurants: found,
		PageMeta:    models.PageMeta{Total: &total},
	})
}

func (s *Server) nearbyRestaurants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("longitude"), 64)
	origin := location.Coordinate{Latitude: lat, Longitude: lon}
	if latErr != nil || lonErr != nil || !origin.Valid() {
		validationError(w, map[string]string{"latitude": "Geçersiz konum"})
		return
	}
	radius := defaultNearbyRadius
	if raw := q.Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			validationError(w, map[string]string{"radius": "Geçersiz yarıçap"})
			return
		}
		radius = v
	}

	found := s.repo.listRestaurants(func(rest models.Restaurant) bool {
		return rest.HasCoordinate() && distanceTo(origin, rest) <= radius
	})
	for i := range found {
		d := distanceTo(origin, found[i])
		found[i].DistanceKm = &d
	}
	sort.SliceStable(found, func(i, j int) bool { return *found[i].DistanceKm < *found[j].DistanceKm })
	total := len(found)
	writeJSON(w, http.StatusOK, models.RestaurantsResponse{
		Restaurants: found,
		PageMeta:    models.PageMeta{Total: &total},
	})
}

func (s *Server) chainRestaurants(w http.ResponseWriter, _ *http.Request) {
	chained := s.repo.listRestaurants(func(rest models.Restaurant) bool {
		return rest.IsChain != nil && *rest.IsChain && rest.ChainName != nil
	})

	var chains []models.ChainRestaurant
	index := map[string]int{}
	for _, rest := range chained {
		i, ok := index[*rest.ChainName]
		if !ok {
			i = len(chains)
			index[*rest.ChainName] = i
			chains = append(chains, models.ChainRestaurant{ID: int64(i + 1), Name: *rest.ChainName})
		}
		chains[i].Locations = append(chains[i].Locations, rest)
	}
	for i := range chains {
		chains[i].TotalLocations = len(chains[i].Locations)
		var sum float64
		for _, rest := range chains[i].Locations {
			if rest.Rating != nil {
				sum += *rest.Rating
			}
		}
		chains[i].AverageRating = math.Round(sum/float64(chains[i].TotalLocations)*10) / 10
	}
	if chains == nil {
		chains = []models.ChainRestaurant{}
	}
	writeJSON(w, http.StatusOK, models.ChainRestaurantsResponse{Chains: chains})
}

func (s *Server) restaurantDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	rest, err := s.repo.restaurant(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Restoran bulunamadı", nil)
		return
	}
	reviews, _ := s.repo.restaurantReviews(id)
	if len(reviews) > recentReviewsLimit {
		reviews = reviews[:recentReviewsLimit]
	}
	writeJSON(w, http.StatusOK, models.RestaurantDetail{
		ID:            rest.ID,
		Restaurant:    rest,
		Menu:          s.repo.menu(id),
		RecentReviews: reviews,
		IsFavorite:    s.repo.isFavorite(userID, id),
	})
}

// --- Избранное --- //

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.FavoritesResponse{Restaurants: s.repo.favoriteRestaurants(userID)})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "restaurantID")
	if !ok {
		return
	}
	if err := s.repo.addFavorite(userID, id); errors.Is(err, ErrRestaurantNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Restoran bulunamadı", nil)
		return
	}
	writeMessage(w, http.StatusCreated, "Favorilere eklendi")
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "restaurantID")
	if !ok {
		return
	}
	s.repo.removeFavorite(userID, id)
	writeMessage(w, http.StatusOK, "Favorilerden çıkarıldı")
}

func distanceTo(origin location.Coordinate, rest models.Restaurant) float64 {
	return location.Distance(origin, location.Coordinate{Latitude: *rest.Latitude, Longitude: *rest.Longitude})
}
