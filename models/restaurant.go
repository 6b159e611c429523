package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Restaurant описывает карточку ресторана из списка.
//
// Бэкенд присылает часть полей под двумя именами (image/image_url,
// rating/average_rating, phone/phone_number). При разборе они сводятся
// к одному каноническому полю: сначала короткое имя, затем длинное.
type Restaurant struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description,omitempty"`
	Address      string        `json:"address"`
	City         *string       `json:"city,omitempty"`
	District     *string       `json:"district,omitempty"`
	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Website      *string       `json:"website,omitempty"`
	ImageURL     *string       `json:"image_url,omitempty"`
	Images       []string      `json:"images,omitempty"`
	CuisineTypes []string      `json:"cuisine_types,omitempty"`
	IsChain      *bool         `json:"is_chain,omitempty"`
	ChainName    *string       `json:"chain_name,omitempty"`
	Rating       *float64      `json:"rating,omitempty"`
	ReviewCount  *int          `json:"review_count,omitempty"`
	PriceRange   *PriceRange   `json:"price_range,omitempty"`
	OpeningHours []OpeningHour `json:"opening_hours,omitempty"`
	Features     []string      `json:"features,omitempty"`
	CreatedAt    *Timestamp    `json:"created_at,omitempty"`
	UpdatedAt    *Timestamp    `json:"updated_at,omitempty"`
	DistanceKm   *float64      `json:"distance_km,omitempty"`
}

// UnmarshalJSON реализует json.Unmarshaler: проверяет обязательные ключи и сводит дубли полей.
func (r *Restaurant) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "id", "name", "address"); err != nil {
		return fmt.Errorf("restaurant: %w", err)
	}
	type plain Restaurant
	var aux struct {
		plain
		Image         *string  `json:"image"`
		PhoneNumber   *string  `json:"phone_number"`
		AverageRating *float64 `json:"average_rating"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Restaurant(aux.plain)
	r.ImageURL = coalesce(aux.Image, aux.plain.ImageURL)
	r.Phone = coalesce(aux.plain.Phone, aux.PhoneNumber)
	r.Rating = coalesce(aux.plain.Rating, aux.AverageRating)
	return nil
}

// HasCoordinate сообщает, известны ли координаты ресторана.
func (r Restaurant) HasCoordinate() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// FullAddress возвращает адрес, район и город через запятую.
func (r Restaurant) FullAddress() string {
	parts := []string{r.Address}
	if r.District != nil && *r.District != "" {
		parts = append(parts, *r.District)
	}
	if r.City != nil && *r.City != "" {
		parts = append(parts, *r.City)
	}
	return strings.Join(parts, ", ")
}

// CuisineTypesString перечисляет типы кухни через запятую. Если их нет, возвращает пустую строку.
func (r Restaurant) CuisineTypesString() string {
	return strings.Join(r.CuisineTypes, ", ")
}

// DisplayRating возвращает рейтинг с одним знаком после запятой.
func (r Restaurant) DisplayRating() string {
	value := 0.0
	if r.Rating != nil {
		value = *r.Rating
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}

// ReviewCountText возвращает подпись к количеству отзывов.
func (r Restaurant) ReviewCountText() string {
	if r.ReviewCount == nil || *r.ReviewCount == 0 {
		return "Henüz değerlendirme yok"
	}
	return fmt.Sprintf("%d değerlendirme", *r.ReviewCount)
}

// PriceRange задает ценовую категорию от 1 до 4.
type PriceRange int

const (
	PriceBudget PriceRange = iota + 1
	PriceModerate
	PriceExpensive
	PriceLuxury
)

// UnmarshalJSON принимает число или числовую строку; все остальное считается PriceModerate.
func (p *PriceRange) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = priceRangeOf(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err = strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*p = priceRangeOf(n)
			return nil
		}
	}
	*p = PriceModerate
	return nil
}

func priceRangeOf(n int) PriceRange {
	if n < int(PriceBudget) || n > int(PriceLuxury) {
		return PriceModerate
	}
	return PriceRange(n)
}

// String возвращает название категории.
func (p PriceRange) String() string {
	switch p {
	case PriceBudget:
		return "Ekonomik"
	case PriceModerate:
		return "Orta"
	case PriceExpensive:
		return "Pahalı"
	case PriceLuxury:
		return "Lüks"
	default:
		return "Bilinmiyor"
	}
}

// Symbol повторяет знак лиры по уровню категории.
func (p PriceRange) Symbol() string {
	return strings.Repeat("₺", int(priceRangeOf(int(p))))
}

// OpeningHour описывает часы работы в один день недели. День 0 соответствует воскресенью.
type OpeningHour struct {
	DayOfWeek int    `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

var dayNames = [...]string{"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi"}

// DayName возвращает название дня недели.
func (h OpeningHour) DayName() string {
	if h.DayOfWeek < 0 || h.DayOfWeek >= len(dayNames) {
		return ""
	}
	return dayNames[h.DayOfWeek]
}

// HoursText возвращает "09:00 - 22:00" или "Kapalı".
func (h OpeningHour) HoursText() string {
	if h.IsClosed {
		return "Kapalı"
	}
	return h.OpenTime + " - " + h.CloseTime
}

// RestaurantDetail описывает расширенную карточку ресторана.
type RestaurantDetail struct {
	ID            int64      `json:"id"`
	Restaurant    Restaurant `json:"restaurant"`
	Menu          []MenuItem `json:"menu,omitempty"`
	Photos        []Photo    `json:"photos,omitempty"`
	RecentReviews []Review   `json:"recent_reviews,omitempty"`
	IsFavorite    bool       `json:"is_favorite"`
	Distance      *float64   `json:"distance,omitempty"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (d *RestaurantDetail) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "id", "restaurant", "is_favorite"); err != nil {
		return fmt.Errorf("restaurant detail: %w", err)
	}
	type plain RestaurantDetail
	return json.Unmarshal(data, (*plain)(d))
}

// MenuItem описывает позицию меню.
type MenuItem struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  *string  `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Category     string   `json:"category"`
	ImageURL     *string  `json:"image_url,omitempty"`
	IsGlutenFree bool     `json:"is_gluten_free"`
	IsVegan      *bool    `json:"is_vegan,omitempty"`
	IsVegetarian *bool    `json:"is_vegetarian,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
}

// UnmarshalJSON реализует json.Unmarshaler с проверкой обязательных ключей.
func (m *MenuItem) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "id", "name", "category", "is_gluten_free"); err != nil {
		return fmt.Errorf("menu item: %w", err)
	}
	type plain MenuItem
	return json.Unmarshal(data, (*plain)(m))
}

// PriceText возвращает цену в лирах или пустую строку.
func (m MenuItem) PriceText() string {
	if m.Price == nil {
		return ""
	}
	return fmt.Sprintf("%.2f ₺", *m.Price)
}

// Photo описывает фотографию ресторана.
type Photo struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Caption    *string   `json:"caption,omitempty"`
	UploadedBy *string   `json:"uploaded_by,omitempty"`
	UploadedAt Timestamp `json:"uploaded_at"`
}

// ChainRestaurant описывает сеть ресторанов.
type ChainRestaurant struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	LogoURL        *string      `json:"logo_url,omitempty"`
	Description    *string      `json:"description,omitempty"`
	TotalLocations int          `json:"total_locations"`
	AverageRating  float64      `json:"average_rating"`
	Locations      []Restaurant `json:"locations,omitempty"`
}

// RestaurantsResponse содержит ответ списочных эндпоинтов ресторанов:
// конверт {restaurants, total, page, page_size} или голый массив.
type RestaurantsResponse struct {
	Restaurants []Restaurant `json:"restaurants"`
	PageMeta
}

// UnmarshalJSON реализует json.Unmarshaler.
func (r *RestaurantsResponse) UnmarshalJSON(data []byte) error {
	items, meta, err := decodeList[Restaurant](data, "restaurants", "data")
	if err != nil {
		return fmt.Errorf("restaurants response: %w", err)
	}
	r.Restaurants = items
	r.PageMeta = meta
	return nil
}

// ChainRestaurantsResponse содержит ответ эндпоинта сетей.
type ChainRestaurantsResponse struct {
	Chains []ChainRestaurant `json:"chains"`
}

// UnmarshalJSON реализует json.Unmarshaler.
func (r *ChainRestaurantsResponse) UnmarshalJSON(data []byte) error {
	items, _, err := decodeList[ChainRestaurant](data, "chains", "data")
	if err != nil {
		return fmt.Errorf("chains response: %w", err)
	}
	r.Chains = items
	return nil
}

// FavoritesResponse содержит избранные рестораны пользователя.
type FavoritesResponse struct {
	Restaurants []Restaurant `json:"favorites"`
}

// UnmarshalJSON принимает конверт {favorites} или {restaurants}, а также голый массив.
func (r *FavoritesResponse) UnmarshalJSON(data []byte) error {
	items, _, err := decodeList[Restaurant](data, "favorites", "restaurants", "data")
	if err != nil {
		return fmt.Errorf("favorites response: %w", err)
	}
	r.Restaurants = items
	return nil
}
