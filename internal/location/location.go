// Package location предоставляет координаты устройства и геометрию расстояний.
package location

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// earthRadiusKm равен среднему радиусу Земли.
const earthRadiusKm = 6371.0

// ErrUnknown возвращается, если местоположение устройства не определено.
var ErrUnknown = errors.New("Konumunuz belirlenemedi. Lütfen tekrar deneyin.")

// ErrInvalidCoordinate возвращается, если строку не удалось разобрать как "широта,долгота".
var ErrInvalidCoordinate = errors.New("некорректные координаты")

// Coordinate задает точку в градусах WGS84.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Valid проверяет диапазоны широты и долготы.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// ParseCoordinate разбирает строку вида "41.0082,28.9784".
func ParseCoordinate(value string) (Coordinate, error) {
	lat, lon, ok := strings.Cut(value, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, value)
	}
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: широта: %w", ErrInvalidCoordinate, err)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: долгота: %w", ErrInvalidCoordinate, err)
	}
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: вне допустимого диапазона: %q", ErrInvalidCoordinate, value)
	}
	return c, nil
}

// Distance считает расстояние по большому кругу в километрах (формула гаверсинусов).
func Distance(from, to Coordinate) float64 {
	lat1 := radians(from.Latitude)
	lat2 := radians(to.Latitude)
	dLat := lat2 - lat1
	dLon := radians(to.Longitude - from.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance печатает "850 m" для расстояний меньше километра, иначе "2.4 km".
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// Provider сообщает текущее местоположение устройства, если оно известно.
type Provider interface {
	Current() (Coordinate, bool)
}

// Static всегда возвращает одно и то же местоположение.
type Static struct {
	coordinate Coordinate
}

// NewStatic создает провайдер, всегда возвращающий c.
func NewStatic(c Coordinate) Static {
	return Static{coordinate: c}
}

func (s Static) Current() (Coordinate, bool) {
	return s.coordinate, true
}

// Settable возвращает местоположение, заданное извне (например, из интерфейса).
// Нулевое значение готово к работе и не знает местоположения.
type Settable struct {
	mu         sync.RWMutex
	coordinate Coordinate
	known      bool
}

// Set задает текущее местоположение.
func (s *Settable) Set(c Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinate = c
	s.known = true
}

// Reset забывает местоположение.
func (s *Settable) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinate = Coordinate{}
	s.known = false
}

func (s *Settable) Current() (Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coordinate, s.known
}
