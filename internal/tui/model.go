package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/maynagashev/glutenfree/internal/favorites"
	"github.com/maynagashev/glutenfree/internal/listing"
	"github.com/maynagashev/glutenfree/internal/location"
	"github.com/maynagashev/glutenfree/internal/reviews"
	"github.com/maynagashev/glutenfree/internal/session"
	"github.com/maynagashev/glutenfree/models"
)

// Состояния (экраны) приложения.
type screenState int

const (
	welcomeScreen    screenState = iota // Выбор: вход или регистрация
	loginScreen                         // Экран входа
	registerScreen                      // Экран регистрации
	forgotScreen                        // Запрос кода сброса пароля
	restaurantScreen                    // Список ресторанов
	detailScreen                        // Карточка ресторана
	reviewScreen                        // Форма отзыва
)

func (s screenState) String() string {
	switch s {
	case welcomeScreen:
		return "welcome"
	case loginScreen:
		return "login"
	case registerScreen:
		return "register"
	case forgotScreen:
		return "forgot"
	case restaurantScreen:
		return "restaurants"
	case detailScreen:
		return "detail"
	case reviewScreen:
		return "review"
	default:
		return "unknown"
	}
}

// Клавиши.
const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
)

// Поля форм.
const (
	loginFieldEmail = iota
	loginFieldPassword
	numLoginFields
)

const (
	registerFieldFirstName = iota
	registerFieldLastName
	registerFieldEmail
	registerFieldPassword
	registerFieldConfirm
	numRegisterFields
)

const (
	reviewFieldRating = iota
	reviewFieldTitle
	reviewFieldComment
	numReviewFields
)

// Controllers объединяет контроллеры, которыми управляет интерфейс.
type Controllers struct {
	Session   *session.Controller
	Listing   *listing.Controller
	Favorites *favorites.Controller
	Reviews   *reviews.Controller
}

// restaurantItem реализует list.Item для списка ресторанов.
type restaurantItem struct {
	restaurant models.Restaurant
	favorite   bool
}

func (i restaurantItem) Title() string {
	title := i.restaurant.Name
	if i.favorite {
		title = "♥ " + title
	}
	return title
}

func (i restaurantItem) Description() string {
	parts := []string{"★ " + i.restaurant.DisplayRating()}
	if cuisines := i.restaurant.CuisineTypesString(); cuisines != "" {
		parts = append(parts, cuisines)
	}
	if i.restaurant.City != nil {
		parts = append(parts, *i.restaurant.City)
	}
	if i.restaurant.PriceRange != nil {
		parts = append(parts, i.restaurant.PriceRange.Symbol())
	}
	if i.restaurant.DistanceKm != nil {
		parts = append(parts, location.FormatDistance(*i.restaurant.DistanceKm))
	}
	return strings.Join(parts, " | ")
}

func (i restaurantItem) FilterValue() string { return i.restaurant.Name }

// model хранит состояние TUI. Данные живут в контроллерах, модель хранит только экран и ввод.
type model struct {
	ctrl      Controllers
	state     screenState
	debugMode bool

	restaurantList list.Model
	showFavorites  bool // Список показывает избранное вместо каталога
	detail         *models.RestaurantDetail

	loginInputs    []textinput.Model
	registerInputs []textinput.Model
	reviewInputs   []textinput.Model
	forgotInput    textinput.Model
	searchInput    textinput.Model
	searching      bool // Активна строка поиска на экране списка
	serverSearch   bool // Строка поиска отправляется на сервер, а не фильтрует список
	focusedField   int  // Индекс активного поля текущей формы

	status string // Статус внизу экрана
	err    error  // Последняя ошибка для отображения

	width    int
	height   int
	docStyle lipgloss.Style
}

// Стили.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

func ratingStars(rating float64) string {
	full := int(rating + 0.5)
	full = max(0, min(full, reviews.MaxRating))
	return strings.Repeat("★", full) + strings.Repeat("☆", reviews.MaxRating-full)
}

func formatRating(rating float64) string {
	return fmt.Sprintf("%s %.1f", ratingStars(rating), rating)
}
