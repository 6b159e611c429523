package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/favorites"
	"github.com/maynagashev/glutenfree/internal/listing"
	"github.com/maynagashev/glutenfree/internal/reviews"
	"github.com/maynagashev/glutenfree/internal/session"
	"github.com/maynagashev/glutenfree/models"
)

const statusMessageTimeout = 3 * time.Second

// --- Сообщения --- //

// authDoneMsg приходит, когда завершился вход или регистрация.
type authDoneMsg struct{ err error }

type loggedOutMsg struct{}

// forgotDoneMsg приходит после запроса кода сброса.
type forgotDoneMsg struct{ err error }

// restaurantsLoadedMsg приходит, когда контроллер списка обновил состояние.
type restaurantsLoadedMsg struct{ err error }

type favoritesLoadedMsg struct{ err error }

type detailLoadedMsg struct {
	detail models.RestaurantDetail
	err    error
}

type favoriteToggledMsg struct {
	added bool
	err   error
}

type reviewsLoadedMsg struct{ err error }

type reviewSavedMsg struct{ err error }

type clearStatusMsg struct{}

// --- Команды --- //

func loginCmd(s *session.Controller, email, password string) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{err: s.Login(context.Background(), email, password)}
	}
}

func registerCmd(s *session.Controller, in session.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{err: s.Register(context.Background(), in)}
	}
}

func logoutCmd(s *session.Controller) tea.Cmd {
	return func() tea.Msg {
		s.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func forgotPasswordCmd(s *session.Controller, email string) tea.Cmd {
	return func() tea.Msg {
		return forgotDoneMsg{err: s.ForgotPassword(context.Background(), email)}
	}
}

// fetchRestaurantsCmd загружает следующую страницу или список заново.
func fetchRestaurantsCmd(l *listing.Controller, refresh bool) tea.Cmd {
	return func() tea.Msg {
		return restaurantsLoadedMsg{err: l.Fetch(context.Background(), refresh)}
	}
}

func searchCmd(l *listing.Controller, query string) tea.Cmd {
	return func() tea.Msg {
		return restaurantsLoadedMsg{err: l.Search(context.Background(), query)}
	}
}

func nearbyCmd(l *listing.Controller) tea.Cmd {
	return func() tea.Msg {
		return restaurantsLoadedMsg{err: l.FetchNearby(context.Background())}
	}
}

// chainsOnlyCmd переключает фильтр is_chain.
func chainsOnlyCmd(l *listing.Controller) tea.Cmd {
	return func() tea.Msg {
		filters := l.State().Filters
		if filters.IsChain != nil && *filters.IsChain {
			filters.IsChain = nil
		} else {
			chain := true
			filters.IsChain = &chain
		}
		return restaurantsLoadedMsg{err: l.ApplyFilters(context.Background(), filters)}
	}
}

func loadFavoritesCmd(f *favorites.Controller) tea.Cmd {
	return func() tea.Msg {
		return favoritesLoadedMsg{err: f.Load(context.Background())}
	}
}

func detailCmd(l *listing.Controller, id int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := l.FetchDetail(context.Background(), id)
		return detailLoadedMsg{detail: detail, err: err}
	}
}

func toggleFavoriteCmd(f *favorites.Controller, r models.Restaurant) tea.Cmd {
	return func() tea.Msg {
		added, err := f.Toggle(context.Background(), r)
		return favoriteToggledMsg{added: added, err: err}
	}
}

func loadReviewsCmd(r *reviews.Controller, restaurantID int64) tea.Cmd {
	return func() tea.Msg {
		return reviewsLoadedMsg{err: r.Load(context.Background(), restaurantID)}
	}
}

func addReviewCmd(r *reviews.Controller, in reviews.Input) tea.Cmd {
	return func() tea.Msg {
		_, err := r.Add(context.Background(), in)
		return reviewSavedMsg{err: err}
	}
}

// clearStatusCmd отправит clearStatusMsg через delay.
func clearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// errorText формирует сообщение об ошибке с подсказкой, если она есть.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		text := apiErr.Error()
		if apiErr.ServerMessage != "" && apiErr.Kind == api.KindServer {
			text = apiErr.ServerMessage
		}
		if hint := apiErr.Suggestion(); hint != "" && !strings.Contains(text, hint) {
			text += ". " + hint
		}
		return text
	}
	return err.Error()
}
