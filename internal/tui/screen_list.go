package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/glutenfree/internal/listing"
)

// syncRestaurantList переносит рестораны из контроллеров в компонент списка.
func (m *model) syncRestaurantList() {
	favState := m.ctrl.Favorites.State()
	source := m.ctrl.Listing.Filtered()
	title := "Glutensiz Restoranlar"
	if m.showFavorites {
		source = favState.Restaurants
		title = "Favorilerim"
	} else if st := m.ctrl.Listing.State(); st.Mode == listing.ModeSearch {
		title = fmt.Sprintf("Arama: %q", st.Query)
	} else if st.Mode == listing.ModeNearby {
		title = "Yakınımdaki Restoranlar"
	}

	items := make([]list.Item, 0, len(source))
	for _, r := range source {
		items = append(items, restaurantItem{restaurant: r, favorite: favState.Contains(r.ID)})
	}
	m.restaurantList.Title = title
	m.restaurantList.SetItems(items)
}

func (m *model) selectedRestaurant() (restaurantItem, bool) {
	item, ok := m.restaurantList.SelectedItem().(restaurantItem)
	return item, ok
}

// updateRestaurantScreen обрабатывает клавиши списка ресторанов.
func (m *model) updateRestaurantScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearchInput(msg)
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.restaurantList, cmd = m.restaurantList.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyEnter:
		if item, found := m.selectedRestaurant(); found {
			m.status = "Yükleniyor..."
			return m, detailCmd(m.ctrl.Listing, item.restaurant.ID)
		}
		return m, nil
	case "/":
		m.searching, m.serverSearch = true, false
		m.searchInput.SetValue(m.ctrl.Listing.State().SearchText)
		return m, m.searchInput.Focus()
	case "s":
		m.searching, m.serverSearch = true, true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()
	case "r":
		m.showFavorites = false
		m.ctrl.Listing.SetSearchText("")
		return m, fetchRestaurantsCmd(m.ctrl.Listing, true)
	case "n":
		m.showFavorites = false
		return m, nearbyCmd(m.ctrl.Listing)
	case "c":
		m.showFavorites = false
		return m, chainsOnlyCmd(m.ctrl.Listing)
	case "f":
		m.showFavorites = !m.showFavorites
		m.syncRestaurantList()
		if m.showFavorites {
			return m, loadFavoritesCmd(m.ctrl.Favorites)
		}
		return m, nil
	case "o":
		return m, logoutCmd(m.ctrl.Session)
	case keyQuit:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.restaurantList, cmd = m.restaurantList.Update(msg)
	return m, tea.Batch(cmd, m.maybeLoadMore())
}

// maybeLoadMore запрашивает следующую страницу, когда курсор дошел до конца списка.
func (m *model) maybeLoadMore() tea.Cmd {
	if m.showFavorites {
		return nil
	}
	st := m.ctrl.Listing.State()
	if !st.CanLoadMore || st.Loading || st.SearchText != "" {
		return nil
	}
	if m.restaurantList.Index() < len(m.restaurantList.Items())-1 {
		return nil
	}
	return fetchRestaurantsCmd(m.ctrl.Listing, false)
}

// updateSearchInput: "/" фильтрует загруженный список, "s" ищет на сервере.
func (m *model) updateSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			m.searching = false
			m.searchInput.Blur()
			m.ctrl.Listing.SetSearchText("")
			m.syncRestaurantList()
			return m, nil
		case keyEnter:
			m.searching = false
			m.searchInput.Blur()
			if m.serverSearch {
				m.status = "Aranıyor..."
				return m, searchCmd(m.ctrl.Listing, m.searchInput.Value())
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if !m.serverSearch {
		m.ctrl.Listing.SetSearchText(m.searchInput.Value())
		m.syncRestaurantList()
	}
	return m, cmd
}

func (m *model) viewRestaurantScreen() string {
	var b strings.Builder
	st := m.ctrl.Listing.State()
	if m.ctrl.Listing.HasActiveFilters() {
		b.WriteString(accentStyle.Render("Filtre etkin") + "\n")
	}
	if m.searching {
		prompt := "Listede filtrele: "
		if m.serverSearch {
			prompt = "Sunucuda ara: "
		}
		b.WriteString(subtleStyle.Render(prompt) + m.searchInput.View() + "\n")
	}
	if len(m.restaurantList.Items()) == 0 && !st.Loading {
		b.WriteString(subtleStyle.Render("Restoran bulunamadı") + "\n")
	}
	b.WriteString(m.restaurantList.View())
	if st.Loading {
		b.WriteString("\n" + subtleStyle.Render("Yükleniyor..."))
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(errorText(m.err)))
	}
	return b.String()
}

// handleRestaurantsLoaded обновляет экран после загрузки списка.
func (m *model) handleRestaurantsLoaded(msg restaurantsLoadedMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case errors.Is(msg.err, listing.ErrBusy):
		return m, nil
	case msg.err != nil:
		m.err = msg.err
	default:
		m.err = nil
	}
	m.syncRestaurantList()
	return m, nil
}
