// Package tui реализует терминальный интерфейс клиента: вход, список ресторанов, карточку ресторана и отзывы.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	helpStatusHeightOffset = 3 // Строки помощи и статуса
	inputWidthOffset       = 4
)

// helpText содержит подсказку по клавишам для каждого экрана.
var helpText = map[screenState]string{
	welcomeScreen:    "l: giriş • r: kayıt • q: çıkış",
	loginScreen:      "enter: devam • tab: sonraki alan • esc: geri",
	registerScreen:   "enter: devam • tab: sonraki alan • esc: geri",
	forgotScreen:     "enter: gönder • esc: geri",
	restaurantScreen: "enter: detay • /: filtrele • s: ara • n: yakınımda • c: zincirler • f: favoriler • r: yenile • o: çıkış yap • q: çıkış",
	detailScreen:     "f: favori • w: değerlendir • esc: geri • q: çıkış",
	reviewScreen:     "enter: devam/gönder • tab: sonraki alan • esc: vazgeç",
}

// Init возвращает команду для запуска. Для восстановленной сессии сразу грузится список.
func (m *model) Init() tea.Cmd {
	if m.state == restaurantScreen {
		return tea.Batch(fetchRestaurantsCmd(m.ctrl.Listing, true), loadFavoritesCmd(m.ctrl.Favorites))
	}
	return textinput.Blink
}

// setStatusMessage показывает статус и очищает его по таймеру.
func (m *model) setStatusMessage(status string) (tea.Model, tea.Cmd) {
	m.status = status
	return m, clearStatusCmd(statusMessageTimeout)
}

// Update обрабатывает входящие сообщения.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case loggedOutMsg:
		return m.handleLoggedOut()

	case forgotDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.forgotInput.Blur()
		cmd := m.openForm(loginScreen, m.loginInputs)
		_, statusCmd := m.setStatusMessage(m.ctrl.Session.State().Notice)
		return m, tea.Batch(cmd, statusCmd)

	case restaurantsLoadedMsg:
		return m.handleRestaurantsLoaded(msg)

	case favoritesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		m.syncRestaurantList()
		return m, nil

	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case favoriteToggledMsg:
		return m.handleFavoriteToggled(msg)

	case reviewsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case reviewSavedMsg:
		return m.handleReviewSaved(msg)

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == keyCtrlC {
			return m, tea.Quit
		}
	}

	// Сессия могла завершиться в фоне (например, токен истек).
	if m.state >= restaurantScreen && !m.ctrl.Session.State().IsAuthenticated() {
		slog.Info("Сессия завершена, возврат на стартовый экран")
		m.err = m.ctrl.Session.State().Err
		return m.handleLoggedOut()
	}

	switch m.state {
	case welcomeScreen:
		return m.updateWelcomeScreen(msg)
	case loginScreen:
		return m.updateLoginScreen(msg)
	case registerScreen:
		return m.updateRegisterScreen(msg)
	case forgotScreen:
		return m.updateForgotScreen(msg)
	case restaurantScreen:
		return m.updateRestaurantScreen(msg)
	case detailScreen:
		return m.updateDetailScreen(msg)
	case reviewScreen:
		return m.updateReviewScreen(msg)
	}
	return m, nil
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	h, v := m.docStyle.GetFrameSize()
	m.restaurantList.SetSize(width-h, height-v-helpStatusHeightOffset)
	inputWidth := max(width-h-inputWidthOffset, initInputWidth)
	for _, inputs := range [][]textinput.Model{m.loginInputs, m.registerInputs, m.reviewInputs} {
		for i := range inputs {
			inputs[i].Width = inputWidth
		}
	}
	m.searchInput.Width = inputWidth
	m.forgotInput.Width = inputWidth
}

func (m *model) mainContentView() string {
	switch m.state {
	case welcomeScreen:
		return m.viewWelcomeScreen()
	case loginScreen:
		return m.viewLoginScreen()
	case registerScreen:
		return m.viewRegisterScreen()
	case forgotScreen:
		return m.viewForgotScreen()
	case restaurantScreen:
		return m.viewRestaurantScreen()
	case detailScreen:
		return m.viewDetailScreen()
	case reviewScreen:
		return m.viewReviewScreen()
	default:
		return "Bilinmeyen ekran"
	}
}

func (m *model) debugInfo() string {
	var b strings.Builder
	sess := m.ctrl.Session.State()
	list := m.ctrl.Listing.State()
	fmt.Fprintf(&b, " [Screen: %s]\n", m.state)
	fmt.Fprintf(&b, " [Session: %s]\n", sess.Status)
	fmt.Fprintf(&b, " [Mode: %s, page: %d, more: %t, items: %d]\n",
		list.Mode, list.Page, list.CanLoadMore, len(list.Restaurants))
	fmt.Fprintf(&b, " [Favorites: %d]\n", len(m.ctrl.Favorites.State().Restaurants))
	return b.String()
}

// View отрисовывает интерфейс.
func (m *model) View() string {
	var footer strings.Builder
	if m.status != "" {
		footer.WriteString("\n" + accentStyle.Render(m.status))
	}
	if m.debugMode {
		footer.WriteString("\n\n---\nDebug:\n")
		footer.WriteString(m.debugInfo())
	}
	return fmt.Sprintf("%s\n%s%s",
		m.docStyle.Render(m.mainContentView()), subtleStyle.Render(helpText[m.state]), footer.String())
}

// Start запускает интерфейс и блокируется до выхода пользователя.
func Start(ctrl Controllers, debugMode bool) error {
	m := newModel(ctrl, debugMode)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("Ошибка при запуске TUI", "error", err)
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	return nil
}
