package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/glutenfree/internal/location"
	"github.com/maynagashev/glutenfree/internal/reviews"
)

const detailReviewsLimit = 5

func (m *model) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	detail := msg.detail
	m.detail = &detail
	m.err = nil
	m.state = detailScreen
	return m, loadReviewsCmd(m.ctrl.Reviews, detail.Restaurant.ID)
}

func (m *model) updateDetailScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.detail == nil {
		return m, nil
	}
	switch keyMsg.String() {
	case keyEsc, "b":
		m.state = restaurantScreen
		m.err = nil
		m.syncRestaurantList()
		return m, nil
	case "f":
		return m, toggleFavoriteCmd(m.ctrl.Favorites, m.detail.Restaurant)
	case "w":
		resetInputs(m.reviewInputs)
		return m, m.openForm(reviewScreen, m.reviewInputs)
	case keyQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) viewDetailScreen() string {
	if m.detail == nil {
		return "Yükleniyor..."
	}
	r := m.detail.Restaurant
	var b strings.Builder

	title := r.Name
	if m.ctrl.Favorites.IsFavorite(r.ID) {
		title += " ♥"
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(subtleStyle.Render(r.FullAddress()) + "\n\n")

	info := []string{fmt.Sprintf("Puan: ★ %s (%s)", r.DisplayRating(), r.ReviewCountText())}
	if cuisines := r.CuisineTypesString(); cuisines != "" {
		info = append(info, "Mutfak: "+cuisines)
	}
	if r.PriceRange != nil {
		info = append(info, "Fiyat: "+r.PriceRange.Symbol())
	}
	if r.Phone != nil {
		info = append(info, "Telefon: "+*r.Phone)
	}
	if m.detail.Distance != nil {
		info = append(info, "Uzaklık: "+location.FormatDistance(*m.detail.Distance))
	}
	if len(r.Features) > 0 {
		info = append(info, "Özellikler: "+strings.Join(r.Features, ", "))
	}
	b.WriteString(boxStyle.Render(strings.Join(info, "\n")) + "\n")

	if len(r.OpeningHours) > 0 {
		b.WriteString("\n" + accentStyle.Render("Çalışma saatleri") + "\n")
		for _, h := range r.OpeningHours {
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.DayName(), h.HoursText()))
		}
	}
	if len(m.detail.Menu) > 0 {
		b.WriteString("\n" + accentStyle.Render("Menü") + "\n")
		for _, item := range m.detail.Menu {
			b.WriteString(fmt.Sprintf("  %s  %s\n", item.Name, subtleStyle.Render(item.PriceText())))
		}
	}
	b.WriteString(m.viewReviews())

	b.WriteString("\n" + subtleStyle.Render("[f] favori  [w] değerlendirme yaz  [esc] geri") + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(errorText(m.err)) + "\n")
	}
	return b.String()
}

func (m *model) viewReviews() string {
	st := m.ctrl.Reviews.State()
	var b strings.Builder
	b.WriteString("\n" + accentStyle.Render(fmt.Sprintf("Değerlendirmeler (%d)", st.Total)))
	if st.Total > 0 {
		b.WriteString("  " + formatRating(st.AverageRating))
	}
	b.WriteString("\n")
	if st.Loading {
		b.WriteString(subtleStyle.Render("  Yükleniyor...") + "\n")
		return b.String()
	}
	for i, rv := range st.Reviews {
		if i == detailReviewsLimit {
			break
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", ratingStars(rv.Rating), rv.UserName))
		if rv.Title != nil && *rv.Title != "" {
			b.WriteString("    " + titleStyle.Render(*rv.Title) + "\n")
		}
		b.WriteString("    " + rv.Comment + "\n")
	}
	if st.Notice != "" {
		b.WriteString(accentStyle.Render(st.Notice) + "\n")
	}
	return b.String()
}

func (m *model) handleFavoriteToggled(msg favoriteToggledMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.syncRestaurantList()
	if msg.added {
		return m.setStatusMessage("Favorilere eklendi")
	}
	return m.setStatusMessage("Favorilerden çıkarıldı")
}

// --- Форма отзыва --- //

func (m *model) updateReviewScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := func() tea.Cmd {
		in, err := m.reviewInput()
		if err != nil {
			m.err = err
			return nil
		}
		m.err = nil
		m.status = "Gönderiliyor..."
		return addReviewCmd(m.ctrl.Reviews, in)
	}
	return m.handleFormInput(msg, m.reviewInputs, submit, detailScreen)
}

// reviewInput собирает поля формы. Проверка значений выполняется контроллером отзывов.
func (m *model) reviewInput() (reviews.Input, error) {
	raw := strings.TrimSpace(m.reviewInputs[reviewFieldRating].Value())
	rating, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return reviews.Input{}, reviews.ErrInvalidRating
	}
	return reviews.Input{
		Rating:  rating,
		Title:   m.reviewInputs[reviewFieldTitle].Value(),
		Comment: m.reviewInputs[reviewFieldComment].Value(),
	}, nil
}

func (m *model) viewReviewScreen() string {
	name := ""
	if m.detail != nil {
		name = m.detail.Restaurant.Name
	}
	return m.viewForm("Değerlendirme: "+name, "Enter: devam/gönder, Tab: sonraki alan, Esc: vazgeç", m.reviewInputs)
}

func (m *model) handleReviewSaved(msg reviewSavedMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	blurInputs(m.reviewInputs)
	m.err = nil
	m.state = detailScreen
	if m.detail != nil {
		// Рейтинг ресторана пересчитан сервером.
		return m, detailCmd(m.ctrl.Listing, m.detail.Restaurant.ID)
	}
	return m, nil
}
