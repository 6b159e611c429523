package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const (
	initPasswordCharLimit = 128
	initTextCharLimit     = 128
	initCommentCharLimit  = 1000
	initInputWidth        = 40

	docStyleMarginVertical   = 1
	docStyleMarginHorizontal = 2
)

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = initInputWidth
	return ti
}

func newPasswordInput(placeholder string) textinput.Model {
	ti := newInput(placeholder, initPasswordCharLimit)
	ti.EchoMode = textinput.EchoPassword
	return ti
}

// initLoginInputs создает поля e-posta и şifre.
func initLoginInputs() []textinput.Model {
	inputs := make([]textinput.Model, numLoginFields)
	inputs[loginFieldEmail] = newInput("E-posta", initTextCharLimit)
	inputs[loginFieldPassword] = newPasswordInput("Şifre")
	return inputs
}

func initRegisterInputs() []textinput.Model {
	inputs := make([]textinput.Model, numRegisterFields)
	inputs[registerFieldFirstName] = newInput("Ad", initTextCharLimit)
	inputs[registerFieldLastName] = newInput("Soyad", initTextCharLimit)
	inputs[registerFieldEmail] = newInput("E-posta", initTextCharLimit)
	inputs[registerFieldPassword] = newPasswordInput("Şifre")
	inputs[registerFieldConfirm] = newPasswordInput("Şifre (tekrar)")
	return inputs
}

func initReviewInputs() []textinput.Model {
	inputs := make([]textinput.Model, numReviewFields)
	inputs[reviewFieldRating] = newInput("Puan (1-5)", 3)
	inputs[reviewFieldTitle] = newInput("Başlık (isteğe bağlı)", initTextCharLimit)
	inputs[reviewFieldComment] = newInput("Yorum", initCommentCharLimit)
	return inputs
}

// initRestaurantList создает список ресторанов со своими цветами.
func initRestaurantList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("212")).
		BorderLeftForeground(lipgloss.Color("212"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("240")).
		BorderLeftForeground(lipgloss.Color("212"))

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Glutensiz Restoranlar"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	// Фильтрация выполняется контроллером списка.
	l.SetFilteringEnabled(false)
	l.Styles.Title = list.DefaultStyles().Title.Bold(true)
	return l
}

// newModel создает начальное состояние. Если сессия уже восстановлена, сразу открывается список.
func newModel(ctrl Controllers, debugMode bool) model {
	m := model{
		ctrl:           ctrl,
		state:          welcomeScreen,
		debugMode:      debugMode,
		restaurantList: initRestaurantList(),
		loginInputs:    initLoginInputs(),
		registerInputs: initRegisterInputs(),
		reviewInputs:   initReviewInputs(),
		forgotInput:    newInput("E-posta", initTextCharLimit),
		searchInput:    newInput("Restoran, mutfak veya şehir ara", initTextCharLimit),
		docStyle:       lipgloss.NewStyle().Margin(docStyleMarginVertical, docStyleMarginHorizontal),
	}
	if ctrl.Session.State().IsAuthenticated() {
		m.state = restaurantScreen
	}
	return m
}
