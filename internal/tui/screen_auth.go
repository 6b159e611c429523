package tui

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/glutenfree/internal/session"
)

// updateWelcomeScreen обрабатывает выбор между входом и регистрацией.
func (m *model) updateWelcomeScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "l", keyEnter:
		return m, m.openForm(loginScreen, m.loginInputs)
	case "r":
		return m, m.openForm(registerScreen, m.registerInputs)
	case keyQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) viewWelcomeScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Glutensiz Restoran Rehberi") + "\n\n")
	b.WriteString(boxStyle.Render("[l] Giriş yap\n[r] Kayıt ol\n[q] Çıkış") + "\n")
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(errorText(m.err)) + "\n")
	}
	return b.String()
}

// updateLoginScreen обрабатывает форму входа. Ctrl+F открывает сброс пароля.
func (m *model) updateLoginScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+f" {
		m.forgotInput.SetValue(m.loginInputs[loginFieldEmail].Value())
		m.state = forgotScreen
		m.err = nil
		blurInputs(m.loginInputs)
		return m, m.forgotInput.Focus()
	}
	submit := func() tea.Cmd {
		m.err = nil
		m.status = "Giriş yapılıyor..."
		return loginCmd(m.ctrl.Session,
			m.loginInputs[loginFieldEmail].Value(),
			m.loginInputs[loginFieldPassword].Value())
	}
	return m.handleFormInput(msg, m.loginInputs, submit, welcomeScreen)
}

func (m *model) viewLoginScreen() string {
	return m.viewForm("Giriş", "Enter: devam, Tab: sonraki alan, Ctrl+F: şifremi unuttum, Esc: geri", m.loginInputs)
}

func (m *model) updateRegisterScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := func() tea.Cmd {
		m.err = nil
		m.status = "Kayıt yapılıyor..."
		return registerCmd(m.ctrl.Session, session.RegisterInput{
			FirstName:       m.registerInputs[registerFieldFirstName].Value(),
			LastName:        m.registerInputs[registerFieldLastName].Value(),
			Email:           m.registerInputs[registerFieldEmail].Value(),
			Password:        m.registerInputs[registerFieldPassword].Value(),
			PasswordConfirm: m.registerInputs[registerFieldConfirm].Value(),
		})
	}
	return m.handleFormInput(msg, m.registerInputs, submit, welcomeScreen)
}

func (m *model) viewRegisterScreen() string {
	return m.viewForm("Kayıt Ol", "Enter: devam, Tab: sonraki alan, Esc: geri", m.registerInputs)
}

func (m *model) updateForgotScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			m.forgotInput.Blur()
			m.err = nil
			return m, m.openForm(loginScreen, m.loginInputs)
		case keyEnter:
			m.err = nil
			return m, forgotPasswordCmd(m.ctrl.Session, m.forgotInput.Value())
		}
	}
	var cmd tea.Cmd
	m.forgotInput, cmd = m.forgotInput.Update(msg)
	return m, cmd
}

func (m *model) viewForgotScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Şifremi Unuttum") + "\n\n")
	b.WriteString(m.forgotInput.View() + "\n\n")
	b.WriteString(subtleStyle.Render("Enter: sıfırlama kodu gönder, Esc: geri") + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Hata: "+errorText(m.err)) + "\n")
	}
	return b.String()
}

// handleAuthDone обрабатывает результат входа или регистрации.
func (m *model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	st := m.ctrl.Session.State()
	if st.User != nil {
		slog.Info("Вход в интерфейсе выполнен", "user_id", st.User.ID)
	}
	resetInputs(m.loginInputs)
	resetInputs(m.registerInputs)
	blurInputs(m.loginInputs)
	blurInputs(m.registerInputs)
	m.err = nil
	m.state = restaurantScreen
	return m, tea.Batch(fetchRestaurantsCmd(m.ctrl.Listing, true), loadFavoritesCmd(m.ctrl.Favorites))
}

func (m *model) handleLoggedOut() (tea.Model, tea.Cmd) {
	m.state = welcomeScreen
	m.detail = nil
	m.showFavorites = false
	m.restaurantList.SetItems(nil)
	return m.setStatusMessage("Çıkış yapıldı")
}
