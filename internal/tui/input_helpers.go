package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focusInput ставит фокус на поле idx и снимает с остальных.
func focusInput(inputs []textinput.Model, idx int) {
	for i := range inputs {
		if i == idx {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
}

func blurInputs(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Blur()
	}
}

func resetInputs(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Reset()
	}
}

// handleFormInput обрабатывает форму из нескольких полей: Tab и Shift+Tab переключают
// фокус, Enter переходит к следующему полю, а на последнем вызывает onSubmit.
// Esc возвращает на экран previous.
func (m *model) handleFormInput(
	msg tea.Msg,
	inputs []textinput.Model,
	onSubmit func() tea.Cmd,
	previous screenState,
) (tea.Model, tea.Cmd) {
	n := len(inputs)
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			blurInputs(inputs)
			m.err = nil
			m.state = previous
			return m, tea.ClearScreen
		case keyTab, "down":
			m.focusedField = (m.focusedField + 1) % n
			focusInput(inputs, m.focusedField)
			return m, textinput.Blink
		case keyShiftTab, "up":
			m.focusedField = (m.focusedField + n - 1) % n
			focusInput(inputs, m.focusedField)
			return m, textinput.Blink
		case keyEnter:
			if m.focusedField < n-1 {
				m.focusedField++
				focusInput(inputs, m.focusedField)
				return m, textinput.Blink
			}
			return m, onSubmit()
		}
	}

	var cmd tea.Cmd
	inputs[m.focusedField], cmd = inputs[m.focusedField].Update(msg)
	return m, cmd
}

// openForm переключает экран на форму и ставит фокус на первое поле.
func (m *model) openForm(state screenState, inputs []textinput.Model) tea.Cmd {
	m.state = state
	m.err = nil
	m.focusedField = 0
	focusInput(inputs, 0)
	return textinput.Blink
}

// viewForm отображает заголовок, поля формы, подсказку и ошибку.
func (m *model) viewForm(title, hint string, inputs []textinput.Model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for _, in := range inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render(hint) + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Hata: "+errorText(m.err)) + "\n")
	}
	return b.String()
}
