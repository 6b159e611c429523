package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/session"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{name: "Корректные данные", email: "a@b.com", password: "secret1"},
		{name: "Пробелы вокруг адреса", email: "  a@b.com ", password: "x"},
		{name: "Пустой адрес", email: "   ", password: "secret1", field: "email"},
		{name: "Адрес без домена", email: "a@b", password: "secret1", field: "email"},
		{name: "Пустой пароль", email: "a@b.com", password: "", field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.ValidateLogin(tt.email, tt.password)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *session.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Error())
		})
	}
}

func TestRegisterInputValidate(t *testing.T) {
	valid := session.RegisterInput{
		FirstName: "Ali", LastName: "Öz", Email: "ali@example.com",
		Password: "secret1", PasswordConfirm: "secret1",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*session.RegisterInput)
		field  string
	}{
		{name: "Короткое имя", modify: func(in *session.RegisterInput) { in.FirstName = "A" }, field: "first_name"},
		{name: "Пустая фамилия", modify: func(in *session.RegisterInput) { in.LastName = " " }, field: "last_name"},
		{name: "Неверный адрес", modify: func(in *session.RegisterInput) { in.Email = "ali" }, field: "email"},
		{name: "Короткий пароль", modify: func(in *session.RegisterInput) {
			in.Password, in.PasswordConfirm = "12345", "12345"
		}, field: "password"},
		{name: "Пароли не совпадают", modify: func(in *session.RegisterInput) {
			in.PasswordConfirm = "secret2"
		}, field: "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)
			var verr *session.ValidationError
			require.ErrorAs(t, in.Validate(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "zeynep@example.com", session.NormalizeEmail(" Zeynep@Example.com "))
	assert.True(t, session.IsValidEmail(" zeynep@example.com "))
	assert.False(t, session.IsValidEmail("zeynep@example"))
}
