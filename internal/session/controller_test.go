package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/session"
	"github.com/maynagashev/glutenfree/internal/tokenstore"
)

const userJSON = `{"id":1,"email":"a@b.com","first_name":"Ayşe","last_name":"Yılmaz",` +
	`"created_at":"2024-03-01T10:00:00.123456Z"}`

// backend поднимает тестовый сервер и считает вызовы по маршрутам.
type backend struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]map[string]any
	mux    *http.ServeMux
}

func newBackend() *backend {
	return &backend{
		calls:  make(map[string]int),
		bodies: make(map[string]map[string]any),
		mux:    http.NewServeMux(),
	}
}

// handle регистрирует ответ на "METHOD /path" (путь без префикса версии).
func (b *backend) handle(route string, status int, body string) {
	method, path, _ := strings.Cut(route, " ")
	b.mux.HandleFunc(method+" "+api.VersionPrefix+path, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		b.mu.Lock()
		b.calls[route]++
		b.bodies[route] = payload
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *backend) body(route string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[route]
}

func newController(t *testing.T, b *backend) (*session.Controller, *tokenstore.Memory) {
	t.Helper()
	server := httptest.NewServer(b.mux)
	t.Cleanup(server.Close)
	store := tokenstore.NewMemory()
	client := api.NewClient(server.URL, store)
	return session.NewController(client), store
}

func TestLogin(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		assert := assert.New(t)
		b := newBackend()
		b.handle("POST /auth/login", http.StatusOK,
			`{"access_token":"t","token_type":"bearer","user":`+userJSON+`}`)
		ctrl, store := newController(t, b)

		err := ctrl.Login(context.Background(), "  A@B.com ", "secret1")
		require.NoError(t, err)

		st := ctrl.State()
		assert.Equal(session.StatusAuthenticated, st.Status)
		require.NotNil(t, st.User)
		assert.Equal("Ayşe", st.User.FirstName)
		assert.NoError(st.Err)

		token, ok := store.Get(api.TokenKey)
		assert.True(ok)
		assert.Equal("t", token)
		assert.Equal("a@b.com", b.body("POST /auth/login")["email"], "Адрес нормализуется перед отправкой")
	})

	t.Run("Ошибка сервера", func(t *testing.T) {
		assert := assert.New(t)
		b := newBackend()
		b.handle("POST /auth/login", http.StatusUnauthorized, `{"message":"bad credentials"}`)
		ctrl, store := newController(t, b)

		err := ctrl.Login(context.Background(), "a@b.com", "wrong")
		require.ErrorIs(t, err, api.ErrUnauthorized)

		st := ctrl.State()
		assert.Equal(session.StatusLoggedOut, st.Status)
		assert.Nil(st.User)
		assert.ErrorIs(st.Err, api.ErrUnauthorized)
		_, ok := store.Get(api.TokenKey)
		assert.False(ok, "После неудачного входа токена быть не должно")
	})

	t.Run("Неполный ответ", func(t *testing.T) {
		b := newBackend()
		b.handle("POST /auth/login", http.StatusOK, `{"access_token":"t"}`)
		ctrl, store := newController(t, b)

		err := ctrl.Login(context.Background(), "a@b.com", "secret1")
		require.ErrorIs(t, err, api.ErrDecoding)
		assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
		_, ok := store.Get(api.TokenKey)
		assert.False(t, ok)
	})
}

func TestLogin_ValidationMakesNoCall(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{name: "Пустой адрес", email: "  ", password: "secret1", field: "email"},
		{name: "Неверный адрес", email: "a@b", password: "secret1", field: "email"},
		{name: "Пустой пароль", email: "a@b.com", password: "", field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			b.handle("POST /auth/login", http.StatusOK, `{}`)
			ctrl, _ := newController(t, b)

			err := ctrl.Login(context.Background(), tt.email, tt.password)
			var vErr *session.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, 0, b.total(), "Проверка ввода не должна обращаться к сети")
			assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
			assert.ErrorAs(t, ctrl.State().Err, &vErr)
		})
	}
}

func TestRestore(t *testing.T) {
	t.Run("Истекшая сессия", func(t *testing.T) {
		assert := assert.New(t)
		b := newBackend()
		b.handle("GET /users/profile", http.StatusUnauthorized, ``)
		b.handle("PUT /auth/logout", http.StatusUnauthorized, ``)
		ctrl, store := newController(t, b)
		require.NoError(t, store.Save(api.TokenKey, "stale"))

		err := ctrl.Restore(context.Background())
		require.ErrorIs(t, err, api.ErrUnauthorized)

		assert.Equal(session.StatusLoggedOut, ctrl.State().Status)
		_, ok := store.Get(api.TokenKey)
		assert.False(ok, "Хранилище токена должно быть пустым")
		assert.Equal(1, b.count("GET /users/profile"))
	})

	t.Run("Действующая сессия", func(t *testing.T) {
		b := newBackend()
		b.handle("GET /users/profile", http.StatusOK, userJSON)
		ctrl, store := newController(t, b)
		require.NoError(t, store.Save(api.TokenKey, "t"))

		require.NoError(t, ctrl.Restore(context.Background()))
		st := ctrl.State()
		assert.Equal(t, session.StatusAuthenticated, st.Status)
		require.NotNil(t, st.User)
		assert.Equal(t, int64(1), st.User.ID)
	})

	t.Run("Без токена", func(t *testing.T) {
		b := newBackend()
		ctrl, _ := newController(t, b)
		require.NoError(t, ctrl.Restore(context.Background()))
		assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
		assert.Equal(t, 0, b.total())
	})
}

func validRegistration() session.RegisterInput {
	return session.RegisterInput{
		FirstName:       " Ayşe ",
		LastName:        "Yılmaz",
		Email:           "A@B.com",
		Password:        "secret1",
		PasswordConfirm: "secret1",
	}
}

func TestRegister(t *testing.T) {
	t.Run("Автоматический вход", func(t *testing.T) {
		assert := assert.New(t)
		b := newBackend()
		b.handle("POST /auth/register", http.StatusCreated, `{"message":"ok","user":`+userJSON+`}`)
		b.handle("POST /auth/login", http.StatusOK,
			`{"access_token":"t","token_type":"bearer","user":`+userJSON+`}`)
		ctrl, store := newController(t, b)

		require.NoError(t, ctrl.Register(context.Background(), validRegistration()))

		assert.Equal(1, b.count("POST /auth/register"))
		assert.Equal(1, b.count("POST /auth/login"))
		assert.Equal("Ayşe", b.body("POST /auth/register")["first_name"])
		assert.Equal("a@b.com", b.body("POST /auth/login")["email"])
		assert.Equal(session.StatusAuthenticated, ctrl.State().Status)
		token, _ := store.Get(api.TokenKey)
		assert.Equal("t", token)
	})

	t.Run("Ошибка регистрации", func(t *testing.T) {
		b := newBackend()
		b.handle("POST /auth/register", http.StatusUnprocessableEntity, `{"message":"exists"}`)
		b.handle("POST /auth/login", http.StatusOK, `{}`)
		ctrl, _ := newController(t, b)

		err := ctrl.Register(context.Background(), validRegistration())
		require.ErrorIs(t, err, &api.Error{Kind: api.KindServer, StatusCode: 422})
		assert.Equal(t, 0, b.count("POST /auth/login"))
		assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
	})

	tests := []struct {
		name   string
		modify func(*session.RegisterInput)
		field  string
	}{
		{name: "Короткое имя", modify: func(in *session.RegisterInput) { in.FirstName = " A " }, field: "first_name"},
		{name: "Пустая фамилия", modify: func(in *session.RegisterInput) { in.LastName = "" }, field: "last_name"},
		{name: "Неверный адрес", modify: func(in *session.RegisterInput) { in.Email = "nope" }, field: "email"},
		{name: "Короткий пароль", modify: func(in *session.RegisterInput) { in.Password, in.PasswordConfirm = "12345", "12345" }, field: "password"},
		{name: "Пароли не совпадают", modify: func(in *session.RegisterInput) { in.PasswordConfirm = "secret2" }, field: "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			ctrl, _ := newController(t, b)
			in := validRegistration()
			tt.modify(&in)

			err := ctrl.Register(context.Background(), in)
			var vErr *session.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, 0, b.total())
		})
	}
}

func loggedIn(t *testing.T, b *backend) (*session.Controller, *tokenstore.Memory) {
	t.Helper()
	b.handle("POST /auth/login", http.StatusOK,
		`{"access_token":"t","token_type":"bearer","user":`+userJSON+`}`)
	ctrl, store := newController(t, b)
	require.NoError(t, ctrl.Login(context.Background(), "a@b.com", "secret1"))
	return ctrl, store
}

func TestLogout(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			b := newBackend()
			b.handle("PUT /auth/logout", status, `{}`)
			ctrl, store := loggedIn(t, b)

			ctrl.Logout(context.Background())

			assert.Equal(t, 1, b.count("PUT /auth/logout"))
			assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
			assert.Nil(t, ctrl.State().User)
			_, ok := store.Get(api.TokenKey)
			assert.False(t, ok, "Выход очищает токен при любом ответе сервера")
		})
	}

	t.Run("Сервер недоступен", func(t *testing.T) {
		store := tokenstore.NewMemory()
		require.NoError(t, store.Save(api.TokenKey, "t"))
		ctrl := session.NewController(api.NewClient("http://127.0.0.1:1", store))

		ctrl.Logout(context.Background())
		_, ok := store.Get(api.TokenKey)
		assert.False(t, ok)
	})
}

func TestProfileOperations(t *testing.T) {
	t.Run("Обновление профиля", func(t *testing.T) {
		b := newBackend()
		b.handle("PUT /users/profile", http.StatusOK,
			`{"id":1,"email":"a@b.com","first_name":"Elif","last_name":"Yılmaz","created_at":"2024-03-01T10:00:00.123456Z"}`)
		ctrl, _ := loggedIn(t, b)

		name := " Elif "
		require.NoError(t, ctrl.UpdateProfile(context.Background(), session.ProfileInput{FirstName: &name}))
		assert.Equal(t, "Elif", b.body("PUT /users/profile")["first_name"])
		assert.NotContains(t, b.body("PUT /users/profile"), "last_name")

		st := ctrl.State()
		require.NotNil(t, st.User)
		assert.Equal(t, "Elif", st.User.FirstName)
		assert.False(t, st.Busy)
		assert.NotEmpty(t, st.Notice)
	})

	t.Run("Смена пароля с несовпадающим подтверждением", func(t *testing.T) {
		b := newBackend()
		ctrl, _ := loggedIn(t, b)
		before := b.total()

		err := ctrl.ChangePassword(context.Background(), "secret1", "newpass", "other")
		var vErr *session.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, before, b.total())
	})

	t.Run("Смена пароля", func(t *testing.T) {
		b := newBackend()
		b.handle("PATCH /users/change-password", http.StatusOK, `{"success":true,"message":"Tamam"}`)
		ctrl, _ := loggedIn(t, b)

		require.NoError(t, ctrl.ChangePassword(context.Background(), "secret1", "newpass", "newpass"))
		assert.Equal(t, "Tamam", ctrl.State().Notice)
		assert.Equal(t, "newpass", b.body("PATCH /users/change-password")["new_password"])
	})

	t.Run("Истекшая сессия при операции", func(t *testing.T) {
		b := newBackend()
		b.handle("PATCH /users/change-password", http.StatusUnauthorized, ``)
		b.handle("PUT /auth/logout", http.StatusUnauthorized, ``)
		ctrl, store := loggedIn(t, b)

		err := ctrl.ChangePassword(context.Background(), "secret1", "newpass", "newpass")
		require.ErrorIs(t, err, api.ErrUnauthorized)
		assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
		_, ok := store.Get(api.TokenKey)
		assert.False(t, ok)
	})

	t.Run("Удаление аккаунта", func(t *testing.T) {
		b := newBackend()
		b.handle("DELETE /users/account", http.StatusNoContent, ``)
		ctrl, store := loggedIn(t, b)

		require.NoError(t, ctrl.DeleteAccount(context.Background()))
		assert.Equal(t, session.StatusLoggedOut, ctrl.State().Status)
		_, ok := store.Get(api.TokenKey)
		assert.False(t, ok)
	})

	t.Run("Требуется вход", func(t *testing.T) {
		ctrl, _ := newController(t, newBackend())
		assert.ErrorIs(t, ctrl.DeleteAccount(context.Background()), session.ErrNotAuthenticated)
		assert.ErrorIs(t, ctrl.UpdateProfile(context.Background(), session.ProfileInput{}), session.ErrNotAuthenticated)
	})
}

func TestPasswordRecovery(t *testing.T) {
	b := newBackend()
	b.handle("POST /auth/forgot-password", http.StatusOK, `{"success":true}`)
	b.handle("POST /auth/reset-password", http.StatusOK, `{"success":true,"message":"Şifre güncellendi"}`)
	ctrl, _ := newController(t, b)

	require.NoError(t, ctrl.ForgotPassword(context.Background(), " A@B.com "))
	assert.Equal(t, "a@b.com", b.body("POST /auth/forgot-password")["email"])
	assert.NotEmpty(t, ctrl.State().Notice, "Без сообщения сервера используется стандартное")

	require.NoError(t, ctrl.ResetPassword(context.Background(), "code", "secret1", "secret1"))
	assert.Equal(t, "Şifre güncellendi", ctrl.State().Notice)

	var vErr *session.ValidationError
	require.ErrorAs(t, ctrl.ResetPassword(context.Background(), " ", "secret1", "secret1"), &vErr)
	assert.Equal(t, "token", vErr.Field)
}

func TestRefreshToken(t *testing.T) {
	b := newBackend()
	b.handle("GET /auth/refresh", http.StatusOK, `{"access_token":"t2"}`)
	ctrl, store := loggedIn(t, b)

	require.NoError(t, ctrl.RefreshToken(context.Background()))
	token, _ := store.Get(api.TokenKey)
	assert.Equal(t, "t2", token)
}

func TestSubscribe(t *testing.T) {
	b := newBackend()
	b.handle("POST /auth/login", http.StatusOK,
		`{"access_token":"t","token_type":"bearer","user":`+userJSON+`}`)
	ctrl, _ := newController(t, b)

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()
	assert.Equal(t, session.StatusLoggedOut, (<-updates).Status)

	require.NoError(t, ctrl.Login(context.Background(), "a@b.com", "secret1"))
	latest := <-updates
	assert.Equal(t, session.StatusAuthenticated, latest.Status)

	// Снимок не разделяет пользователя с контроллером.
	latest.User.FirstName = "changed"
	assert.Equal(t, "Ayşe", ctrl.State().User.FirstName)
}
