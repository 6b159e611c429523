// Package session управляет аутентификацией: вход, регистрация, выход и профиль.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/state"
	"github.com/maynagashev/glutenfree/models"
)

// ErrInProgress возвращается, если вход или регистрация уже выполняются.
var ErrInProgress = errors.New("işlem zaten devam ediyor")

// ErrNotAuthenticated возвращается для операций, требующих входа.
var ErrNotAuthenticated = errors.New("bu işlem için giriş yapmalısınız")

// Client описывает то, что контроллеру нужно от HTTP клиента.
type Client interface {
	api.Requester
	SetToken(token string)
	ClearToken()
	HasToken() bool
}

// Controller владеет состоянием сессии. Методы безопасны для вызова из разных горутин.
type Controller struct {
	client       Client
	store        *state.Store[State]
	authInFlight atomic.Bool // Вход или регистрация уже идут
}

// NewController создает контроллер в состоянии StatusLoggedOut.
func NewController(client Client) *Controller {
	return &Controller{
		client: client,
		store:  state.New(State{}, State.clone),
	}
}

// State возвращает снимок состояния.
func (c *Controller) State() State {
	return c.store.Get()
}

// Subscribe возвращает канал снимков и функцию отписки.
func (c *Controller) Subscribe() (<-chan State, func()) {
	return c.store.Subscribe()
}

func (c *Controller) dispatch(e any) State {
	return c.store.Update(func(s State) State { return reduce(s, e) })
}

// DismissMessages сбрасывает последнюю ошибку и уведомление.
func (c *Controller) DismissMessages() {
	c.dispatch(evDismissed{})
}

// Restore восстанавливает сессию при запуске: если токен сохранен, пользователь
// считается вошедшим, а профиль загружается сразу. Ошибка загрузки профиля
// приводит к выходу.
func (c *Controller) Restore(ctx context.Context) error {
	if !c.client.HasToken() {
		return nil
	}
	slog.Info("Найден сохраненный токен, восстанавливаем сессию")
	c.dispatch(evRestored{})
	return c.RefreshProfile(ctx)
}

// Login выполняет вход. Ошибка проверки ввода возвращается как *ValidationError
// без обращения к сети.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if err := ValidateLogin(email, password); err != nil {
		c.dispatch(evInvalid{err: err})
		return err
	}
	if !c.authInFlight.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	defer c.authInFlight.Store(false)

	c.dispatch(evAuthStarted{})
	return c.login(ctx, NormalizeEmail(email), password)
}

// login завершает вход и регистрацию. Состояние уже StatusAuthenticating.
func (c *Controller) login(ctx context.Context, email, password string) error {
	req := models.LoginRequest{Email: email, Password: password}
	resp, err := api.Request[models.LoginResponse](ctx, c.client, api.Login(), req)
	if err != nil {
		slog.Warn("Ошибка входа", "error", err, "kind", api.KindOf(err).String())
		c.client.ClearToken()
		c.dispatch(evAuthFailed{err: err})
		return err
	}

	// Токен сохраняется до смены состояния, чтобы следующий запрос уже был авторизован.
	c.client.SetToken(resp.AccessToken)
	c.dispatch(evAuthenticated{user: resp.User})
	slog.Info("Вход выполнен", "user_id", resp.User.ID)
	return nil
}

// Register регистрирует пользователя и сразу выполняет вход с теми же данными.
func (c *Controller) Register(ctx context.Context, in RegisterInput) error {
	if err := in.Validate(); err != nil {
		c.dispatch(evInvalid{err: err})
		return err
	}
	if !c.authInFlight.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	defer c.authInFlight.Store(false)

	c.dispatch(evAuthStarted{})
	email := NormalizeEmail(in.Email)
	req := models.RegisterRequest{
		Email:           email,
		Password:        in.Password,
		PasswordConfirm: in.PasswordConfirm,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		PhoneNumber:     in.PhoneNumber,
	}
	resp, err := api.Request[models.RegisterResponse](ctx, c.client, api.Register(), req)
	if err != nil {
		slog.Warn("Ошибка регистрации", "error", err, "kind", api.KindOf(err).String())
		c.dispatch(evAuthFailed{err: err})
		return err
	}
	slog.Info("Регистрация выполнена, выполняем вход", "user_id", resp.User.ID)
	return c.login(ctx, email, in.Password)
}

// Logout выполняет выход. Запрос к серверу делается по возможности;
// локальный токен и пользователь удаляются всегда.
func (c *Controller) Logout(ctx context.Context) {
	if c.client.HasToken() {
		if err := api.Send(ctx, c.client, api.Logout(), nil); err != nil {
			slog.Warn("Запрос выхода на сервере не выполнен", "error", err)
		}
	}
	c.client.ClearToken()
	c.dispatch(evLoggedOut{})
	slog.Info("Выход выполнен")
}

// RefreshProfile загружает профиль текущего пользователя. Любая ошибка
// (в том числе истекшая сессия) приводит к выходу.
func (c *Controller) RefreshProfile(ctx context.Context) error {
	user, err := api.Request[models.User](ctx, c.client, api.Profile(), nil)
	if err != nil {
		slog.Warn("Не удалось загрузить профиль, выходим", "error", err, "kind", api.KindOf(err).String())
		c.Logout(ctx)
		c.dispatch(evInvalid{err: err})
		return err
	}
	if !c.State().IsAuthenticated() {
		// Пользователь вышел, пока шел запрос.
		return nil
	}
	c.dispatch(evAuthenticated{user: user})
	return nil
}

// RefreshToken получает новый токен доступа и сохраняет его.
func (c *Controller) RefreshToken(ctx context.Context) error {
	resp, err := api.Request[models.RefreshTokenResponse](ctx, c.client, api.RefreshToken(), nil)
	if err != nil {
		slog.Warn("Не удалось обновить токен", "error", err)
		if errors.Is(err, api.ErrUnauthorized) {
			c.Logout(ctx)
		}
		return err
	}
	c.client.SetToken(resp.AccessToken)
	return nil
}

// ForgotPassword запрашивает письмо для сброса пароля.
func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		c.dispatch(evInvalid{err: err})
		return err
	}
	req := models.ForgotPasswordRequest{Email: NormalizeEmail(email)}
	return c.runOp(ctx, func(ctx context.Context) (string, error) {
		resp, err := api.Request[models.MessageResponse](ctx, c.client, api.ForgotPassword(), req)
		if err != nil {
			return "", err
		}
		return noticeOr(resp.Message, "Şifre sıfırlama bağlantısı e-posta adresinize gönderildi"), nil
	})
}

// ResetPassword устанавливает новый пароль по токену из письма.
func (c *Controller) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	if strings.TrimSpace(token) == "" {
		err := invalid("token", "Sıfırlama kodu boş bırakılamaz")
		c.dispatch(evInvalid{err: err})
		return err
	}
	if err := validateNewPassword("new_password", newPassword, confirm); err != nil {
		c.dispatch(evInvalid{err: err})
		return err
	}
	req := models.ResetPasswordRequest{Token: strings.TrimSpace(token), NewPassword: newPassword}
	return c.runOp(ctx, func(ctx context.Context) (string, error) {
		resp, err := api.Request[models.MessageResponse](ctx, c.client, api.ResetPassword(), req)
		if err != nil {
			return "", err
		}
		return noticeOr(resp.Message, "Şifreniz güncellendi"), nil
	})
}

// ChangePassword меняет пароль вошедшего пользователя.
func (c *Controller) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	if !c.State().IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if current == "" {
		err := invalid("current_password", "Mevcut şifre boş bırakılamaz")
		c.dispatch(evInvalid{err: err})
		return err
	}
	if err := validateNewPassword("new_password", newPassword, confirm); err != nil {
		c.dispatch(evInvalid{err: err})
		return err
	}
	req := models.ChangePasswordRequest{CurrentPassword: current, NewPassword: newPassword}
	return c.runOp(ctx, func(ctx context.Context) (string, error) {
		resp, err := api.Request[models.MessageResponse](ctx, c.client, api.ChangePassword(), req)
		if err != nil {
			return "", err
		}
		return noticeOr(resp.Message, "Şifreniz değiştirildi"), nil
	})
}

// UpdateProfile обновляет профиль и заменяет пользователя в состоянии ответом сервера.
func (c *Controller) UpdateProfile(ctx context.Context, in ProfileInput) error {
	if !c.State().IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := in.Validate(); err != nil {
		c.dispatch(evInvalid{err: err})
		return err
	}
	req := models.UpdateProfileRequest{
		FirstName:       trimmed(in.FirstName),
		LastName:        trimmed(in.LastName),
		PhoneNumber:     trimmed(in.PhoneNumber),
		ProfileImageURL: trimmed(in.ProfileImageURL),
	}

	c.dispatch(evOpStarted{})
	user, err := api.Request[models.User](ctx, c.client, api.UpdateProfile(), req)
	if err != nil {
		c.handleOpError(ctx, err)
		return err
	}
	c.dispatch(evProfile{user: user, notice: "Profiliniz güncellendi"})
	return nil
}

// DeleteAccount удаляет аккаунт и выполняет выход.
func (c *Controller) DeleteAccount(ctx context.Context) error {
	if !c.State().IsAuthenticated() {
		return ErrNotAuthenticated
	}
	c.dispatch(evOpStarted{})
	if err := api.Send(ctx, c.client, api.DeleteAccount(), nil); err != nil {
		c.handleOpError(ctx, err)
		return err
	}
	slog.Info("Аккаунт удален")
	c.client.ClearToken()
	c.dispatch(evLoggedOut{})
	return nil
}

// runOp выполняет операцию, не меняющую пользователя, с флагом Busy.
func (c *Controller) runOp(ctx context.Context, op func(context.Context) (string, error)) error {
	c.dispatch(evOpStarted{})
	notice, err := op(ctx)
	if err != nil {
		c.handleOpError(ctx, err)
		return err
	}
	c.dispatch(evOpDone{notice: notice})
	return nil
}

// handleOpError сохраняет ошибку в состоянии. Истекшая сессия приводит к выходу.
func (c *Controller) handleOpError(ctx context.Context, err error) {
	slog.Warn("Операция не выполнена", "error", err, "kind", api.KindOf(err).String())
	if errors.Is(err, api.ErrUnauthorized) && c.State().IsAuthenticated() {
		c.Logout(ctx)
	}
	c.dispatch(evOpFailed{err: err})
}

func noticeOr(message, fallback string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return fallback
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
