package session

import "github.com/maynagashev/glutenfree/models"

// Status описывает состояние аутентификации.
type Status int

const (
	StatusLoggedOut Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoggedOut:
		return "logged_out"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State описывает снимок состояния сессии. Значение не разделяется с контроллером.
type State struct {
	Status Status
	// User хранит текущего пользователя. Может быть nil в StatusAuthenticated,
	// пока после восстановления сессии не загружен профиль.
	User *models.User
	// Busy показывает, что выполняется операция с профилем или паролем.
	Busy bool
	// Err хранит последнюю ошибку: *ValidationError или *api.Error.
	Err error
	// Notice хранит сообщение об успешной операции для пользователя.
	Notice string
}

// IsAuthenticated сообщает, вошел ли пользователь.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Переходы состояния.
type (
	evAuthStarted   struct{}
	evAuthenticated struct{ user models.User }
	evAuthFailed    struct{ err error }
	evRestored      struct{}
	evLoggedOut     struct{}
	evInvalid       struct{ err error }
	evOpStarted     struct{}
	evOpFailed      struct{ err error }
	evOpDone        struct{ notice string }
	evProfile       struct {
		user   models.User
		notice string
	}
	evDismissed struct{}
)

// reduce применяет событие к состоянию сессии. Других мест изменения состояния нет.
func reduce(s State, e any) State {
	switch e := e.(type) {
	case evAuthStarted:
		return State{Status: StatusAuthenticating}
	case evAuthenticated:
		user := e.user
		return State{Status: StatusAuthenticated, User: &user}
	case evAuthFailed:
		return State{Status: StatusLoggedOut, Err: e.err}
	case evRestored:
		return State{Status: StatusAuthenticated}
	case evLoggedOut:
		return State{Status: StatusLoggedOut}
	case evInvalid:
		s.Err = e.err
		s.Notice = ""
		return s
	case evOpStarted:
		s.Busy = true
		s.Err = nil
		s.Notice = ""
		return s
	case evOpFailed:
		s.Busy = false
		s.Err = e.err
		return s
	case evOpDone:
		s.Busy = false
		s.Notice = e.notice
		return s
	case evProfile:
		user := e.user
		s.User = &user
		s.Busy = false
		s.Notice = e.notice
		return s
	case evDismissed:
		s.Err = nil
		s.Notice = ""
		return s
	default:
		return s
	}
}
