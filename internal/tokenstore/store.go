// Package tokenstore хранит токен доступа отдельно от остального состояния клиента.
//
// Ошибки чтения никогда не фатальны: поврежденное или недоступное хранилище
// выглядит как отсутствие токена, и пользователю просто придется войти заново.
package tokenstore

// Store хранит секреты по ключу.
type Store interface {
	// Save добавляет или перезаписывает значение.
	Save(key, value string) error
	// Get возвращает значение, если оно есть.
	Get(key string) (string, bool)
	// Delete удаляет значение. Отсутствие ключа не ошибка.
	Delete(key string) error
}
