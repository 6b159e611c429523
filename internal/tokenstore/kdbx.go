package tokenstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
)

const (
	// customDataPrefix отделяет наши ключи от чужих записей CustomData в том же файле.
	customDataPrefix = "GlutenFree."
	databaseName     = "GlutenFree"
	fileMode         = 0o600
	dirMode          = 0o700
)

var (
	// ErrEmptyPath возвращается, если не указан путь к файлу хранилища.
	ErrEmptyPath = errors.New("не указан путь к файлу хранилища")
	// ErrEmptyPassphrase возвращается, если не указан пароль файла хранилища.
	ErrEmptyPassphrase = errors.New("пароль хранилища не может быть пустым")
)

// KDBX хранит значения в метаданных (CustomData) зашифрованного файла KeePass.
// Запись защищена файловой блокировкой path+".lock", поэтому файл можно
// делить между несколькими процессами клиента.
type KDBX struct {
	path       string
	passphrase string
	mu         sync.Mutex
}

// NewKDBX создает хранилище. Файл создается при первой записи.
func NewKDBX(path, passphrase string) (*KDBX, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &KDBX{path: path, passphrase: passphrase}, nil
}

// Path возвращает путь к файлу хранилища.
func (s *KDBX) Path() string {
	return s.path
}

// Get читает значение. Любая ошибка чтения означает отсутствие значения.
func (s *KDBX) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Хранилище токена недоступно", "path", s.path, "error", err)
		}
		return "", false
	}

	fileLock := flock.New(s.lockPath())
	if err := fileLock.RLock(); err != nil {
		slog.Warn("Не удалось заблокировать хранилище для чтения", "path", s.path, "error", err)
		return "", false
	}
	defer s.unlock(fileLock)

	db, err := openDatabase(s.path, s.passphrase)
	if err != nil {
		slog.Warn("Не удалось открыть хранилище токена", "path", s.path, "error", err)
		return "", false
	}
	return customDataValue(db.Content.Meta.CustomData, customDataPrefix+key)
}

// Save записывает значение. Поврежденный файл или файл с другим паролем
// пересоздается с нуля.
func (s *KDBX) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("ошибка создания каталога хранилища: %w", err)
	}
	fileLock := flock.New(s.lockPath())
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки хранилища: %w", err)
	}
	defer s.unlock(fileLock)

	db, err := openDatabase(s.path, s.passphrase)
	switch {
	case errors.Is(err, os.ErrNotExist):
		db = newDatabase(s.passphrase)
	case err != nil:
		slog.Warn("Хранилище токена повреждено, создается заново", "path", s.path, "error", err)
		db = newDatabase(s.passphrase)
	}

	meta := db.Content.Meta
	meta.CustomData = setCustomDataValue(meta.CustomData, customDataPrefix+key, value)
	touch(db)
	return saveDatabase(db, s.path)
}

// Delete удаляет значение. Отсутствующий или нечитаемый файл не ошибка.
func (s *KDBX) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	fileLock := flock.New(s.lockPath())
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки хранилища: %w", err)
	}
	defer s.unlock(fileLock)

	db, err := openDatabase(s.path, s.passphrase)
	if err != nil {
		// Значение и так недоступно.
		slog.Warn("Не удалось открыть хранилище токена при удалении", "path", s.path, "error", err)
		return nil
	}

	meta := db.Content.Meta
	updated, removed := removeCustomDataValue(meta.CustomData, customDataPrefix+key)
	if !removed {
		return nil
	}
	meta.CustomData = updated
	touch(db)
	return saveDatabase(db, s.path)
}

func (s *KDBX) lockPath() string {
	return s.path + ".lock"
}

func (s *KDBX) unlock(fileLock *flock.Flock) {
	if err := fileLock.Unlock(); err != nil {
		slog.Warn("Не удалось снять блокировку хранилища", "path", s.path, "error", err)
	}
}

// openDatabase открывает и дешифрует файл.
func openDatabase(path, passphrase string) (*gokeepasslib.Database, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", path, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(passphrase)
	if err = gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, fmt.Errorf("ошибка дешифрования файла '%s': %w", path, err)
	}
	if db.Content == nil || db.Content.Meta == nil {
		return nil, fmt.Errorf("в файле '%s' нет метаданных", path)
	}
	if err = db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("ошибка разблокировки защищенных полей: %w", err)
	}
	return db, nil
}

// newDatabase создает пустую базу KDBX4 с одной корневой группой.
func newDatabase(passphrase string) *gokeepasslib.Database {
	db := gokeepasslib.NewDatabase(gokeepasslib.WithDatabaseKDBXVersion4())
	db.Credentials = gokeepasslib.NewPasswordCredentials(passphrase)
	db.Content.Root = gokeepasslib.NewRootData()
	root := gokeepasslib.NewGroup()
	root.Name = databaseName
	db.Content.Root.Groups = []gokeepasslib.Group{root}
	return db
}

// saveDatabase шифрует базу во временный файл и атомарно заменяет им основной.
func saveDatabase(db *gokeepasslib.Database, path string) error {
	if err := db.LockProtectedEntries(); err != nil {
		slog.Warn("Не удалось заблокировать поля перед сохранением", "error", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err = gokeepasslib.NewEncoder(tmp).Encode(db); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка кодирования хранилища: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи хранилища: %w", err)
	}
	if err = os.Chmod(tmpPath, fileMode); err != nil {
		return fmt.Errorf("ошибка установки прав на файл хранилища: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("ошибка замены файла хранилища '%s': %w", path, err)
	}
	return nil
}

// touch обновляет время изменения корневой группы.
func touch(db *gokeepasslib.Database) {
	if db.Content.Root == nil || len(db.Content.Root.Groups) == 0 {
		return
	}
	modTime := w.TimeWrapper{Time: time.Now().UTC()}
	db.Content.Root.Groups[0].Times.LastModificationTime = &modTime
}

func customDataValue(items []gokeepasslib.CustomData, key string) (string, bool) {
	for _, item := range items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// setCustomDataValue обновляет или добавляет значение.
func setCustomDataValue(items []gokeepasslib.CustomData, key, value string) []gokeepasslib.CustomData {
	for i := range items {
		if items[i].Key == key {
			items[i].Value = value
			return items
		}
	}
	return append(items, gokeepasslib.CustomData{Key: key, Value: value})
}

// removeCustomDataValue удаляет значение и сообщает, было ли оно.
func removeCustomDataValue(items []gokeepasslib.CustomData, key string) ([]gokeepasslib.CustomData, bool) {
	kept := make([]gokeepasslib.CustomData, 0, len(items))
	removed := false
	for _, item := range items {
		if item.Key == key {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}
