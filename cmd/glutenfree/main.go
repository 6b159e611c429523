package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/config"
	"github.com/maynagashev/glutenfree/internal/favorites"
	"github.com/maynagashev/glutenfree/internal/listing"
	"github.com/maynagashev/glutenfree/internal/location"
	"github.com/maynagashev/glutenfree/internal/logging"
	"github.com/maynagashev/glutenfree/internal/reviews"
	"github.com/maynagashev/glutenfree/internal/session"
	"github.com/maynagashev/glutenfree/internal/tokenstore"
	"github.com/maynagashev/glutenfree/internal/tui"
)

const logFileName = "client.log"

// Переменные для версии и даты сборки, устанавливаются через ldflags.
//
//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
var (
	version    = "dev"
	buildDate  = "unknown"
	commitHash = "N/A"
)

// options хранит флаги командной строки. Пустые значения не переопределяют конфиг.
type options struct {
	ConfigPath  string
	ServerURL   string
	Location    string
	Debug       bool
	ShowVersion bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.ConfigPath, "config", "", "Путь к YAML-конфигу (env: CONFIG_PATH)")
	fs.StringVar(&o.ServerURL, "server-url", "", "URL сервера, например http://localhost:8000 (env: API_BASE_URL)")
	fs.StringVar(&o.Location, "location", "", "Местоположение \"широта,долгота\" (env: DEVICE_LOCATION)")
	fs.BoolVar(&o.Debug, "debug", false, "Режим отладки: уровень debug и отладочная панель TUI")
	fs.BoolVar(&o.ShowVersion, "version", false, "Показать версию и дату сборки")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseOptions(flag.NewFlagSet("glutenfree", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if opts.ShowVersion {
		fmt.Fprintln(stdout, "Glutenfree Client")
		fmt.Fprintf(stdout, "Version: %s\nBuild Date: %s\nCommit Hash: %s\n", version, buildDate, commitHash)
		return nil
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	applyOptions(cfg, opts)

	// Интерфейс занимает терминал, поэтому логи пишутся в файл.
	logFile, err := logging.OpenFile(cfg.Log.Dir, logFileName)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logging.New(logFile, logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}))
	slog.Info("Запуск клиента", "version", version, "server_url", cfg.API.BaseURL, "env", cfg.Env)

	store := newTokenStore(cfg.TokenStore)
	client := api.NewClient(cfg.API.BaseURL, store, api.WithTimeout(cfg.API.Timeout))

	provider := &location.Settable{}
	if here, ok, locErr := cfg.Location.Parse(); locErr != nil {
		slog.Warn("Некорректное местоположение в конфигурации", "value", cfg.Location.Coordinate, "error", locErr)
	} else if ok {
		provider.Set(here)
	}

	sess := session.NewController(client)
	if err = sess.Restore(context.Background()); err != nil {
		slog.Warn("Сохраненная сессия недействительна", "error", err)
	}

	return tui.Start(tui.Controllers{
		Session:   sess,
		Listing:   listing.NewController(client, provider),
		Favorites: favorites.NewController(client),
		Reviews:   reviews.NewController(client),
	}, opts.Debug)
}

// applyOptions накладывает флаги поверх конфигурации.
func applyOptions(cfg *config.Config, o *options) {
	if o.ServerURL != "" {
		cfg.API.BaseURL = o.ServerURL
	}
	if o.Location != "" {
		cfg.Location.Coordinate = o.Location
	}
	if o.Debug {
		cfg.Log.Level = "debug"
	}
}

// newTokenStore выбирает хранилище токена: зашифрованный файл, если задан пароль, иначе память.
func newTokenStore(cfg config.TokenStoreConfig) tokenstore.Store {
	if cfg.Passphrase == "" {
		slog.Info("Пароль хранилища не задан, токен хранится только в памяти")
		return tokenstore.NewMemory()
	}
	store, err := tokenstore.NewKDBX(cfg.Path, cfg.Passphrase)
	if err != nil {
		slog.Warn("Не удалось открыть хранилище токена, используем память", "path", cfg.Path, "error", err)
		return tokenstore.NewMemory()
	}
	slog.Info("Токен хранится в зашифрованном файле", "path", store.Path())
	return store
}
