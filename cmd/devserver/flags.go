package main

import (
	"flag"
	"fmt"
	"os"
)

const envConfigPath = "CONFIG_PATH"

// flags хранит параметры командной строки dev-сервера. Пустое значение не переопределяет конфиг.
type flags struct {
	ConfigPath string
	Addr       string
	LogLevel   string
	NoSeed     bool
}

// parseFlags разбирает аргументы командной строки.
func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{}
	fs.StringVar(&f.ConfigPath, "config", "",
		fmt.Sprintf("Путь к YAML-конфигу (env: %s)", envConfigPath))
	fs.StringVar(&f.Addr, "addr", "", "Адрес для прослушивания (env: DEVSERVER_ADDR)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Уровень логирования (env: LOG_LEVEL)")
	fs.BoolVar(&f.NoSeed, "no-seed", false, "Не наполнять хранилище тестовыми ресторанами")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.ConfigPath == "" {
		f.ConfigPath = os.Getenv(envConfigPath)
	}
	return f, nil
}
