// Package config: дефолты -> файл (JSON/YAML) -> ENV KALITA_* -> флаги.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port" json:"port"`
	DSLDir      string `mapstructure:"dslDir" json:"dslDir"`
	LangDir     string `mapstructure:"langDir" json:"langDir"`
	DBURL       string `mapstructure:"dbUrl" json:"dbUrl"`
	AutoMigrate bool   `mapstructure:"autoMigrate" json:"autoMigrate"`
	AssetURL    string `mapstructure:"assetUrl" json:"assetUrl"`
	LogLevel    string `mapstructure:"logLevel" json:"logLevel"`
	LogDev      bool   `mapstructure:"logDev" json:"logDev"`
}

const DefaultFile = "kalita.json"

// ключ -> флаг, ENV, дефолт, описание
var keys = []struct {
	key, flag, env string
	def            any
	usage          string
}{
	{"port", "port", "KALITA_PORT", "8080", "HTTP port"},
	{"dslDir", "dsl", "KALITA_DSL_DIR", "dsl", "Path to DSL directory"},
	{"langDir", "lang", "KALITA_LANG_DIR", "lang", "Path to translation catalogs"},
	{"dbUrl", "db", "KALITA_DB_URL", "", "Postgres URL (empty = in-memory)"},
	{"autoMigrate", "auto-migrate", "KALITA_AUTO_MIGRATE", false, "Apply DDL for DSL entities on start"},
	{"assetUrl", "asset-url", "KALITA_ASSET_URL", "http://localhost", "Base URL for relative image paths"},
	{"logLevel", "log-level", "KALITA_LOG_LEVEL", "info", "Log level (debug, info, warn, error)"},
	{"logDev", "log-dev", "KALITA_LOG_DEV", false, "Human-readable console logs"},
}

// Flags регистрирует флаги конфигурации в fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", DefaultFile, "Path to config file (JSON or YAML)")
	for _, k := range keys {
		switch d := k.def.(type) {
		case bool:
			fs.Bool(k.flag, d, k.usage)
		case string:
			fs.String(k.flag, d, k.usage)
		}
	}
}

// Load собирает конфигурацию. fs - уже разобранный набор флагов из Flags
// (nil - без флагов). Файл по умолчанию может отсутствовать, явно указанный - нет.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for _, k := range keys {
		v.SetDefault(k.key, k.def)
		if err := v.BindEnv(k.key, k.env); err != nil {
			return Config{}, err
		}
		if fs != nil {
			if f := fs.Lookup(k.flag); f != nil {
				if err := v.BindPFlag(k.key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	path, explicit := DefaultFile, false
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			path, explicit = f.Value.String(), f.Changed
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if explicit || !notFound(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)
	return cfg, nil
}

func notFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
