// Package lang - каталоги переводов инфолистов (YAML, по файлу на локаль).
package lang

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

var ErrUnknownLocale = errors.New("unknown locale")

// Catalog - переводы одной локали, сгруппированные как в файле.
type Catalog struct {
	Locale   string            `yaml:"locale" json:"locale"`
	Entries  map[string]string `yaml:"entries" json:"entries"`
	Sections map[string]string `yaml:"sections" json:"sections"`
	Actions  map[string]string `yaml:"actions" json:"actions"`
	Labels   map[string]string `yaml:"labels" json:"labels"`
}

func (c *Catalog) group(name string) map[string]string {
	switch name {
	case "entries":
		return c.Entries
	case "sections":
		return c.Sections
	case "actions":
		return c.Actions
	case "labels":
		return c.Labels
	}
	return nil
}

// Lookup ищет перевод по ключу "группа.ключ".
func (c *Catalog) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	group, name, ok := strings.Cut(key, ".")
	if !ok {
		return "", false
	}
	v, ok := c.group(group)[name]
	return v, ok
}

// Catalogs - каталоги по локали.
type Catalogs map[string]*Catalog

// Get - каталог локали; для "ar-IQ" подходит "ar".
func (cs Catalogs) Get(locale string) (*Catalog, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if c, ok := cs[locale]; ok {
		return c, nil
	}
	if base, _, ok := strings.Cut(locale, "-"); ok {
		if c, ok := cs[base]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
}

// Translator - перевод с откатом на DefaultLocale; ключ без перевода не найден.
func (cs Catalogs) Translator(locale string) func(key string) (string, bool) {
	primary, _ := cs.Get(locale)
	fallback := cs[DefaultLocale]
	return func(key string) (string, bool) {
		if v, ok := primary.Lookup(key); ok {
			return v, true
		}
		return fallback.Lookup(key)
	}
}

// Locales - отсортированный список загруженных локалей.
func (cs Catalogs) Locales() []string {
	out := make([]string, 0, len(cs))
	for k := range cs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadDir читает все *.yaml/*.yml из dir. Локаль - поле locale или имя файла.
func LoadDir(dir string) (Catalogs, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := Catalogs{}
	for _, file := range files {
		ext := filepath.Ext(file.Name())
		if file.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var c Catalog
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if c.Locale == "" {
			c.Locale = strings.TrimSuffix(file.Name(), ext)
		}
		c.Locale = strings.ToLower(c.Locale)
		if _, dup := out[c.Locale]; dup {
			return nil, fmt.Errorf("%s: duplicate locale %q", path, c.Locale)
		}
		out[c.Locale] = &c
	}
	return out, nil
}
