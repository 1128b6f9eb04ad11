package entry

import (
	"net/url"
	"strings"
)

// DefaultAssetBase - базовый адрес ассетов, если хост не задал свой.
const DefaultAssetBase = "http://localhost"

// AssetURLFunc превращает относительный путь в абсолютный URL.
type AssetURLFunc func(path string) string

// AssetBase - AssetURLFunc поверх базового адреса.
func AssetBase(base string) AssetURLFunc {
	base = strings.TrimRight(base, "/")
	return func(path string) string {
		return base + "/" + strings.TrimLeft(path, "/")
	}
}

// IsAbsoluteURL - строка разбирается как URL со схемой и хостом.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// ImageEntry - одно изображение или стопка изображений.
// URL нормализуются при сериализации, а не при установке.
type ImageEntry struct {
	Base[*ImageEntry]

	width        *int
	height       *int
	rounded      bool
	circular     bool
	alt          string
	defaultImage string
	stacked      bool
	limit        *int
	ring         *int
	overlap      *int

	assetURL AssetURLFunc
}

func Image(name string) *ImageEntry {
	e := &ImageEntry{}
	e.setup(e, KindImage, name)
	return e
}

func (e *ImageEntry) Width(px int) *ImageEntry {
	e.width = &px
	return e
}

func (e *ImageEntry) Height(px int) *ImageEntry {
	e.height = &px
	return e
}

// Size задаёт ширину и высоту разом; последующие Width/Height
// переопределяют только своё измерение.
func (e *ImageEntry) Size(px int) *ImageEntry {
	w, h := px, px
	e.width, e.height = &w, &h
	return e
}

func (e *ImageEntry) Rounded(cond bool) *ImageEntry {
	e.rounded = cond
	return e
}

// Circular тянет за собой rounded; Rounded(false) circular не снимает.
func (e *ImageEntry) Circular(cond bool) *ImageEntry {
	e.circular = cond
	e.rounded = cond
	return e
}

func (e *ImageEntry) Alt(text string) *ImageEntry {
	e.alt = text
	return e
}

func (e *ImageEntry) DefaultImage(u string) *ImageEntry {
	e.defaultImage = u
	return e
}

func (e *ImageEntry) Stacked(cond bool) *ImageEntry {
	e.stacked = cond
	return e
}

func (e *ImageEntry) Limit(n int) *ImageEntry {
	e.limit = &n
	return e
}

func (e *ImageEntry) Ring(px int) *ImageEntry {
	e.ring = &px
	return e
}

func (e *ImageEntry) Overlap(px int) *ImageEntry {
	e.overlap = &px
	return e
}

// AssetURL задаёт функцию разрешения относительных путей.
func (e *ImageEntry) AssetURL(fn AssetURLFunc) *ImageEntry {
	e.assetURL = fn
	return e
}

func (e *ImageEntry) absolute(u string) any {
	if u == "" {
		return nil
	}
	if IsAbsoluteURL(u) {
		return u
	}
	fn := e.assetURL
	if fn == nil {
		fn = AssetBase(DefaultAssetBase)
	}
	return fn(u)
}

// imageURLs нормализует строку или список строк; прочее возвращается как есть.
func (e *ImageEntry) imageURLs(state any) any {
	switch t := state.(type) {
	case string:
		return e.absolute(t)
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, e.absolute(s))
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				out = append(out, e.absolute(s))
				continue
			}
			out = append(out, it)
		}
		return out
	}
	return state
}

func (e *ImageEntry) ToProps() (*Props, error) {
	return e.baseProps().Merge(NewProps().
		Set("state", e.imageURLs(e.GetState())).
		Set("width", intOrNil(e.width)).
		Set("height", intOrNil(e.height)).
		Set("rounded", e.rounded).
		Set("circular", e.circular).
		Set("alt", nullable(e.alt)).
		Set("defaultImage", e.absolute(e.defaultImage)).
		Set("stacked", e.stacked).
		Set("limit", intOrNil(e.limit)).
		Set("ring", intOrNil(e.ring)).
		Set("overlap", intOrNil(e.overlap))), nil
}
