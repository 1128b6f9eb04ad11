package entry

import (
	"bytes"
	"encoding/json"
)

// Props - упорядоченный набор пропсов компонента. Порядок ключей -
// порядок первой установки; повторный Set перезаписывает значение на месте.
type Props struct {
	keys   []string
	values map[string]any
}

func NewProps() *Props {
	return &Props{values: map[string]any{}}
}

func (p *Props) Set(key string, v any) *Props {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
	return p
}

func (p *Props) Get(key string) any { return p.values[key] }

func (p *Props) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

func (p *Props) Keys() []string { return append([]string(nil), p.keys...) }

func (p *Props) Len() int { return len(p.keys) }

// Merge накладывает other поверх p: более специфичные ключи побеждают.
func (p *Props) Merge(other *Props) *Props {
	if other == nil {
		return p
	}
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
	return p
}

// Map - неупорядоченная копия (удобно в тестах и для gin.H).
func (p *Props) Map() map[string]any {
	out := make(map[string]any, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k]
	}
	return out
}

func (p *Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
