package api

import (
	"sync"

	"kalita/internal/dsl"
	"kalita/internal/lang"
)

// Registry - текущие DSL-модель и каталоги переводов; меняются целиком
// при перезагрузке.
type Registry struct {
	mu       sync.RWMutex
	model    *dsl.Model
	catalogs lang.Catalogs
}

func NewRegistry(model *dsl.Model, catalogs lang.Catalogs) *Registry {
	if model == nil {
		model = &dsl.Model{Entities: map[string]*dsl.Entity{}, Infolists: map[string]*dsl.Infolist{}}
	}
	if catalogs == nil {
		catalogs = lang.Catalogs{}
	}
	return &Registry{model: model, catalogs: catalogs}
}

// Snapshot - согласованная пара на время запроса; менять нельзя.
func (r *Registry) Snapshot() (*dsl.Model, lang.Catalogs) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model, r.catalogs
}

func (r *Registry) swap(model *dsl.Model, catalogs lang.Catalogs) {
	r.mu.Lock()
	r.model = model
	r.catalogs = catalogs
	r.mu.Unlock()
}
