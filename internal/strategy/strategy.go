package strategy

import (
	"sort"

	"github.com/alejandrodnm/polylab/internal/domain"
)

// Strategy define el contrato que el engine de replay ejercita snapshot a
// snapshot. Cada estrategia encapsula una lógica de trading diferente.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// Scan filtra los mercados candidatos de la vista actual.
	Scan(markets []domain.Market) []domain.Opportunity

	// Analyze evalúa una oportunidad y devuelve la señal de trade.
	// ok es false cuando la oportunidad no pasa los umbrales.
	Analyze(opp domain.Opportunity) (domain.Signal, bool)

	// SizePosition traduce la señal a importe para el bankroll dado.
	// Un importe <= 0 descarta el trade.
	SizePosition(sig domain.Signal, bankroll float64) float64
}

// Registry mantiene las estrategias disponibles indexadas por nombre.
// La tabla se construye explícitamente al arrancar, sin reflection.
type Registry map[string]Strategy

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// Register añade una estrategia al registry.
func (r Registry) Register(s Strategy) {
	r[s.Name()] = s
}

// Get devuelve la estrategia por nombre.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

// All devuelve las estrategias ordenadas por nombre.
func (r Registry) All() []Strategy {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		out = append(out, r[name])
	}
	return out
}

// Default construye el registry con las estrategias de referencia, todas
// con el mismo sizer Kelly.
func Default(k domain.Kelly) Registry {
	r := NewRegistry()
	r.Register(NewHighProbHarvesting(k))
	r.Register(NewLongshotFade(k))
	return r
}
