package strategy

import (
	"github.com/forfunphy/stockmove/internal/domain"
)

// Strategy traduce una barra y la posición actual a una decisión.
// Las implementaciones son puras: mismas entradas, misma decisión.
type Strategy interface {
	// Kind devuelve el identificador con el que se registra la estrategia.
	Kind() domain.StrategyKind

	// Decide evalúa la barra. pos es nil si no hay posición.
	Decide(bar domain.Bar, cfg domain.BacktestConfig, pos *domain.Position) domain.Decision
}

// Registry contiene las estrategias disponibles indexadas por tipo.
type Registry map[domain.StrategyKind]Strategy

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// DefaultRegistry registra el conjunto completo de estrategias.
func DefaultRegistry() Registry {
	r := NewRegistry()
	r.Register(NextDayFlip{})
	r.Register(Weekday{})
	r.Register(Manual{})
	return r
}

// Register agrega s al registry, reemplazando la del mismo tipo.
func (r Registry) Register(s Strategy) {
	r[s.Kind()] = s
}

// Get devuelve la estrategia para kind.
func (r Registry) Get(kind domain.StrategyKind) (Strategy, bool) {
	s, ok := r[kind]
	return s, ok
}

// Decide busca cfg.Strategy y la evalúa. Un tipo desconocido devuelve HOLD.
func (r Registry) Decide(bar domain.Bar, cfg domain.BacktestConfig, pos *domain.Position) domain.Decision {
	s, ok := r.Get(cfg.Strategy)
	if !ok {
		return domain.DecisionHold
	}
	return s.Decide(bar, cfg, pos)
}
