package ports

import (
	"context"

	"github.com/forfunphy/stockmove/internal/domain"
)

// TickObserver recibe cada evento de tick que produce un runner.
// Corre en la goroutine del runner: no debe bloquear.
type TickObserver interface {
	OnTick(ctx context.Context, ev domain.TickEvent)
}

// Notifier presenta al usuario el resultado de una corrida terminada.
type Notifier interface {
	TickObserver

	// Report imprime la lista de trades y las estadísticas de la corrida.
	Report(ctx context.Context, snap domain.Snapshot) error
}
