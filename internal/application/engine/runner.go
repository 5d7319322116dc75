package engine

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

// Runner programa los ticks de un controller. Marca el ritmo con un token
// bucket cuya tasa sigue la velocidad del controller.
type Runner struct {
	ctrl      *Controller
	limiter   *rate.Limiter
	observers []ports.TickObserver
}

// NewRunner crea un runner que reporta los eventos de tick a los observers.
func NewRunner(ctrl *Controller, observers ...ports.TickObserver) *Runner {
	return &Runner{
		ctrl:      ctrl,
		limiter:   rate.NewLimiter(rate.Every(ctrl.Speed()), 1),
		observers: observers,
	}
}

// Run bloquea hasta que se cancela ctx, y hace tick mientras el controller esté en PLAYING.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("runner: started", "speed", r.ctrl.Speed())
	for {
		if r.ctrl.State() != domain.StatePlaying {
			select {
			case <-ctx.Done():
				slog.Info("runner: stopped")
				return ctx.Err()
			case <-r.ctrl.Wake():
				continue
			}
		}

		res, err := r.pacedTick(ctx)
		if err != nil {
			slog.Info("runner: stopped", "err", err)
			return err
		}
		r.dispatch(ctx, res)
	}
}

// PlayToEnd reproduce desde el cursor actual hasta agotar la serie.
// Con paced en false los ticks corren sin pausa (replays en batch).
func (r *Runner) PlayToEnd(ctx context.Context, paced bool) error {
	if !r.ctrl.Play() {
		return nil
	}
	for {
		var res TickResult
		if paced {
			var err error
			if res, err = r.pacedTick(ctx); err != nil {
				return err
			}
		} else {
			if err := ctx.Err(); err != nil {
				return err
			}
			res = r.ctrl.Tick()
		}
		r.dispatch(ctx, res)
		if res.Outcome != TickAdvanced {
			return nil
		}
	}
}

// pacedTick espera al limiter y hace tick con la generación leída antes de
// esperar: un reset durante la espera descarta el tick.
func (r *Runner) pacedTick(ctx context.Context) (TickResult, error) {
	gen := r.ctrl.Generation()
	r.limiter.SetLimit(rate.Every(r.ctrl.Speed()))
	if err := r.limiter.Wait(ctx); err != nil {
		return TickResult{}, err
	}
	return r.ctrl.TickAt(gen), nil
}

func (r *Runner) dispatch(ctx context.Context, res TickResult) {
	switch res.Outcome {
	case TickStale:
		slog.Debug("runner: discarded stale tick")
		return
	case TickIdle:
		return
	}
	for _, o := range r.observers {
		o.OnTick(ctx, res.Event)
	}
}
