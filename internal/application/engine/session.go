package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

// maxLoggedSkips bounds how many skipped rows are logged individually per import.
const maxLoggedSkips = 20

// Session owns the imported catalog, the selected instrument and the
// controller that replays it. store and recorder are optional.
type Session struct {
	mu       sync.RWMutex
	catalog  domain.Catalog
	code     string
	vis      domain.MAVisibility
	ctrl     *Controller
	store    ports.SeriesStore
	recorder *JournalRecorder
}

// NewSession wraps ctrl. Pass nil store or journal to disable persistence.
func NewSession(ctrl *Controller, store ports.SeriesStore, journal ports.TradeJournal) *Session {
	s := &Session{
		ctrl:  ctrl,
		store: store,
		vis:   domain.DefaultMAVisibility(),
	}
	if journal != nil {
		s.recorder = NewJournalRecorder(journal)
	}
	return s
}

// Controller returns the session's playback controller.
func (s *Session) Controller() *Controller { return s.ctrl }

// Observers returns the tick observers the session needs wired into a runner.
func (s *Session) Observers() []ports.TickObserver {
	if s.recorder == nil {
		return nil
	}
	return []ports.TickObserver{s.recorder}
}

// Restore loads the catalog saved by a previous import, if any.
// It selects the first instrument but never resumes a previous run.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	cat, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return false, fmt.Errorf("engine.Restore: load catalog: %w", err)
	}
	if cat.Len() == 0 {
		return false, nil
	}
	s.replace(cat, false)
	slog.Info("engine: catalog restored", "instruments", cat.Len(), "selected", s.SelectedCode())
	return true, nil
}

// Import normalizes records and, when at least one bar survives, replaces
// the catalog, selects the first instrument and rewinds to its first month.
// An import with nothing usable leaves the session exactly as it was.
func (s *Session) Import(ctx context.Context, records []domain.RawRecord) (domain.NormalizeReport, error) {
	cat, rep := domain.Normalize(records)
	logSkipped(rep.Skipped)

	if cat.Len() == 0 {
		return rep, fmt.Errorf("engine.Import: %d rows: %w", rep.Rows, domain.ErrEmptyImport)
	}

	if s.store != nil {
		if err := s.store.SaveCatalog(ctx, cat); err != nil {
			return rep, fmt.Errorf("engine.Import: save catalog: %w", err)
		}
	}
	s.replace(cat, true)

	slog.Info("engine: import complete",
		"rows", rep.Rows,
		"accepted", rep.Accepted,
		"skipped", len(rep.Skipped),
		"instruments", cat.Len(),
		"selected", s.SelectedCode(),
	)
	return rep, nil
}

func (s *Session) replace(cat domain.Catalog, snapStart bool) {
	first, _ := cat.First()

	s.mu.Lock()
	defer s.mu.Unlock()
	if snapStart {
		s.ctrl.LoadFromFirstMonth(first)
	} else {
		s.ctrl.Load(first)
	}
	s.catalog = cat
	s.code = first.Code
}

func logSkipped(skipped []domain.SkippedRow) {
	for i, sk := range skipped {
		if i == maxLoggedSkips {
			slog.Warn("engine: more rows skipped", "count", len(skipped)-maxLoggedSkips)
			return
		}
		slog.Warn("engine: row skipped", "line", sk.Line, "code", sk.Code, "reason", sk.Reason)
	}
}

// SelectInstrument switches to code with a fresh run.
func (s *Session) SelectInstrument(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	series, ok := s.catalog.Get(code)
	if !ok {
		return fmt.Errorf("engine.SelectInstrument: %q: %w", code, domain.ErrUnknownInstrument)
	}
	s.ctrl.Load(series)
	s.code = code
	slog.Info("engine: instrument selected", "code", code, "bars", series.Len())
	return nil
}

// SelectedCode returns the code of the instrument being replayed.
func (s *Session) SelectedCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

// Instruments lists the catalog in first-seen order.
func (s *Session) Instruments() []domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Instruments()
}

// Reconfigure applies cfg and restarts the run.
func (s *Session) Reconfigure(cfg domain.BacktestConfig) error {
	return s.ctrl.Reconfigure(cfg)
}

// ManualBuy opens a position at today's bar.
func (s *Session) ManualBuy() (domain.Position, error) {
	return s.ctrl.ManualBuy()
}

// ManualSell closes the position at today's bar and journals the trade.
func (s *Session) ManualSell(ctx context.Context) (domain.Trade, error) {
	t, runID, err := s.ctrl.ManualSell()
	if err != nil {
		return domain.Trade{}, err
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, runID, s.SelectedCode(), s.ctrl.Config(), t)
	}
	return t, nil
}

// Step advances one bar while paused and journals a trade it closes.
// Ticks from the runner reach the journal through Observers instead.
func (s *Session) Step(ctx context.Context) TickResult {
	res := s.ctrl.Step()
	if res.Outcome == TickAdvanced && s.recorder != nil {
		s.recorder.OnTick(ctx, res.Event)
	}
	return res
}

// MAVisibility returns the display-only moving average selection.
func (s *Session) MAVisibility() domain.MAVisibility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vis
}

// SetMAVisibility replaces the display-only moving average selection.
func (s *Session) SetMAVisibility(v domain.MAVisibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vis = v
}

// Snapshot is the controller snapshot plus session-level display state.
func (s *Session) Snapshot() domain.Snapshot {
	snap := s.ctrl.Snapshot()
	snap.MAVisibility = s.MAVisibility()
	return snap
}

// SetSpeed is a convenience for callers that speak milliseconds.
func (s *Session) SetSpeed(ms int) time.Duration {
	return s.ctrl.SetSpeed(time.Duration(ms) * time.Millisecond)
}
