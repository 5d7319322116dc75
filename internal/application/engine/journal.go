package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

// JournalRecorder appends closed trades to a TradeJournal. A run row is
// created lazily the first time one of its trades closes.
type JournalRecorder struct {
	journal ports.TradeJournal
	mu      sync.Mutex
	started map[string]bool
}

// NewJournalRecorder wraps journal.
func NewJournalRecorder(journal ports.TradeJournal) *JournalRecorder {
	return &JournalRecorder{journal: journal, started: make(map[string]bool)}
}

// OnTick implements ports.TickObserver.
func (j *JournalRecorder) OnTick(ctx context.Context, ev domain.TickEvent) {
	if ev.Closed == nil {
		return
	}
	j.Record(ctx, ev.RunID, ev.Code, ev.Config, *ev.Closed)
}

// Record journals one trade. Failures are logged, never returned: the
// journal is a side record and must not stop playback.
func (j *JournalRecorder) Record(ctx context.Context, runID, code string, cfg domain.BacktestConfig, t domain.Trade) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.started[runID] {
		if err := j.journal.StartRun(ctx, runID, code, cfg); err != nil {
			slog.Warn("journal: error starting run", "run_id", runID, "err", err)
			return
		}
		j.started[runID] = true
	}
	if err := j.journal.RecordTrade(ctx, runID, t); err != nil {
		slog.Warn("journal: error recording trade", "run_id", runID, "seq", t.Seq, "err", err)
	}
}
