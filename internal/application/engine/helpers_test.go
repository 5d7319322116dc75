package engine_test

import (
	"context"
	"sync"
	"time"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

// weekdayRecords builds one record per weekday starting at from, with
// Close = startClose + i and Open = Close - 0.5.
func weekdayRecords(code, from string, n int, startClose float64) []domain.RawRecord {
	d, err := time.Parse("2006-01-02", from)
	if err != nil {
		panic(err)
	}
	var out []domain.RawRecord
	for len(out) < n {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			c := startClose + float64(len(out))
			out = append(out, domain.RawRecord{
				Line:  len(out) + 2,
				Date:  d.Format("2006-01-02"),
				Code:  code,
				Name:  code + " Inc",
				Open:  c - 0.5,
				High:  c + 1,
				Low:   c - 1,
				Close: c,
			})
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func seriesOf(records []domain.RawRecord) domain.Series {
	cat, _ := domain.Normalize(records)
	s, _ := cat.First()
	return s
}

func configWith(kind domain.StrategyKind) domain.BacktestConfig {
	cfg := domain.DefaultBacktestConfig()
	cfg.Strategy = kind
	return cfg
}

// --- fakes ---

type recordingObserver struct {
	mu     sync.Mutex
	events []domain.TickEvent
}

func (r *recordingObserver) OnTick(_ context.Context, ev domain.TickEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) Events() []domain.TickEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TickEvent(nil), r.events...)
}

type fakeStore struct {
	saved   *domain.Catalog
	saveErr error
}

func (f *fakeStore) SaveCatalog(_ context.Context, cat domain.Catalog) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = &cat
	return nil
}

func (f *fakeStore) LoadCatalog(context.Context) (domain.Catalog, error) {
	if f.saved == nil {
		return domain.NewCatalog(), nil
	}
	return *f.saved, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeJournal struct {
	mu     sync.Mutex
	runs   map[string]string
	trades map[string][]domain.Trade
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{runs: map[string]string{}, trades: map[string][]domain.Trade{}}
}

func (f *fakeJournal) StartRun(_ context.Context, runID, code string, _ domain.BacktestConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[runID] = code
	return nil
}

func (f *fakeJournal) RecordTrade(_ context.Context, runID string, t domain.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades[runID] = append(f.trades[runID], t)
	return nil
}

func (f *fakeJournal) ListRuns(context.Context, int) ([]ports.RunInfo, error) { return nil, nil }

func (f *fakeJournal) RunTrades(_ context.Context, runID string) ([]domain.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trades[runID], nil
}
