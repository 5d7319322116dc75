package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/strategy"
)

const (
	DefaultWindowSize = 60
	MinWindowSize     = 1
	MaxWindowSize     = 1000

	DefaultSpeed = 100 * time.Millisecond
	MinSpeed     = 10 * time.Millisecond
	MaxSpeed     = 1000 * time.Millisecond
)

// TickOutcome says what a tick did.
type TickOutcome string

const (
	TickAdvanced TickOutcome = "ADVANCED" // cursor moved, decision applied
	TickStopped  TickOutcome = "STOPPED"  // series exhausted, ledger untouched
	TickStale    TickOutcome = "STALE"    // scheduled before a reinitialization
	TickIdle     TickOutcome = "IDLE"     // not playing
)

// TickResult is returned by every tick entry point.
type TickResult struct {
	Outcome TickOutcome
	Event   domain.TickEvent
}

// Controller is the playback state machine for one series. Every exported
// method is a single critical section, so ticks never overlap and
// reinitialization is atomic with respect to a pending tick.
type Controller struct {
	mu sync.Mutex

	registry strategy.Registry
	series   domain.Series
	cfg      domain.BacktestConfig

	state      domain.PlaybackState
	cursor     int
	window     []domain.Bar
	windowSize int
	speed      time.Duration
	generation uint64
	runID      string
	ledger     *Ledger

	wake chan struct{}
}

// NewController creates a controller with no data loaded.
func NewController(registry strategy.Registry, cfg domain.BacktestConfig) *Controller {
	if registry == nil {
		registry = strategy.DefaultRegistry()
	}
	c := &Controller{
		registry:   registry,
		cfg:        cfg,
		windowSize: DefaultWindowSize,
		speed:      DefaultSpeed,
		wake:       make(chan struct{}, 1),
	}
	c.initializeLocked()
	return c
}

// Wake is signaled when the runner should re-read state or speed.
func (c *Controller) Wake() <-chan struct{} { return c.wake }

func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Load replaces the series and re-initializes with the current configuration.
func (c *Controller) Load(series domain.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = series
	c.initializeLocked()
}

// LoadFromFirstMonth replaces the series and moves the configured start to
// the month of its first bar. The rest of the configuration is read inside
// the same critical section, so a concurrent Reconfigure is never lost.
func (c *Controller) LoadFromFirstMonth(series domain.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = series
	if series.Len() > 0 {
		t := series.Bars[0].Time()
		c.cfg.StartYear, c.cfg.StartMonth = t.Year(), t.Month()
	}
	c.initializeLocked()
}

// LoadWithConfig replaces series and configuration in one step.
// An invalid configuration leaves the controller untouched.
func (c *Controller) LoadWithConfig(series domain.Series, cfg domain.BacktestConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine.LoadWithConfig: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = series
	c.cfg = cfg
	c.initializeLocked()
	return nil
}

// Initialize rewinds to the configured start month with a fresh ledger.
func (c *Controller) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initializeLocked()
}

// Reset is Initialize under the name the playback controls use.
func (c *Controller) Reset() { c.Initialize() }

// Reconfigure validates cfg and re-initializes with it.
func (c *Controller) Reconfigure(cfg domain.BacktestConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine.Reconfigure: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.initializeLocked()
	return nil
}

func (c *Controller) initializeLocked() {
	c.generation++
	c.runID = uuid.New().String()
	c.ledger = NewLedger(c.cfg.InitialCapital)
	c.cursor = 0
	c.window = nil

	if c.series.Len() == 0 {
		c.state = domain.StateStopped
		c.signal()
		return
	}

	idx := c.series.IndexAtOrAfter(c.cfg.StartTime())
	if idx < 0 {
		idx = 0
	}
	c.cursor = idx
	c.recomputeWindowLocked()
	c.state = domain.StatePaused
	c.signal()

	slog.Debug("engine: initialized",
		"code", c.series.Code,
		"run_id", c.runID,
		"generation", c.generation,
		"cursor", c.cursor,
		"date", c.series.Bars[c.cursor].Date,
	)
}

func (c *Controller) recomputeWindowLocked() {
	start := c.cursor + 1 - c.windowSize
	if start < 0 {
		start = 0
	}
	c.window = c.series.Bars[start : c.cursor+1]
}

// Play starts playback. It reports whether the controller is playing.
// Playing from STOPPED or at the last bar is refused.
func (c *Controller) Play() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case domain.StatePlaying:
		return true
	case domain.StatePaused:
		if c.cursor >= c.series.Len()-1 {
			return false
		}
		c.state = domain.StatePlaying
		c.signal()
		return true
	default:
		return false
	}
}

// Pause stops scheduling. A tick already running completes.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.StatePlaying {
		c.state = domain.StatePaused
		c.signal()
	}
}

// Tick advances one bar if playing.
func (c *Controller) Tick() TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StatePlaying {
		return TickResult{Outcome: TickIdle}
	}
	return c.advanceLocked()
}

// TickAt is the scheduler's tick. It is discarded when gen no longer matches
// the current generation.
func (c *Controller) TickAt(gen uint64) TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.cursor >= c.series.Len() {
		return TickResult{Outcome: TickStale}
	}
	if c.state != domain.StatePlaying {
		return TickResult{Outcome: TickIdle}
	}
	return c.advanceLocked()
}

// Step advances one bar under manual control while paused.
func (c *Controller) Step() TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StatePaused {
		return TickResult{Outcome: TickIdle}
	}
	return c.advanceLocked()
}

func (c *Controller) advanceLocked() TickResult {
	ev := domain.TickEvent{RunID: c.runID, Code: c.series.Code, Config: c.cfg}

	if c.cursor >= c.series.Len()-1 {
		c.state = domain.StateStopped
		ev.Cursor = c.cursor
		ev.Bar = c.series.Bars[c.cursor]
		ev.Decision = domain.DecisionHold
		ev.Stopped = true
		slog.Debug("engine: series exhausted", "code", c.series.Code, "run_id", c.runID)
		return TickResult{Outcome: TickStopped, Event: ev}
	}

	c.cursor++
	c.recomputeWindowLocked()
	bar := c.series.Bars[c.cursor]
	ev.Cursor = c.cursor
	ev.Bar = bar

	decision := c.registry.Decide(bar, c.cfg, c.ledger.Position())
	ev.Decision = decision

	fill := domain.FillAt(bar, c.cfg.PriceBasis)
	switch decision {
	case domain.DecisionEnter:
		p, err := c.ledger.Enter(fill)
		if err != nil {
			slog.Debug("engine: enter rejected", "date", bar.Date, "err", err)
			break
		}
		ev.Opened = &p
	case domain.DecisionExit:
		t, err := c.ledger.Exit(fill)
		if err != nil {
			slog.Debug("engine: exit rejected", "date", bar.Date, "err", err)
			break
		}
		ev.Closed = &t
	}

	return TickResult{Outcome: TickAdvanced, Event: ev}
}

// SetWindowSize clamps n to [MinWindowSize, MaxWindowSize] and returns the
// value applied. The visible window picks it up on the next tick.
func (c *Controller) SetWindowSize(n int) int {
	n = min(max(n, MinWindowSize), MaxWindowSize)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowSize = n
	return n
}

// SetSpeed clamps d to [MinSpeed, MaxSpeed] and returns the value applied.
func (c *Controller) SetSpeed(d time.Duration) time.Duration {
	d = min(max(d, MinSpeed), MaxSpeed)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = d
	c.signal()
	return d
}

// ManualBuy opens a position at today's bar. Only the MANUAL strategy
// accepts manual orders.
func (c *Controller) ManualBuy() (domain.Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bar, err := c.manualBarLocked()
	if err != nil {
		return domain.Position{}, fmt.Errorf("engine.ManualBuy: %w", err)
	}
	return c.ledger.Enter(domain.FillAt(bar, c.cfg.PriceBasis))
}

// ManualSell closes the open position at today's bar.
func (c *Controller) ManualSell() (domain.Trade, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bar, err := c.manualBarLocked()
	if err != nil {
		return domain.Trade{}, "", fmt.Errorf("engine.ManualSell: %w", err)
	}
	t, err := c.ledger.Exit(domain.FillAt(bar, c.cfg.PriceBasis))
	return t, c.runID, err
}

func (c *Controller) manualBarLocked() (domain.Bar, error) {
	if c.cfg.Strategy != domain.StrategyManual {
		return domain.Bar{}, domain.ErrNotManual
	}
	if c.series.Len() == 0 {
		return domain.Bar{}, domain.ErrNoData
	}
	return c.series.Bars[c.cursor], nil
}

// Snapshot copies everything the presentation layer may read.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.Snapshot{
		Code:         c.series.Code,
		Name:         c.series.Name,
		RunID:        c.runID,
		State:        c.state,
		Cursor:       c.cursor,
		SeriesLength: c.series.Len(),
		SpeedMS:      c.speed.Milliseconds(),
		WindowSize:   c.windowSize,
		Generation:   c.generation,
		Window:       append([]domain.Bar(nil), c.window...),
		Position:     c.ledger.Position(),
		Trades:       c.ledger.Trades(),
		Stats:        c.ledger.Stats(),
		Config:       c.cfg,
	}
	if c.series.Len() > 0 {
		today := c.series.Bars[c.cursor]
		snap.Today = &today
		if snap.Position != nil {
			snap.Unrealized = snap.Position.Unrealized(c.cfg.PriceBasis.PriceOf(today))
		}
	}
	return snap
}

// State returns the playback state.
func (c *Controller) State() domain.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the current initialization counter.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Speed returns the delay between scheduled ticks.
func (c *Controller) Speed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Config returns the active configuration.
func (c *Controller) Config() domain.BacktestConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Series returns the loaded series. Bars must be treated as read-only.
func (c *Controller) Series() domain.Series {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.series
}
