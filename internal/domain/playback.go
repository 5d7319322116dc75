package domain

// PlaybackState is the controller's lifecycle state.
type PlaybackState string

const (
	StateStopped PlaybackState = "STOPPED"
	StatePlaying PlaybackState = "PLAYING"
	StatePaused  PlaybackState = "PAUSED"
)

// Snapshot is everything the presentation layer may read about a session.
// All slices are copies owned by the caller.
type Snapshot struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	RunID        string         `json:"runId"`
	State        PlaybackState  `json:"state"`
	Cursor       int            `json:"cursor"`
	SeriesLength int            `json:"seriesLength"`
	SpeedMS      int64          `json:"speedMs"`
	WindowSize   int            `json:"windowSize"`
	Generation   uint64         `json:"generation"`
	Today        *Bar           `json:"today,omitempty"`
	Window       []Bar          `json:"window"`
	Position     *Position      `json:"position,omitempty"`
	Unrealized   float64        `json:"unrealized"`
	Trades       []Trade        `json:"trades"`
	Stats        Stats          `json:"stats"`
	Config       BacktestConfig `json:"config"`
	MAVisibility MAVisibility   `json:"maVisibility"`
}

// TickEvent is emitted to observers after every tick that did something.
type TickEvent struct {
	RunID    string
	Code     string
	Config   BacktestConfig
	Cursor   int
	Bar      Bar
	Decision Decision
	Opened   *Position
	Closed   *Trade
	Stopped  bool
}
