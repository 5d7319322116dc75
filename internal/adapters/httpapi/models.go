package httpapi

import "github.com/forfunphy/stockmove/internal/domain"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SelectRequest switches the replayed instrument.
type SelectRequest struct {
	Code string `json:"code" binding:"required"`
}

// SpeedRequest sets the delay between ticks in milliseconds.
type SpeedRequest struct {
	SpeedMS int `json:"speedMs" binding:"required"`
}

// WindowRequest sets the maximum visible window length.
type WindowRequest struct {
	Size int `json:"size" binding:"required"`
}

// ImportResponse summarizes a CSV import.
type ImportResponse struct {
	Rows        int                 `json:"rows"`
	Accepted    int                 `json:"accepted"`
	Skipped     []domain.SkippedRow `json:"skipped"`
	Instruments []domain.Instrument `json:"instruments"`
	Selected    string              `json:"selected"`
}

// PlaybackResponse is returned by every playback control.
type PlaybackResponse struct {
	State      domain.PlaybackState `json:"state"`
	Cursor     int                  `json:"cursor"`
	Generation uint64               `json:"generation"`
	SpeedMS    int64                `json:"speedMs"`
	WindowSize int                  `json:"windowSize"`
}

// StepResponse reports what a manual step did.
type StepResponse struct {
	PlaybackResponse
	Outcome  string           `json:"outcome"`
	Decision domain.Decision  `json:"decision,omitempty"`
	Bar      *domain.Bar      `json:"bar,omitempty"`
	Opened   *domain.Position `json:"opened,omitempty"`
	Closed   *domain.Trade    `json:"closed,omitempty"`
}

// WindowResponse is the visible window plus what the chart needs to draw it.
type WindowResponse struct {
	Code         string              `json:"code"`
	Cursor       int                 `json:"cursor"`
	Bars         []domain.Bar        `json:"bars"`
	Trades       []domain.Trade      `json:"trades"`
	Position     *domain.Position    `json:"position,omitempty"`
	MAVisibility domain.MAVisibility `json:"maVisibility"`
}
