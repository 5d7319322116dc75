package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forfunphy/stockmove/internal/adapters/csvtable"
	"github.com/forfunphy/stockmove/internal/application/engine"
	"github.com/forfunphy/stockmove/internal/domain"
)

// DefaultMaxImportBytes caps an uploaded CSV when Options leaves it unset.
const DefaultMaxImportBytes = 64 << 20

// Handler serves the control API for one session.
type Handler struct {
	session   *engine.Session
	maxImport int64
}

// NewHandler creates a handler bound to session. Request bodies on
// POST /import larger than maxImport bytes are rejected.
func NewHandler(session *engine.Session, maxImport int64) *Handler {
	if maxImport <= 0 {
		maxImport = DefaultMaxImportBytes
	}
	return &Handler{session: session, maxImport: maxImport}
}

// ListInstruments handles GET /api/v1/instruments
func (h *Handler) ListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instruments": h.session.Instruments(),
		"selected":    h.session.SelectedCode(),
	})
}

// SelectInstrument handles POST /api/v1/instruments/select
func (h *Handler) SelectInstrument(c *gin.Context) {
	var req SelectRequest
	if !bind(c, &req) {
		return
	}
	if err := h.session.SelectInstrument(req.Code); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.playback())
}

// Import handles POST /api/v1/import. The body is either a raw CSV table or
// a multipart form with the table in the "file" field. A body over the size
// limit is refused as a whole and the session keeps its data.
func (h *Handler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImport)

	body, err := importBody(c)
	if err != nil {
		if !tooLarge(c, err) {
			badRequest(c, "INVALID_REQUEST", err.Error())
		}
		return
	}
	defer body.Close()

	table, err := csvtable.Read(body)
	if err != nil {
		if !tooLarge(c, err) {
			badRequest(c, "INVALID_CSV", err.Error())
		}
		return
	}

	rep, err := h.session.Import(c.Request.Context(), table.Records)
	skipped := append(table.Skipped, rep.Skipped...)
	if err != nil {
		status, code := classify(err)
		c.JSON(status, ErrorResponse{Error: ErrorDetail{
			Code:    code,
			Message: err.Error(),
			Details: map[string]interface{}{"skipped": skipped},
		}})
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		Rows:        len(table.Records) + len(table.Skipped),
		Accepted:    rep.Accepted,
		Skipped:     skipped,
		Instruments: h.session.Instruments(),
		Selected:    h.session.SelectedCode(),
	})
}

func importBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		return fh.Open()
	}
	return c.Request.Body, nil
}

// tooLarge writes 413 when err comes from the body size limit.
func tooLarge(c *gin.Context, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{
		Code:    "IMPORT_TOO_LARGE",
		Message: fmt.Sprintf("import body exceeds %d bytes", mbe.Limit),
	}})
	return true
}

// Snapshot handles GET /api/v1/snapshot
func (h *Handler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Window handles GET /api/v1/window
func (h *Handler) Window(c *gin.Context) {
	snap := h.session.Snapshot()
	c.JSON(http.StatusOK, WindowResponse{
		Code:         snap.Code,
		Cursor:       snap.Cursor,
		Bars:         snap.Window,
		Trades:       snap.Trades,
		Position:     snap.Position,
		MAVisibility: snap.MAVisibility,
	})
}

// Position handles GET /api/v1/position
func (h *Handler) Position(c *gin.Context) {
	snap := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{"position": snap.Position, "unrealized": snap.Unrealized})
}

// Trades handles GET /api/v1/trades
func (h *Handler) Trades(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"trades": h.session.Snapshot().Trades})
}

// Stats handles GET /api/v1/stats
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot().Stats)
}

// GetConfig handles GET /api/v1/config
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Controller().Config())
}

// PutConfig handles PUT /api/v1/config. Omitted fields keep their value.
func (h *Handler) PutConfig(c *gin.Context) {
	cfg := h.session.Controller().Config()
	if !bind(c, &cfg) {
		return
	}
	if err := h.session.Reconfigure(cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Controller().Config())
}

// Play handles POST /api/v1/playback/play
func (h *Handler) Play(c *gin.Context) {
	h.session.Controller().Play()
	c.JSON(http.StatusOK, h.playback())
}

// Pause handles POST /api/v1/playback/pause
func (h *Handler) Pause(c *gin.Context) {
	h.session.Controller().Pause()
	c.JSON(http.StatusOK, h.playback())
}

// Reset handles POST /api/v1/playback/reset
func (h *Handler) Reset(c *gin.Context) {
	h.session.Controller().Reset()
	c.JSON(http.StatusOK, h.playback())
}

// Step handles POST /api/v1/playback/step
func (h *Handler) Step(c *gin.Context) {
	res := h.session.Step(c.Request.Context())
	resp := StepResponse{Outcome: string(res.Outcome)}
	if res.Outcome == engine.TickAdvanced || res.Outcome == engine.TickStopped {
		bar := res.Event.Bar
		resp.Bar = &bar
		resp.Decision = res.Event.Decision
		resp.Opened = res.Event.Opened
		resp.Closed = res.Event.Closed
	}
	resp.PlaybackResponse = h.playback()
	c.JSON(http.StatusOK, resp)
}

// SetSpeed handles PUT /api/v1/playback/speed
func (h *Handler) SetSpeed(c *gin.Context) {
	var req SpeedRequest
	if !bind(c, &req) {
		return
	}
	h.session.SetSpeed(req.SpeedMS)
	c.JSON(http.StatusOK, h.playback())
}

// SetWindow handles PUT /api/v1/playback/window
func (h *Handler) SetWindow(c *gin.Context) {
	var req WindowRequest
	if !bind(c, &req) {
		return
	}
	h.session.Controller().SetWindowSize(req.Size)
	c.JSON(http.StatusOK, h.playback())
}

// ManualBuy handles POST /api/v1/manual/buy
func (h *Handler) ManualBuy(c *gin.Context) {
	p, err := h.session.ManualBuy()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": p})
}

// ManualSell handles POST /api/v1/manual/sell
func (h *Handler) ManualSell(c *gin.Context) {
	t, err := h.session.ManualSell(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": t})
}

// GetMAVisibility handles GET /api/v1/display/ma
func (h *Handler) GetMAVisibility(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.MAVisibility())
}

// PutMAVisibility handles PUT /api/v1/display/ma. Omitted fields keep their value.
func (h *Handler) PutMAVisibility(c *gin.Context) {
	v := h.session.MAVisibility()
	if !bind(c, &v) {
		return
	}
	h.session.SetMAVisibility(v)
	c.JSON(http.StatusOK, v)
}

func (h *Handler) playback() PlaybackResponse {
	snap := h.session.Snapshot()
	return PlaybackResponse{
		State:      snap.State,
		Cursor:     snap.Cursor,
		Generation: snap.Generation,
		SpeedMS:    snap.SpeedMS,
		WindowSize: snap.WindowSize,
	}
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

func badRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}

func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

// classify maps domain errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPositionOpen):
		return http.StatusConflict, "POSITION_OPEN"
	case errors.Is(err, domain.ErrNoPosition):
		return http.StatusConflict, "NO_POSITION"
	case errors.Is(err, domain.ErrBasisMismatch):
		return http.StatusConflict, "BASIS_MISMATCH"
	case errors.Is(err, domain.ErrNotManual):
		return http.StatusConflict, "NOT_MANUAL"
	case errors.Is(err, domain.ErrNoData):
		return http.StatusConflict, "NO_DATA"
	case errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest, "INVALID_CONFIG"
	case errors.Is(err, domain.ErrUnknownInstrument):
		return http.StatusNotFound, "UNKNOWN_INSTRUMENT"
	case errors.Is(err, domain.ErrEmptyImport):
		return http.StatusUnprocessableEntity, "EMPTY_IMPORT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
