package ports

import (
	"context"
	"time"

	"github.com/forfunphy/stockmove/internal/domain"
)

// SeriesStore persiste el catálogo de barras normalizado para que un reinicio
// no necesite los CSV originales.
type SeriesStore interface {
	// SaveCatalog reemplaza todas las barras guardadas por las del catálogo.
	SaveCatalog(ctx context.Context, cat domain.Catalog) error

	// LoadCatalog devuelve el catálogo guardado, vacío si no hay nada.
	LoadCatalog(ctx context.Context) (domain.Catalog, error)

	// Close cierra la base de datos limpiamente.
	Close() error
}

// RunInfo describe una corrida registrada en el diario.
type RunInfo struct {
	ID         string
	Code       string
	Config     domain.BacktestConfig
	StartedAt  time.Time
	TradeCount int
	Profit     float64
}

// TradeJournal es un registro append-only de los trades cerrados por corrida.
// Nunca devuelve estado de simulación al engine.
type TradeJournal interface {
	StartRun(ctx context.Context, runID, code string, cfg domain.BacktestConfig) error
	RecordTrade(ctx context.Context, runID string, t domain.Trade) error
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	RunTrades(ctx context.Context, runID string) ([]domain.Trade, error)
}
