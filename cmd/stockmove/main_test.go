package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forfunphy/stockmove/internal/domain"
)

func TestReplayConfig_Overrides(t *testing.T) {
	t.Cleanup(func() { replayStrategy, replayStart = "", "" })

	replayStrategy = "WEEKDAY_STRATEGY"
	replayStart = "2019-07"
	bt, err := replayConfig(domain.DefaultBacktestConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyWeekday, bt.Strategy)
	assert.Equal(t, 2019, bt.StartYear)
	assert.Equal(t, time.July, bt.StartMonth)

	replayStart = "July 2019"
	_, err = replayConfig(domain.DefaultBacktestConfig())
	assert.Error(t, err)
}

func TestImportThenReplay(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"date,code,name,open,high,low,close,volume\n"+
			"2024-01-01,2330,TSMC,99,101,98,100,10\n"+
			"2024-01-02,2330,TSMC,100,102,99,101,10\n"+
			"2024-01-03,2330,TSMC,101,103,100,102,10\n"+
			"2024-01-04,2330,TSMC,102,104,101,103,10\n",
	), 0o600))
	outPath := filepath.Join(dir, "trades.csv")
	t.Setenv("STOCKMOVE_DSN", filepath.Join(dir, "stockmove.db"))
	t.Setenv("STOCKMOVE_DATA", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil); replayOut = "" })

	rootCmd.SetArgs([]string{"import", csvPath})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Imported 4 bars for 1 instruments")

	out.Reset()
	rootCmd.SetArgs([]string{"replay", "--out", outPath})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "end of data")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")), "header plus one closed trade")
}
