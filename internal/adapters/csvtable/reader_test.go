package csvtable_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forfunphy/stockmove/internal/adapters/csvtable"
)

const sample = `日期,代號,名稱,開盤價,最高價,最低價,收盤價,成交量
2024-01-02,2330,台積電,590,593,589,593,"25,000,000"
"2024/01/03","2330","台積電","584","585","576","578","37,000,000"
2024-01-04,2330,台積電,580,581,"1,234.50",580
2024-01-05,2330,台積電,abc,1,1,1,1
2024-01-08,2330
`

func TestRead_ParsesQuotedFieldsAndSeparators(t *testing.T) {
	res, err := csvtable.Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	first := res.Records[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "2024-01-02", first.Date)
	assert.Equal(t, "2330", first.Code)
	assert.Equal(t, "台積電", first.Name)
	assert.Equal(t, 593.0, first.Close)
	assert.Equal(t, 25_000_000.0, first.Volume)

	second := res.Records[1]
	assert.Equal(t, "2024/01/03", second.Date)
	assert.Equal(t, 578.0, second.Close)
	assert.Equal(t, 37_000_000.0, second.Volume)

	third := res.Records[2]
	assert.InDelta(t, 1234.5, third.Low, 1e-9)
	assert.Equal(t, 0.0, third.Volume, "missing volume defaults to zero")
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	res, err := csvtable.Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, res.Skipped, 2)

	assert.Equal(t, 5, res.Skipped[0].Line)
	assert.Equal(t, "2330", res.Skipped[0].Code)
	assert.Contains(t, res.Skipped[0].Reason, "open")

	assert.Equal(t, 6, res.Skipped[1].Line)
	assert.Contains(t, res.Skipped[1].Reason, "fields")
}

func TestRead_LinesArePhysical(t *testing.T) {
	table := "date,code,name,open,high,low,close\n" +
		"\n" +
		"2024-01-02,2330,\"Taiwan\nSemi\",1,2,0.5,1.5\n" +
		"\n" +
		"\n" +
		"2024-01-03,2330,TSMC,x,2,0.5,1.5\n" +
		"2024-01-04,2330,TSMC,1,2,0.5,1.5\n"

	res, err := csvtable.Read(strings.NewReader(table))
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 3, res.Records[0].Line)
	assert.Equal(t, "Taiwan\nSemi", res.Records[0].Name)
	assert.Equal(t, 8, res.Records[1].Line)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 7, res.Skipped[0].Line)
}

func TestRead_HeaderOnly(t *testing.T) {
	res, err := csvtable.Read(strings.NewReader("date,code,name,open,high,low,close\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Skipped)
}

func TestRead_BadVolumeKeepsRow(t *testing.T) {
	res, err := csvtable.Read(strings.NewReader("h\n2024-01-02,X,X,1,2,0.5,1.5,n/a\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 0.0, res.Records[0].Volume)
}

func TestParseNumber(t *testing.T) {
	v, err := csvtable.ParseNumber(`"1,234,567.89"`)
	require.NoError(t, err)
	assert.InDelta(t, 1234567.89, v, 1e-6)

	_, err = csvtable.ParseNumber("")
	assert.Error(t, err)
	_, err = csvtable.ParseNumber("12x")
	assert.Error(t, err)
}

func TestLoadFiles_KeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("h\n2024-01-02,A,A,1,1,1,1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("h\n2024-01-02,B,B,2,2,2,2\n2024-01-03,B,B,3,3,3,3\n"), 0o644))

	res, err := csvtable.LoadFiles(context.Background(), []string{b, a})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "B", res.Records[0].Code)
	assert.Equal(t, "A", res.Records[2].Code)
}

func TestLoadFiles_MissingFile(t *testing.T) {
	_, err := csvtable.LoadFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}
