// Package csvtable turns daily price tables exported as CSV into raw records
// for the normalizer. Column order is fixed:
//
//	date, code, name, open, high, low, close[, volume]
//
// The first row is a header and is always skipped.
package csvtable

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/forfunphy/stockmove/internal/domain"
)

const minFields = 7

// Result is what a table produced: parsed records and the rows it refused.
type Result struct {
	Records []domain.RawRecord
	Skipped []domain.SkippedRow
}

// Read parses one CSV table. Only I/O failures are returned as errors;
// malformed rows are reported in Result.Skipped.
func Read(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var res Result
	header := true
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				header = false
				res.Skipped = append(res.Skipped, domain.SkippedRow{Line: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return res, fmt.Errorf("csvtable.Read: %w", err)
		}
		// physical line where the record starts
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}
		if blank(fields) {
			continue
		}

		rec, reason := parseRow(fields)
		if reason != "" {
			code := ""
			if len(fields) > 1 {
				code = strings.TrimSpace(fields[1])
			}
			res.Skipped = append(res.Skipped, domain.SkippedRow{Line: line, Code: code, Reason: reason})
			continue
		}
		rec.Line = line
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(fields []string) (domain.RawRecord, string) {
	if len(fields) < minFields {
		return domain.RawRecord{}, fmt.Sprintf("expected at least %d fields, got %d", minFields, len(fields))
	}
	rec := domain.RawRecord{
		Date: clean(fields[0]),
		Code: clean(fields[1]),
		Name: clean(fields[2]),
	}
	if rec.Code == "" {
		return rec, "empty code"
	}

	prices := []*float64{&rec.Open, &rec.High, &rec.Low, &rec.Close}
	names := []string{"open", "high", "low", "close"}
	for i, dst := range prices {
		v, err := ParseNumber(fields[3+i])
		if err != nil {
			return rec, fmt.Sprintf("%s: %v", names[i], err)
		}
		*dst = v
	}

	if len(fields) > minFields {
		if v, err := ParseNumber(fields[7]); err == nil {
			rec.Volume = v
		}
	}
	return rec, ""
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// ParseNumber strips quotes and thousands separators, then parses the value
// as a decimal so "1,234.50" and "1234.5" read the same.
func ParseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(clean(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return d.InexactFloat64(), nil
}

// ReadFile parses the table at path.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("csvtable.ReadFile: %w", err)
	}
	defer f.Close()

	res, err := Read(f)
	if err != nil {
		return res, fmt.Errorf("csvtable.ReadFile: %s: %w", path, err)
	}
	return res, nil
}

// LoadFiles reads every path concurrently and concatenates the records in
// argument order. The first I/O error cancels the rest.
func LoadFiles(ctx context.Context, paths []string) (Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ReadFile(p)
			if err != nil {
				return err
			}
			slog.Debug("csvtable: file read", "path", p, "records", len(res.Records), "skipped", len(res.Skipped))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("csvtable.LoadFiles: %w", err)
	}

	var out Result
	for _, r := range results {
		out.Records = append(out.Records, r.Records...)
		out.Skipped = append(out.Skipped, r.Skipped...)
	}
	return out, nil
}
