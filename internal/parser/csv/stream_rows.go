package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"fleximart/internal/record"
)

// Options controls CSV streaming behavior.
type Options struct {
	// HasHeader indicates the first record is a header row. When true, source
	// columns are matched to target columns by normalized header name.
	HasHeader bool

	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from every field.
	TrimSpace bool

	// HeaderMap renames raw headers to canonical column names before matching.
	HeaderMap map[string]string

	// LazyQuotes is passed through to encoding/csv.
	LazyQuotes bool
}

// DefaultOptions returns the options used for the raw retail extracts.
func DefaultOptions() Options {
	return Options{HasHeader: true, TrimSpace: true}
}

// StreamRows streams CSV into pooled *record.Row objects aligned to the target
// 'columns' order. Missing and empty fields become nil so downstream cleansers
// can apply a uniform missing-value policy.
//
// NOTE on cancellation:
// On ctx cancellation we must NOT return in-flight rows to the pool (Drop
// instead), otherwise the parser can reuse them immediately while downstream
// drain-safe stages still read them.
func StreamRows(
	ctx context.Context,
	src io.ReadCloser,
	columns []string,
	opt Options,
	out chan<- *record.Row,
	onErr func(line int, err error),
) error {
	defer src.Close()

	var line int

	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1

	colIx := make([]int, len(columns))
	for i := range colIx {
		colIx[i] = -1
	}

	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	if opt.HasHeader {
		hdr, err := readRec()
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("read header: %w", err))
			}
			return err
		}
		srcToIdx := make(map[string]int, len(hdr))
		for i, h := range hdr {
			if record.HasEdgeSpace(h) {
				h = strings.TrimSpace(h)
			}
			if i == 0 {
				h = strings.TrimPrefix(h, "\ufeff")
			}
			if mapped, ok := opt.HeaderMap[h]; ok {
				h = mapped
			} else {
				h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
			}
			srcToIdx[h] = i
		}
		for t, target := range columns {
			if si, ok := srcToIdx[target]; ok {
				colIx[t] = si
			}
		}
	} else {
		for i := range columns {
			colIx[i] = i
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		row := record.GetRow(len(columns))
		row.Line = line

		for t := range columns {
			si := colIx[t]
			if si < 0 || si >= len(rec) {
				row.V[t] = nil
				continue
			}
			v := rec[si]
			if opt.TrimSpace && record.HasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				row.V[t] = nil
			} else {
				row.V[t] = v
			}
		}

		select {
		case out <- row:
		case <-ctx.Done():
			// IMPORTANT: do not re-pool on cancellation
			row.Drop()
			return ctx.Err()
		}
	}
}

// CollectRows opens path and materializes the whole file into rows aligned to
// columns. The cleansing pipelines need the full collection anyway (dedup and
// median fills are whole-dataset operations), so this is the standard entry
// point for the retail extracts.
//
// The caller owns the returned rows and must Free() each one.
func CollectRows(ctx context.Context, path string, columns []string, opt Options) ([]*record.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	ch := make(chan *record.Row, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		errCh <- StreamRows(ctx, f, columns, opt, ch, nil)
	}()

	var rows []*record.Row
	for r := range ch {
		rows = append(rows, r)
	}
	if err := <-errCh; err != nil {
		for _, r := range rows {
			r.Drop()
		}
		return nil, err
	}
	return rows, nil
}
