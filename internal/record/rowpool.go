// Package record defines the pooled Row type shared by the parser and the
// cleansing pipelines. Pooling keeps heap churn low when streaming large raw
// extracts.
package record

import "sync"

// Row is a pooled container holding a positional raw row.
//
// Ownership contract:
//   - Exactly one goroutine "owns" a Row at a time.
//   - A Row may be passed downstream via channels (ownership transfer).
//   - The final consumer must call Free() AFTER it is fully done with the Row
//     (and anything referencing r.V).
//
// During ctx cancellation, drain-safe stages may still be running while the
// parser is also unwinding. If canceled rows are returned to the pool they can
// be reused immediately and written concurrently with downstream reads.
// Therefore:
//   - Use Free() only on the normal path.
//   - Use Drop() on cancellation paths (no re-pooling; allow GC to reclaim).
type Row struct {
	V    []any
	Line int // 1-based logical record number, if known
}

var rowPool sync.Pool

// GetRow returns a pooled Row with capacity for colCount fields and length set
// to colCount. All elements are zeroed for safety.
func GetRow(colCount int) *Row {
	if v := rowPool.Get(); v != nil {
		r := v.(*Row)
		if cap(r.V) < colCount {
			r.V = make([]any, colCount)
		}
		r.V = r.V[:colCount]
		for i := range r.V {
			r.V[i] = nil
		}
		r.Line = 0
		return r
	}
	return &Row{
		V:    make([]any, colCount),
		Line: 0,
	}
}

// Free returns the Row to the pool.
// Call this ONLY when you're sure no other goroutine can observe r or r.V.
func (r *Row) Free() {
	rowPool.Put(r)
}

// Drop discards the Row WITHOUT returning it to the pool.
//
// Use this on ctx-cancellation paths to prevent "canceled drain" from racing
// with upstream reuse of the same pooled Row.
func (r *Row) Drop() {
	r.V = nil
	r.Line = 0
}

// String returns the string value at index i, or "" when the field is absent.
// The second return reports presence: nil and empty values are absent.
func (r *Row) String(i int) (string, bool) {
	if i < 0 || i >= len(r.V) || r.V[i] == nil {
		return "", false
	}
	switch t := r.V[i].(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case []byte:
		if len(t) == 0 {
			return "", false
		}
		return string(t), true
	default:
		return "", false
	}
}

// HasEdgeSpace reports whether s starts or ends with space or tab. It exists
// so hot paths can skip strings.TrimSpace when nothing needs trimming.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ' ' || s[len(s)-1] == ' ' || s[0] == '\t' || s[len(s)-1] == '\t'
}
