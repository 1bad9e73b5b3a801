package record

import "testing"

func TestGetRow_ZeroedAndSized(t *testing.T) {
	r := GetRow(3)
	if len(r.V) != 3 || r.Line != 0 {
		t.Fatalf("fresh row: %+v", r)
	}
	for i, v := range r.V {
		if v != nil {
			t.Fatalf("V[%d] = %v, want nil", i, v)
		}
	}

	// Reused rows must come back zeroed regardless of previous contents.
	r.V[0] = "stale"
	r.Line = 42
	r.Free()

	r2 := GetRow(2)
	if len(r2.V) != 2 || r2.Line != 0 {
		t.Fatalf("reused row: %+v", r2)
	}
	for i, v := range r2.V {
		if v != nil {
			t.Fatalf("reused V[%d] = %v, want nil", i, v)
		}
	}
	r2.Free()
}

func TestGetRow_GrowsCapacity(t *testing.T) {
	r := GetRow(1)
	r.Free()
	r2 := GetRow(8)
	if len(r2.V) != 8 {
		t.Fatalf("len = %d, want 8", len(r2.V))
	}
	r2.Free()
}

func TestRowString(t *testing.T) {
	r := &Row{V: []any{"x", nil, "", []byte("b"), []byte{}, 7}}

	tests := []struct {
		i      int
		want   string
		wantOK bool
	}{
		{0, "x", true},
		{1, "", false},
		{2, "", false},
		{3, "b", true},
		{4, "", false},
		{5, "", false}, // non-string value is absent
		{-1, "", false},
		{6, "", false},
	}
	for _, tc := range tests {
		got, ok := r.String(tc.i)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("String(%d) = %q, %v; want %q, %v", tc.i, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestHasEdgeSpace(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"x", false},
		{" x", true},
		{"x ", true},
		{"\tx", true},
		{"x\t", true},
		{"a b", false},
	}
	for _, tc := range tests {
		if got := HasEdgeSpace(tc.in); got != tc.want {
			t.Fatalf("HasEdgeSpace(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
