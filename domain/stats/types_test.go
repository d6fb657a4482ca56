package stats

import "testing"

func TestAllPairs_CanonicalOrder(t *testing.T) {
	got := AllPairs(4)
	want := []Pair{
		{0, 1}, {0, 2}, {0, 3},
		{1, 2}, {1, 3},
		{2, 3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pair %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWithDefaults_FillsUnsetOnly(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.Method != MethodECP || opts.Alpha != DefaultAlpha || opts.NBoot != DefaultNBoot {
		t.Fatalf("defaults not applied: %+v", opts)
	}

	custom := Options{Method: MethodHochberg, Alpha: 0.01, NBoot: 999}.WithDefaults()
	if custom.Method != MethodHochberg || custom.Alpha != 0.01 || custom.NBoot != 999 {
		t.Fatalf("explicit values overwritten: %+v", custom)
	}
}

func TestMatrix_ColumnAndName(t *testing.T) {
	m := &Matrix{
		Names: []string{"x"},
		Rows:  [][]float64{{1, 2}, {3, 4}},
	}
	col := m.Column(1)
	if col[0] != 2 || col[1] != 4 {
		t.Fatalf("column = %v, want [2 4]", col)
	}
	if m.Name(0) != "x" {
		t.Fatalf("name(0) = %q, want x", m.Name(0))
	}
	if m.Name(1) != "var_1" {
		t.Fatalf("name(1) = %q, want var_1", m.Name(1))
	}
}

func TestPair_String(t *testing.T) {
	if s := (Pair{A: 2, B: 5}).String(); s != "2:5" {
		t.Fatalf("got %q, want 2:5", s)
	}
}
