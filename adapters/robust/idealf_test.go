package robust

import (
	"math"
	"testing"
)

func TestIdealFourths_HandComputed(t *testing.T) {
	// n=8, depth = 8/4 + 5/12 = 2.41667, j=2, h=0.41667:
	// lower = 0.58333*2 + 0.41667*3 = 2.41667
	// upper = 0.58333*7 + 0.41667*6 = 6.58333
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	lower, upper := IdealFourths{}.Quartiles(values)

	if math.Abs(lower-2.41667) > 1e-4 {
		t.Fatalf("lower fourth: got %.5f, want 2.41667", lower)
	}
	if math.Abs(upper-6.58333) > 1e-4 {
		t.Fatalf("upper fourth: got %.5f, want 6.58333", upper)
	}
}

func TestIdealFourths_UnsortedInputUnmodified(t *testing.T) {
	values := []float64{8, 1, 5, 3, 7, 2, 6, 4}
	lower, upper := IdealFourths{}.Quartiles(values)

	if math.Abs(lower-2.41667) > 1e-4 || math.Abs(upper-6.58333) > 1e-4 {
		t.Fatalf("unsorted input: got (%.5f, %.5f)", lower, upper)
	}
	if values[0] != 8 || values[7] != 4 {
		t.Fatalf("input slice was modified: %v", values)
	}
}

func TestIdealFourths_TinySamples(t *testing.T) {
	lower, upper := IdealFourths{}.Quartiles([]float64{3, 1})
	if lower != 1 || upper != 3 {
		t.Fatalf("n=2: got (%v, %v), want (1, 3)", lower, upper)
	}

	lower, upper = IdealFourths{}.Quartiles(nil)
	if !math.IsNaN(lower) || !math.IsNaN(upper) {
		t.Fatalf("empty input: got (%v, %v), want NaNs", lower, upper)
	}
}
