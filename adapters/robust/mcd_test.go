package robust

import (
	"math"
	"math/rand"
	"testing"
)

// contaminatedSample draws n standard bivariate normal rows and appends k
// extreme rows far from the bulk.
func contaminatedSample(n, k int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, 0, n+k)
	for i := 0; i < n; i++ {
		rows = append(rows, []float64{rng.NormFloat64(), rng.NormFloat64()})
	}
	for i := 0; i < k; i++ {
		rows = append(rows, []float64{50 + rng.Float64(), 50 + rng.Float64()})
	}
	return rows
}

func TestMCD_CenterResistsContamination(t *testing.T) {
	rows := contaminatedSample(100, 10, 7)

	est, err := NewMCD(500, 7).Estimate(rows)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if len(est.Center) != 2 {
		t.Fatalf("center dimension: got %d, want 2", len(est.Center))
	}

	// The classical mean is dragged to roughly (4.5, 4.5) by the cluster at
	// (50, 50); the MCD center must stay near the bulk.
	for j, c := range est.Center {
		if math.Abs(c) > 1.0 {
			t.Fatalf("center[%d] = %.3f, want near 0 despite contamination", j, c)
		}
	}

	r, c := est.Scatter.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("scatter dims: got %dx%d, want 2x2", r, c)
	}
	if est.Scatter.At(0, 0) <= 0 || est.Scatter.At(1, 1) <= 0 {
		t.Fatalf("scatter diagonal must be positive: %v, %v", est.Scatter.At(0, 0), est.Scatter.At(1, 1))
	}
}

func TestMCD_Deterministic(t *testing.T) {
	rows := contaminatedSample(60, 5, 11)
	mcd := NewMCD(200, 11)

	first, err := mcd.Estimate(rows)
	if err != nil {
		t.Fatalf("first estimate: %v", err)
	}
	second, err := mcd.Estimate(rows)
	if err != nil {
		t.Fatalf("second estimate: %v", err)
	}

	for j := range first.Center {
		if first.Center[j] != second.Center[j] {
			t.Fatalf("center differs between identical calls: %v vs %v", first.Center, second.Center)
		}
	}
}

func TestMCD_TinySampleFallsBackToClassical(t *testing.T) {
	rows := [][]float64{{0, 0}, {1, 1.5}, {2, 0.5}, {3, 2}}
	est, err := NewMCD(100, 3).Estimate(rows)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if math.Abs(est.Center[0]-1.5) > 1e-9 {
		t.Fatalf("classical fallback center[0]: got %v, want 1.5", est.Center[0])
	}
}

func TestMCD_EmptySampleRejected(t *testing.T) {
	if _, err := NewMCD(100, 1).Estimate(nil); err == nil {
		t.Fatal("expected error for empty sample")
	}
}
