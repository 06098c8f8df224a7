package grid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeSquareInference(t *testing.T) {
	g, err := Normalize([]float64{1, 2, 3, 4}, nil, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if g.Rows != 2 || g.Cols != 2 {
		t.Errorf("expected 2x2 grid, got %dx%d", g.Rows, g.Cols)
	}
	if diff := cmp.Diff([]float64{0, 1}, g.X); diff != "" {
		t.Errorf("x axis mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 1}, g.Y); diff != "" {
		t.Errorf("y axis mismatch (-want +got):\n%s", diff)
	}
	if g.At(1, 0) != 3 {
		t.Errorf("At(1,0) = %v, want 3", g.At(1, 0))
	}
}

func TestNormalizeSquareInferenceLarger(t *testing.T) {
	pdf := make([]float64, 9)
	for i := range pdf {
		pdf[i] = float64(i)
	}

	g, err := Normalize(pdf, nil, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if g.Rows != 3 || g.Cols != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", g.Rows, g.Cols)
	}
	if diff := cmp.Diff([]float64{0, 0.5, 1}, g.X); diff != "" {
		t.Errorf("x axis mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeNonSquare(t *testing.T) {
	_, err := Normalize([]float64{1, 2, 3, 4, 5}, nil, nil)
	if !errors.Is(err, ErrNonSquare) {
		t.Fatalf("expected ErrNonSquare, got %v", err)
	}
}

func TestNormalizeAxisPairing(t *testing.T) {
	pdf := []float64{1, 2, 3, 4}

	t.Run("only x", func(t *testing.T) {
		if _, err := Normalize(pdf, []float64{0, 1}, nil); !errors.Is(err, ErrAxisPairing) {
			t.Fatalf("expected ErrAxisPairing, got %v", err)
		}
	})
	t.Run("only y", func(t *testing.T) {
		if _, err := Normalize(pdf, nil, []float64{0, 1}); !errors.Is(err, ErrAxisPairing) {
			t.Fatalf("expected ErrAxisPairing, got %v", err)
		}
	})
}

func TestNormalizeWithAxes(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{0, 1}

	g, err := Normalize([]float64{1, 2, 3, 4, 5, 6}, x, y)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if g.Rows != 3 || g.Cols != 2 {
		t.Fatalf("expected 3x2 grid, got %dx%d", g.Rows, g.Cols)
	}
	if g.At(2, 1) != 6 {
		t.Errorf("At(2,1) = %v, want 6", g.At(2, 1))
	}
}

func TestNormalizeShapeMismatch(t *testing.T) {
	_, err := Normalize([]float64{1, 2, 3, 4, 5}, []float64{0, 1, 2}, []float64{0, 1})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestNormalizeIndexesOverride(t *testing.T) {
	pdf := []float64{1, 2, 3, 4, 5, 6}
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1}

	direct, err := Normalize(pdf, xs, ys)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// indexes override any separately passed axes
	viaIndexes, err := NormalizeIndexes(pdf, []float64{9, 9}, []float64{8, 8, 8}, [][]float64{xs, ys})
	if err != nil {
		t.Fatalf("NormalizeIndexes failed: %v", err)
	}

	if diff := cmp.Diff(direct, viaIndexes); diff != "" {
		t.Errorf("indexes form differs from direct form (-direct +indexes):\n%s", diff)
	}
}

func TestNormalizeIndexesPartial(t *testing.T) {
	// A single-entry indexes list overrides x only; y stays unset.
	_, err := NormalizeIndexes([]float64{1, 2, 3, 4}, nil, nil, [][]float64{{0, 1}})
	if !errors.Is(err, ErrAxisPairing) {
		t.Fatalf("expected ErrAxisPairing, got %v", err)
	}
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	pdf := []float64{1, 2, 3, 4}
	g, err := Normalize(pdf, nil, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	g.Data[0] = 99
	if pdf[0] != 1 {
		t.Errorf("caller slice mutated: pdf[0] = %v", pdf[0])
	}
}

func TestFromRows(t *testing.T) {
	g, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if g.Rows != 2 || g.Cols != 3 {
		t.Fatalf("expected 2x3 grid, got %dx%d", g.Rows, g.Cols)
	}
	if len(g.X) != 2 || len(g.Y) != 3 {
		t.Fatalf("axis lengths %d, %d; want 2, 3", len(g.X), len(g.Y))
	}
	if g.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", g.At(1, 2))
	}
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	if !errors.Is(err, ErrRagged) {
		t.Fatalf("expected ErrRagged, got %v", err)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if _, err := Normalize(nil, nil, nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := FromRows(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestMinMaxAndSorted(t *testing.T) {
	g, err := Normalize([]float64{4, 1, 3, 2}, nil, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	min, max := g.MinMax()
	if min != 1 || max != 4 {
		t.Errorf("MinMax = %v, %v; want 1, 4", min, max)
	}

	if diff := cmp.Diff([]float64{1, 2, 3, 4}, g.Sorted()); diff != "" {
		t.Errorf("Sorted mismatch (-want +got):\n%s", diff)
	}
	// Sorted must not disturb the grid itself.
	if g.Data[0] != 4 {
		t.Errorf("Sorted mutated grid data: %v", g.Data)
	}
}

func TestLinspace(t *testing.T) {
	cases := []struct {
		name string
		a, b float64
		n    int
		want []float64
	}{
		{"unit two", 0, 1, 2, []float64{0, 1}},
		{"unit five", 0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"single", 3, 7, 1, []float64{3}},
		{"none", 0, 1, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Linspace(tc.a, tc.b, tc.n)); diff != "" {
				t.Errorf("Linspace mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
