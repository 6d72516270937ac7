package detector

import (
	"math"
	"testing"
)

func TestMeanStdDev_Population(t *testing.T) {
	mean, sd := meanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || math.Abs(sd-2) > 1e-12 {
		t.Fatalf("got=(%v,%v) want=(5,2)", mean, sd)
	}
	if m, s := meanStdDev(nil); m != 0 || s != 0 {
		t.Fatalf("empty got=(%v,%v)", m, s)
	}
}

func TestFirstDifferences(t *testing.T) {
	got := firstDifferences([]float64{1, 4, 9, 16})
	want := []float64{3, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v want=%v", got, want)
		}
	}
	if firstDifferences([]float64{1}) != nil {
		t.Fatalf("single point should yield nil")
	}
}

func TestFlagOutliers_FlatSeries(t *testing.T) {
	if got := flagOutliers([]float64{1, 1, 1, 1}, 2, 5, nil); got != nil {
		t.Fatalf("got=%v want=nil", got)
	}
}
