package detector

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// firstDifferences returns v[i+1]-v[i].
func firstDifferences(v []float64) []float64 {
	if len(v) < 2 {
		return nil
	}
	out := make([]float64, len(v)-1)
	floats.SubTo(out, v[1:], v[:len(v)-1])
	return out
}

// meanStdDev is the population mean and standard deviation.
func meanStdDev(v []float64) (mean, sd float64) {
	if len(v) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(v, nil)
}

// flagOutliers marks indexes where |v-mean| > k*sd and accept allows it. After a
// flag the next debounce points are skipped. A flat series has no outliers.
func flagOutliers(v []float64, k float64, debounce int, accept func(float64) bool) []int {
	mean, sd := meanStdDev(v)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	var out []int
	for i := 0; i < len(v); i++ {
		if math.Abs(v[i]-mean) <= k*sd {
			continue
		}
		if accept != nil && !accept(v[i]) {
			continue
		}
		out = append(out, i)
		i += debounce
	}
	return out
}
