package kernel

import "math"

// weightTable holds the precomputed weight for every nice value in
// [0, 30], so WeightOf never touches floating point at runtime.
//
// weight(nice) = floor(1024 / 1.25^nice): a 25%-per-step geometric ladder
// with nice=0 (weight 1024) as the baseline a default task is measured
// against.
var weightTable [31]uint64

func init() {
	for nice := 0; nice <= 30; nice++ {
		w := 1024.0 / math.Pow(1.25, float64(nice))
		weightTable[nice] = uint64(w)
	}
}

// WeightOf maps a niceness value to its scheduling weight. nice is
// clamped into [0, 30] before lookup, so the result is always one of the
// 31 precomputed entries and is always strictly positive.
func WeightOf(nice int) uint64 {
	return weightTable[clampNice(nice)]
}
