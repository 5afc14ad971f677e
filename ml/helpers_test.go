package ml

import (
	"math/rand"
)

// syntheticFeatures draws half the rows inside the habitable bands and half
// across a wide range, so both classes are well represented.
func syntheticFeatures(n int, seed int64) []Features {
	rnd := rand.New(rand.NewSource(seed))
	uniform := func(lo, hi float64) float64 {
		return lo + rnd.Float64()*(hi-lo)
	}
	features := make([]Features, n)
	for i := range features {
		if i%2 == 0 {
			features[i] = Features{
				Radius:      uniform(MinRadius, MaxRadius),
				EqTemp:      uniform(MinEqTemp, MaxEqTemp),
				Insolation:  uniform(MinInsolation, MaxInsolation),
				StellarTemp: uniform(2500, 7000),
			}
			continue
		}
		features[i] = Features{
			Radius:      uniform(0.2, 15),
			EqTemp:      uniform(50, 2000),
			Insolation:  uniform(0.01, 50),
			StellarTemp: uniform(2500, 7000),
		}
	}
	return features
}

func syntheticDataset(n int, seed int64) *Dataset {
	ds := &Dataset{}
	for _, f := range syntheticFeatures(n, seed) {
		ds.Samples = append(ds.Samples, Sample{Features: f, Label: Label(f)})
	}
	return ds
}
