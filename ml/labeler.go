package ml

// Habitability bands. Both ends are inclusive.
const (
	MinRadius     = 0.5 // Earth radii, rocky planets
	MaxRadius     = 1.6
	MinEqTemp     = 200.0 // K, liquid water
	MaxEqTemp     = 320.0
	MinInsolation = 0.3 // Earth flux, conservative habitable zone
	MaxInsolation = 1.1
)

const (
	LabelUninhabitable = 0
	LabelHabitable     = 1
)

// IsHabitable reports whether all three values sit inside their bands.
func IsHabitable(radius, eqTemp, insolation float64) bool {
	return radius >= MinRadius && radius <= MaxRadius &&
		eqTemp >= MinEqTemp && eqTemp <= MaxEqTemp &&
		insolation >= MinInsolation && insolation <= MaxInsolation
}

// Label derives the ground-truth label. Stellar temperature does not take part.
func Label(f Features) int {
	if IsHabitable(f.Radius, f.EqTemp, f.Insolation) {
		return LabelHabitable
	}
	return LabelUninhabitable
}

// LabelAll labels each feature vector independently.
func LabelAll(features []Features) []int {
	labels := make([]int, len(features))
	for i, f := range features {
		labels[i] = Label(f)
	}
	return labels
}
