package ml

import (
	"exohab/catalog"
)

// Features is the model input: radius, equilibrium temperature, insolation flux
// and stellar effective temperature, in that order.
type Features struct {
	Radius      float64 `json:"radius"`
	EqTemp      float64 `json:"temp"`
	Insolation  float64 `json:"flux"`
	StellarTemp float64 `json:"star_temp"`
}

// Field names accepted by the predictor.
const (
	FieldRadius   = "radius"
	FieldTemp     = "temp"
	FieldFlux     = "flux"
	FieldStarTemp = "star_temp"
)

// FieldNames returns the predictor input fields in vector order.
func FieldNames() []string {
	return []string{FieldRadius, FieldTemp, FieldFlux, FieldStarTemp}
}

// FeatureNames returns the dataset columns backing each vector slot.
func FeatureNames() []string {
	return []string{
		catalog.ColRadius,
		catalog.ColEqTemp,
		catalog.ColInsolation,
		catalog.ColStellarTemp,
	}
}

// Vector returns the features as a model input vector.
func (f Features) Vector() []float64 {
	return []float64{f.Radius, f.EqTemp, f.Insolation, f.StellarTemp}
}

// FeaturesFromRecord extracts the modeling columns; ok is false when any is missing.
func FeaturesFromRecord(r catalog.Record) (Features, bool) {
	if r.Radius == nil || r.EqTemp == nil || r.Insolation == nil || r.StellarTemp == nil {
		return Features{}, false
	}
	return Features{
		Radius:      *r.Radius,
		EqTemp:      *r.EqTemp,
		Insolation:  *r.Insolation,
		StellarTemp: *r.StellarTemp,
	}, true
}
