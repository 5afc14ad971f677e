// Package catalog 提供系外行星数据的获取、解析与快照
package catalog

// Record 一颗天体的观测记录，数值字段为 nil 表示缺失
type Record struct {
	Name          string   `json:"name"`
	Radius        *float64 `json:"radius"`         // Earth radii
	EqTemp        *float64 `json:"eq_temp"`        // K
	Insolation    *float64 `json:"insolation"`     // Earth flux
	StellarTemp   *float64 `json:"stellar_temp"`   // K
	StellarRadius *float64 `json:"stellar_radius"` // solar radii
	Distance      *float64 `json:"distance"`       // pc
}

// Column names used by the NASA Exoplanet Archive "ps" table.
const (
	ColName          = "pl_name"
	ColRadius        = "pl_rade"
	ColEqTemp        = "pl_eqt"
	ColInsolation    = "pl_insol"
	ColStellarTemp   = "st_teff"
	ColStellarRadius = "st_rad"
	ColDistance      = "sy_dist"
)

// Columns returns the dataset columns in file order.
func Columns() []string {
	return []string{
		ColName,
		ColRadius,
		ColEqTemp,
		ColInsolation,
		ColStellarTemp,
		ColStellarRadius,
		ColDistance,
	}
}

// Value returns the numeric attribute stored under column, or nil when it is missing.
func (r Record) Value(column string) *float64 {
	switch column {
	case ColRadius:
		return r.Radius
	case ColEqTemp:
		return r.EqTemp
	case ColInsolation:
		return r.Insolation
	case ColStellarTemp:
		return r.StellarTemp
	case ColStellarRadius:
		return r.StellarRadius
	case ColDistance:
		return r.Distance
	}
	return nil
}

func (r *Record) set(column string, v *float64) {
	switch column {
	case ColRadius:
		r.Radius = v
	case ColEqTemp:
		r.EqTemp = v
	case ColInsolation:
		r.Insolation = v
	case ColStellarTemp:
		r.StellarTemp = v
	case ColStellarRadius:
		r.StellarRadius = v
	case ColDistance:
		r.Distance = v
	}
}

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 {
	return &v
}
