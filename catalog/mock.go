package catalog

// MockRecords returns the demo rows used when the archive cannot be reached.
func MockRecords() []Record {
	rows := []struct {
		name                                      string
		radius, eqt, insol, teff, stRad, distance float64
	}{
		{"Kepler-452 b", 1.63, 265, 1.1, 5757, 1.11, 561},
		{"Proxima Centauri b", 1.07, 234, 0.65, 3042, 0.14, 1.3},
		{"TRAPPIST-1 e", 0.92, 251, 0.66, 2566, 0.12, 12.1},
		{"Earth", 1.00, 255, 1.00, 5780, 1.00, 0},
		{"Mars (Mock)", 0.53, 210, 0.43, 5780, 1.00, 0},
		{"Jupiter (Mock)", 11.2, 110, 0.04, 5780, 1.00, 0},
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{
			Name:          row.name,
			Radius:        Float(row.radius),
			EqTemp:        Float(row.eqt),
			Insolation:    Float(row.insol),
			StellarTemp:   Float(row.teff),
			StellarRadius: Float(row.stRad),
			Distance:      Float(row.distance),
		}
	}
	return records
}
