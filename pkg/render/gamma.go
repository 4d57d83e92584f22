package render

import "math"

// GammaVals are the preset correction factors cycled by the gamma
// toggle. Index 0 is the identity and skips the lookup entirely.
var GammaVals = []float64{1.0, 0.125, 0.25, 0.5, 0.75, 1.25, 1.5, 1.75, 2.0, 4.0}

// NumGammaVals is the number of gamma presets.
var NumGammaVals = len(GammaVals)

// gammaTables[g][v] = round((v/255)^(1/GammaVals[g]) * 255), built once
// at load time. Pure data; per-frame work is a single table lookup.
var gammaTables = buildGammaTables()

func buildGammaTables() [][256]uint8 {
	tables := make([][256]uint8, len(GammaVals))
	for g, gamma := range GammaVals {
		for i := 0; i < 256; i++ {
			v := math.Round(math.Pow(float64(i)/255, 1/gamma) * 255)
			tables[g][i] = uint8(v)
		}
	}
	return tables
}

// GammaLabel returns the display label for a gamma preset.
func GammaLabel(index int) string {
	labels := [...]string{"1.00", "0.13", "0.25", "0.50", "0.75", "1.25", "1.50", "1.75", "2.00", "4.00"}
	return labels[index%len(labels)]
}
