package render

import "math"

// The Turbo colormap, built once at load time from the published
// fifth-order polynomial fit. Rows are indexed by 8-bit intensity;
// columns are R, G, B.
var turbo = buildTurbo()

const (
	chRed = iota
	chGreen
	chBlue
)

func turboPoly(x float64, c [6]float64) uint8 {
	v := c[0] + x*(c[1]+x*(c[2]+x*(c[3]+x*(c[4]+x*c[5]))))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(math.Round(v * 255))
}

func buildTurbo() [256][3]uint8 {
	r := [6]float64{0.13572138, 4.61539260, -42.66032258, 132.13108234, -152.94239396, 59.28637943}
	g := [6]float64{0.09140261, 2.19418839, 4.84296658, -14.18503333, 4.27729857, 2.82956604}
	b := [6]float64{0.10667330, 12.64194608, -60.58204836, 110.36276771, -89.90310912, 27.34824973}

	var t [256][3]uint8
	for i := 0; i < 256; i++ {
		x := float64(i) / 255
		t[i][chRed] = turboPoly(x, r)
		t[i][chGreen] = turboPoly(x, g)
		t[i][chBlue] = turboPoly(x, b)
	}
	return t
}
