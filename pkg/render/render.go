// Package render turns one raw 16-bit thermal frame into a displayable
// BGRA buffer. A Pipeline pass makes no heap allocations: the caller
// supplies (and reuses) the destination buffer, and the per-frame
// division is replaced by one multiplicative inverse shared by every
// pixel.
package render

// A Point is a pixel coordinate in the logical frame.
type Point struct {
	X, Y int
}

// A Pipeline holds the display settings applied to every frame. The
// zero value renders grayscale, unrotated, gamma off, auto range.
type Pipeline struct {
	Width  int
	Height int

	Colormap   bool // Turbo colormap instead of grayscale
	GammaIndex int  // index into GammaVals; 0 disables the lookup
	Invert     bool
	Rotate     bool // rotate output 180 degrees
	Contours   int  // intensity repeat count; <=1 disables

	// Manual dynamic range. When either bound is nonzero the scanned
	// extremes are ignored for normalization. Both zero means auto.
	ScaleMin uint16
	ScaleMax uint16

	Crosshair Point
}

// A Result reports what one pass observed: the raw extremes and where
// they occurred, the raw sample under the crosshair, and the bounds
// actually used for normalization (which differ from Min/Max when a
// manual range is pinned).
type Result struct {
	Min   uint16
	Max   uint16
	Point uint16

	MinAt Point
	MaxAt Point

	RangeMin uint16
	RangeMax uint16

	// Blank is set when the resolved range was degenerate
	// (min >= max) and the output was zeroed instead of normalized.
	Blank bool
}

func (p *Pipeline) pointAt(offset int) Point {
	if p.Rotate {
		return Point{
			X: p.Width - (offset / 2 % p.Width),
			Y: p.Height - (offset / 2 / p.Width),
		}
	}
	return Point{X: offset / 2 % p.Width, Y: offset / 2 / p.Width}
}

func (p *Pipeline) shade(channel int, v uint8) uint8 {
	if p.Contours > 1 {
		v = uint8(uint16(v) * uint16(p.Contours) & 0xFF)
	}
	if p.GammaIndex != 0 {
		v = gammaTables[p.GammaIndex][v]
	}
	if p.Invert {
		v = ^v
	}
	if p.Colormap {
		return turbo[v][channel]
	}
	return v
}

// Process scans raw (little-endian 16-bit samples, Width*Height of
// them) and fills dst with Width*Height*4 bytes of BGRA. raw must hold
// at least Width*Height*2 bytes and dst at least Width*Height*4.
func (p *Pipeline) Process(raw []byte, dst []byte) Result {
	n := p.Width * p.Height * 2
	var res Result
	res.Min = 0xFFFF

	// Crosshair sample first; mirror to the geometric opposite pixel
	// when the output is rotated.
	ci := p.Crosshair.Y*p.Width*2 + p.Crosshair.X*2
	if p.Rotate {
		ci = n - ci - 2
	}
	res.Point = uint16(raw[ci]) | uint16(raw[ci+1])<<8

	for i := 0; i < n; i += 2 {
		v := uint16(raw[i]) | uint16(raw[i+1])<<8
		if v > res.Max {
			res.Max = v
			res.MaxAt = p.pointAt(i)
		}
		if v < res.Min {
			res.Min = v
			res.MinAt = p.pointAt(i)
		}
	}

	min, max := uint32(res.Min), uint32(res.Max)
	if p.ScaleMax != 0 || p.ScaleMin != 0 {
		min, max = uint32(p.ScaleMin), uint32(p.ScaleMax)
	}
	res.RangeMin, res.RangeMax = uint16(min), uint16(max)

	if min >= max {
		clear(dst[:p.Width*p.Height*4])
		res.Blank = true
		return res
	}

	// We need (v - min) / (max - min) for every pixel. The
	// denominator is constant across the frame, so one division
	// yields a 24-bit fixed-point inverse and the per-pixel work is
	// a multiply and shift.
	multinv := uint32(1<<24) / (max - min)
	for i := 0; i < n; i += 2 {
		v := uint32(raw[i]) | uint32(raw[i+1])<<8

		var pval uint8
		switch {
		case v <= min:
			pval = 0
		case v >= max:
			pval = 255
		default:
			pval = uint8(multinv * (v - min) >> 16)
		}

		var oi int
		if p.Rotate {
			// Rotating by 180 is iterating the output
			// backwards while keeping BGRA byte order.
			oi = (p.Width*p.Height-i/2)*4 - 4
		} else {
			oi = i / 2 * 4
		}

		dst[oi] = p.shade(chBlue, pval)
		dst[oi+1] = p.shade(chGreen, pval)
		dst[oi+2] = p.shade(chRed, pval)
		dst[oi+3] = 255
	}

	return res
}

// MoveCrosshair shifts the crosshair by (dx, dy), wrapping at the
// frame edges.
func (p *Pipeline) MoveCrosshair(dx, dy int) {
	p.Crosshair.X = (p.Crosshair.X + dx + p.Width) % p.Width
	p.Crosshair.Y = (p.Crosshair.Y + dy + p.Height) % p.Height
}

// CycleContours advances the contour count through 1..8.
func (p *Pipeline) CycleContours() {
	if p.Contours >= 8 {
		p.Contours = 1
		return
	}
	p.Contours++
}

// CycleGamma advances to the next gamma preset.
func (p *Pipeline) CycleGamma() {
	p.GammaIndex = (p.GammaIndex + 1) % NumGammaVals
}

// PinScale pins the manual range to the given bounds (typically the
// previous frame's auto extremes).
func (p *Pipeline) PinScale(min, max uint16) {
	p.ScaleMin = min
	p.ScaleMax = max
}

// AutoScale clears the manual range.
func (p *Pipeline) AutoScale() {
	p.ScaleMin = 0
	p.ScaleMax = 0
}

// NudgeScaleMin adjusts the pinned minimum by delta raw counts,
// saturating instead of wrapping. No-op in auto mode.
func (p *Pipeline) NudgeScaleMin(delta int) {
	if p.ScaleMin == 0 && p.ScaleMax == 0 {
		return
	}
	v := int(p.ScaleMin) + delta
	if v < 0 || v > 0xFFFF {
		return
	}
	p.ScaleMin = uint16(v)
}

// NudgeScaleMax adjusts the pinned maximum by delta raw counts,
// saturating instead of wrapping. No-op in auto mode.
func (p *Pipeline) NudgeScaleMax(delta int) {
	if p.ScaleMin == 0 && p.ScaleMax == 0 {
		return
	}
	v := int(p.ScaleMax) + delta
	if v < 0 || v > 0xFFFF {
		return
	}
	p.ScaleMax = uint16(v)
}
