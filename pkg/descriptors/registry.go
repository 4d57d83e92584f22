package descriptors

// FourCC packs a four character code the way V4L2 does.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

var (
	// PixFmtYUYV is the packed YUV 4:2:2 format the TC001 family
	// pretends to produce.
	PixFmtYUYV = FourCC('Y', 'U', 'Y', 'V')

	// PixFmtY16 is 16-bit little-endian grayscale, the real sensor
	// payload and the raw recording format.
	PixFmtY16 = FourCC('Y', '1', '6', ' ')

	// PixFmtBGRA32 is the rendered output format (B, G, R, alpha
	// byte order in memory).
	PixFmtBGRA32 = FourCC('A', 'R', '2', '4')
)

func name64(s string) (n [64]byte) {
	copy(n[:], s)
	return n
}

// The TC001 family is a plain uvcvideo camera that claims to produce
// 256x384 YUYV video. What it actually delivers is two views of the
// same 256x192 sensor readout concatenated: first a dynamically scaled
// 8-bit grayscale bitmap padded with 0x80 filler bytes, then the
// unscaled 16-bit little-endian raw temperature bitmap. Only the
// second view carries information, so FrameSize and SkipSize are both
// one 16-bit image and the 8-bit decoy is discarded.
var registry = []CameraDescriptor{
	{
		Width:         256,
		Height:        192,
		FPS:           25,
		FrameSize:     256 * 192 * 2,
		SkipSize:      256 * 192 * 2,
		ColorSize:     256 * 192 * 4,
		CaptureWidth:  256,
		CaptureHeight: 384,
		CapturePixFmt: PixFmtYUYV,
		RecordPixFmt:  PixFmtY16,
		Name:          name64("TOPDON TC001 or compatible"),
	},
}

// All returns every descriptor this build knows about.
func All() []CameraDescriptor {
	out := make([]CameraDescriptor, len(registry))
	copy(out, registry)
	return out
}

// Default returns an arbitrary supported descriptor, for callers that
// have to assume a sensor contract before any device is opened
// (playback, or a remote consumer before the handshake arrives).
func Default() CameraDescriptor {
	return registry[0]
}
