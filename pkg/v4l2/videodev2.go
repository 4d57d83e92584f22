//go:build linux && (amd64 || arm64)

package v4l2

// ioctl numbers and struct layouts from <linux/videodev2.h> for 64-bit
// targets. The sizes encoded in the ioctl numbers depend on the struct
// layouts below, so the two must change together.

const (
	vidiocQueryCap           = 0x80685600
	vidiocEnumFmt            = 0xc0405602
	vidiocSetFmt             = 0xc0d05605
	vidiocReqBufs            = 0xc0145608
	vidiocQueryBuf           = 0xc0585609
	vidiocQBuf               = 0xc058560f
	vidiocDQBuf              = 0xc0585611
	vidiocStreamOn           = 0x40045612
	vidiocStreamOff          = 0x40045613
	vidiocSetParm            = 0xc0cc5616
	vidiocEnumFrameSizes     = 0xc02c564a
	vidiocEnumFrameIntervals = 0xc034564b
)

const (
	bufTypeVideoCapture = 1
	memoryMMAP          = 1

	capVideoCapture = 0x00000001
	capStreaming    = 0x04000000

	frmTypeDiscrete   = 1
	frmTypeContinuous = 2
	frmTypeStepwise   = 3
)

type capability struct { // size 104
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

type pixFormat struct { // size 48
	width        uint32
	height       uint32
	pixelFormat  uint32
	field        uint32
	bytesPerLine uint32
	sizeImage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcrEnc     uint32
	quantization uint32
	xferFunc     uint32
}

type format struct { // size 208
	typ uint32
	_   uint32 // union holds pointers, aligned to 8
	pix pixFormat
	_   [200 - 48]byte // rest of the union
}

type fract struct { // size 8
	numerator   uint32
	denominator uint32
}

type captureParm struct { // size 40
	capability   uint32
	captureMode  uint32
	timePerFrame fract
	extendedMode uint32
	readBuffers  uint32
	reserved     [4]uint32
}

type streamParm struct { // size 204
	typ     uint32
	capture captureParm
	_       [160]byte // rest of the union
}

type requestBuffers struct { // size 20
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	reserved     [4]byte
}

type timeval struct { // size 16
	sec  int64
	usec int64
}

type timecode struct { // size 16
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

type kernelBuffer struct { // size 88
	index     uint32
	typ       uint32
	bytesUsed uint32
	flags     uint32
	field     uint32
	_         uint32 // timestamp aligned to 8
	timestamp timeval
	timecode  timecode
	sequence  uint32
	memory    uint32
	offset    uint32 // union m: MMAP offset
	_         uint32 // upper half of union m
	length    uint32
	reserved2 uint32
	requestFD uint32
}

type fmtDesc struct { // size 64
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelFormat uint32
	mbusCode    uint32
	reserved    [3]uint32
}

// frmSizeEnum's union is kept as six words: discrete advertisements
// use m[0]=width m[1]=height, stepwise ones use
// m[0]=minWidth m[1]=maxWidth m[2]=stepWidth m[3..5] likewise for height.
type frmSizeEnum struct { // size 44
	index       uint32
	pixelFormat uint32
	typ         uint32
	m           [6]uint32
	reserved    [2]uint32
}

type frmIvalEnum struct { // size 52
	index       uint32
	pixelFormat uint32
	width       uint32
	height      uint32
	typ         uint32
	discrete    fract    // head of the union
	_           [16]byte // rest of the stepwise union
	reserved    [2]uint32
}
