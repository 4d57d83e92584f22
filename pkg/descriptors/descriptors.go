// Package descriptors holds the timing/geometry contracts for the
// infrared sensors this module knows how to drive, plus the fixed-size
// wire encoding used to ship a contract to a remote viewer.
package descriptors

import (
	"encoding/binary"
	"io"
)

// WireSize is the encoded size of a CameraDescriptor: ten 32-bit
// fields followed by a fixed 64-byte name.
const WireSize = 10*4 + 64

// A CameraDescriptor is the immutable contract for one supported
// sensor model. Width/Height/FPS describe the logical 16-bit image;
// CaptureWidth/CaptureHeight/CapturePixFmt are what the kernel driver
// advertises, which may differ (the TC001 family hides the real image
// inside a taller fake YUYV frame).
type CameraDescriptor struct {
	Width         int32
	Height        int32
	FPS           uint32
	FrameSize     uint32 // bytes of real 16-bit payload per frame
	SkipSize      uint32 // bytes of leading decoy sub-image to discard
	ColorSize     uint32 // bytes of rendered BGRA output per frame
	CaptureWidth  int32
	CaptureHeight int32
	CapturePixFmt uint32
	RecordPixFmt  uint32
	Name          [64]byte
}

func (cd *CameraDescriptor) String() string {
	n := 0
	for n < len(cd.Name) && cd.Name[n] != 0 {
		n++
	}
	return string(cd.Name[:n])
}

// PixelCount returns the number of 16-bit samples in one logical frame.
func (cd *CameraDescriptor) PixelCount() int {
	return int(cd.Width) * int(cd.Height)
}

// MarshalBinary encodes the descriptor as a WireSize-byte record.
// Every integer field is little-endian; the name is raw bytes.
func (cd *CameraDescriptor) MarshalBinary() ([]byte, error) {
	buf := make([]byte, WireSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(cd.Width))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(cd.Height))
	binary.LittleEndian.PutUint32(buf[8:12], cd.FPS)
	binary.LittleEndian.PutUint32(buf[12:16], cd.FrameSize)
	binary.LittleEndian.PutUint32(buf[16:20], cd.SkipSize)
	binary.LittleEndian.PutUint32(buf[20:24], cd.ColorSize)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(cd.CaptureWidth))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(cd.CaptureHeight))
	binary.LittleEndian.PutUint32(buf[32:36], cd.CapturePixFmt)
	binary.LittleEndian.PutUint32(buf[36:40], cd.RecordPixFmt)
	copy(buf[40:], cd.Name[:])
	return buf, nil
}

// UnmarshalBinary decodes a WireSize-byte record produced by
// MarshalBinary.
func (cd *CameraDescriptor) UnmarshalBinary(buf []byte) error {
	if len(buf) < WireSize {
		return io.ErrShortBuffer
	}
	cd.Width = int32(binary.LittleEndian.Uint32(buf[0:4]))
	cd.Height = int32(binary.LittleEndian.Uint32(buf[4:8]))
	cd.FPS = binary.LittleEndian.Uint32(buf[8:12])
	cd.FrameSize = binary.LittleEndian.Uint32(buf[12:16])
	cd.SkipSize = binary.LittleEndian.Uint32(buf[16:20])
	cd.ColorSize = binary.LittleEndian.Uint32(buf[20:24])
	cd.CaptureWidth = int32(binary.LittleEndian.Uint32(buf[24:28]))
	cd.CaptureHeight = int32(binary.LittleEndian.Uint32(buf[28:32]))
	cd.CapturePixFmt = binary.LittleEndian.Uint32(buf[32:36])
	cd.RecordPixFmt = binary.LittleEndian.Uint32(buf[36:40])
	copy(cd.Name[:], buf[40:WireSize])
	return nil
}
