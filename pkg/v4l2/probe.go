//go:build linux && (amd64 || arm64)

package v4l2

import (
	"fmt"
	"log"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/kevmo314/go-ircam/pkg/descriptors"
)

// MatchesDescriptor reports whether the device at path advertises a
// (pixel format, frame size, frame interval) triple exactly equal to
// the descriptor's physical capture contract. A device that can't be
// opened simply doesn't match; an ioctl failure on an open device is
// an error.
//
// Stepwise and continuous frame-size advertisements are not expanded:
// only their reported minimum and maximum bounds are tried as discrete
// candidates. Stepwise and continuous frame intervals are skipped with
// a warning. A device that only advertises a compatible interior point
// of a continuous range will therefore not match.
func MatchesDescriptor(path string, desc *descriptors.CameraDescriptor) (bool, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return false, nil
	}
	defer unix.Close(fd)

	var cap capability
	if err := ioctl(fd, vidiocQueryCap, unsafe.Pointer(&cap)); err != nil {
		return false, fmt.Errorf("VIDIOC_QUERYCAP failed on %s: %w", path, err)
	}

	return searchFormats(fd, desc), nil
}

func searchFormats(fd int, desc *descriptors.CameraDescriptor) bool {
	for i := uint32(0); ; i++ {
		fmtDesc := fmtDesc{typ: bufTypeVideoCapture, index: i}
		if ioctl(fd, vidiocEnumFmt, unsafe.Pointer(&fmtDesc)) != nil {
			break
		}
		if searchSizes(fd, desc, fmtDesc.pixelFormat) {
			return true
		}
	}
	return false
}

func searchSizes(fd int, desc *descriptors.CameraDescriptor, pixfmt uint32) bool {
	for i := uint32(0); ; i++ {
		size := frmSizeEnum{pixelFormat: pixfmt, index: i}
		if ioctl(fd, vidiocEnumFrameSizes, unsafe.Pointer(&size)) != nil {
			break
		}

		switch size.typ {
		case frmTypeDiscrete:
			if searchIntervals(fd, desc, pixfmt, size.m[0], size.m[1]) {
				return true
			}

		case frmTypeStepwise, frmTypeContinuous:
			log.Printf("frame size is stepwise/continuous, trying min/max")
			if searchIntervals(fd, desc, pixfmt, size.m[0], size.m[3]) {
				return true
			}
			if searchIntervals(fd, desc, pixfmt, size.m[1], size.m[4]) {
				return true
			}
		}
	}
	return false
}

func searchIntervals(fd int, desc *descriptors.CameraDescriptor, pixfmt, width, height uint32) bool {
	for i := uint32(0); ; i++ {
		ival := frmIvalEnum{
			pixelFormat: pixfmt,
			width:       width,
			height:      height,
			index:       i,
		}
		if ioctl(fd, vidiocEnumFrameIntervals, unsafe.Pointer(&ival)) != nil {
			break
		}

		switch ival.typ {
		case frmTypeDiscrete:
			if width == uint32(desc.CaptureWidth) &&
				height == uint32(desc.CaptureHeight) &&
				pixfmt == desc.CapturePixFmt &&
				desc.FPS == ival.discrete.denominator {
				return true
			}

		case frmTypeStepwise, frmTypeContinuous:
			log.Printf("ignoring stepwise/continuous frame interval")
		}
	}
	return false
}
