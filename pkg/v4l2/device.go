//go:build linux && (amd64 || arm64)

// Package v4l2 drives one V4L2 capture device through its memory-mapped
// streaming interface. Frames are acquired and released with no copy:
// GetBuffer hands out a borrowed view of a kernel-mapped region that
// stays valid until the matching PutBuffer.
package v4l2

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MaxBuffers caps the streaming buffer pool. The kernel may grant
// fewer; granting more is a hard error because the slot tables are
// sized to this.
const MaxBuffers = 64

// A Device is an open V4L2 capture device. The zero value is not
// usable; call Open.
type Device struct {
	fd        int
	path      string
	cap       capability
	nrBuffers int
	lens      []uint32
	pool      *bufferPool
	streaming bool
}

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Open opens the device non-blocking and configures the pixel format,
// capture geometry, and frame interval. Streaming does not start until
// InitStream.
func Open(path string, pixfmt uint32, width, height, fps int) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("can't open V4L2 dev %s: %w", path, err)
	}

	d := &Device{fd: fd, path: path}

	fmtReq := format{typ: bufTypeVideoCapture}
	fmtReq.pix.pixelFormat = pixfmt
	fmtReq.pix.width = uint32(width)
	fmtReq.pix.height = uint32(height)
	if err := ioctl(d.fd, vidiocSetFmt, unsafe.Pointer(&fmtReq)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("VIDIOC_S_FMT failed: %w", err)
	}

	parm := streamParm{typ: bufTypeVideoCapture}
	parm.capture.timePerFrame = fract{numerator: 1, denominator: uint32(fps)}
	if err := ioctl(d.fd, vidiocSetParm, unsafe.Pointer(&parm)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("VIDIOC_S_PARM failed: %w", err)
	}

	return d, nil
}

// InitStream requests the buffer pool, maps every granted slot,
// queues them all to the kernel, and starts streaming.
func (d *Device) InitStream() error {
	if err := ioctl(d.fd, vidiocQueryCap, unsafe.Pointer(&d.cap)); err != nil {
		return fmt.Errorf("VIDIOC_QUERYCAP failed: %w", err)
	}
	if d.cap.deviceCaps&capVideoCapture == 0 {
		return fmt.Errorf("%s: no capture support", d.path)
	}
	if d.cap.deviceCaps&capStreaming == 0 {
		return fmt.Errorf("%s: no streaming support", d.path)
	}

	req := requestBuffers{
		count:  MaxBuffers,
		typ:    bufTypeVideoCapture,
		memory: memoryMMAP,
	}
	if err := ioctl(d.fd, vidiocReqBufs, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("VIDIOC_REQBUFS failed: %w", err)
	}
	if req.count > MaxBuffers {
		return fmt.Errorf("too many buffers: %d > %d", req.count, MaxBuffers)
	}

	d.nrBuffers = int(req.count)
	d.lens = make([]uint32, d.nrBuffers)
	d.pool = newBufferPool(d.nrBuffers)

	bufs := make([]kernelBuffer, d.nrBuffers)
	for i := 0; i < d.nrBuffers; i++ {
		bufs[i] = kernelBuffer{
			index:  uint32(i),
			typ:    bufTypeVideoCapture,
			memory: memoryMMAP,
		}
		if err := ioctl(d.fd, vidiocQueryBuf, unsafe.Pointer(&bufs[i])); err != nil {
			return fmt.Errorf("VIDIOC_QUERYBUF failed: %w", err)
		}

		m, err := unix.Mmap(d.fd, int64(bufs[i].offset), int(bufs[i].length),
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return fmt.Errorf("can't mmap buffer %d: %w", i, err)
		}
		d.lens[i] = bufs[i].length
		d.pool.mmaps[i] = m
	}

	for i := 0; i < d.nrBuffers; i++ {
		if err := ioctl(d.fd, vidiocQBuf, unsafe.Pointer(&bufs[i])); err != nil {
			return fmt.Errorf("initial VIDIOC_QBUF failed: %w", err)
		}
	}

	typ := uint32(bufTypeVideoCapture)
	if err := ioctl(d.fd, vidiocStreamOn, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("VIDIOC_STREAMON failed: %w", err)
	}
	d.streaming = true
	return nil
}

// GetBuffer dequeues the next filled frame slot, blocking until one is
// ready. Any dequeue failure other than "not ready yet" is returned to
// the caller; there is no recovery path for a mid-stream kernel error.
func (d *Device) GetBuffer() (Buffer, error) {
	for {
		kb := kernelBuffer{
			typ:    bufTypeVideoCapture,
			memory: memoryMMAP,
		}
		err := ioctl(d.fd, vidiocDQBuf, unsafe.Pointer(&kb))
		if err == nil {
			if err := d.pool.acquire(kb.index); err != nil {
				return Buffer{}, err
			}
			return Buffer{
				Index:     kb.index,
				BytesUsed: kb.bytesUsed,
				Sequence:  kb.sequence,
			}, nil
		}
		if err != unix.EAGAIN {
			return Buffer{}, fmt.Errorf("VIDIOC_DQBUF failed: %w", err)
		}

		pfd := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pfd, -1); err != nil && err != unix.EINTR {
			return Buffer{}, fmt.Errorf("poll failed: %w", err)
		}
	}
}

// BufBytes returns the mapped region backing an acquired buffer. The
// slice is valid only until PutBuffer releases the slot.
func (d *Device) BufBytes(buf Buffer) ([]byte, error) {
	return d.pool.view(buf.Index)
}

// PutBuffer returns a slot to the kernel. The region previously
// returned by BufBytes must not be read afterward.
func (d *Device) PutBuffer(buf Buffer) error {
	if err := d.pool.release(buf.Index); err != nil {
		return err
	}
	kb := kernelBuffer{
		index:  buf.Index,
		typ:    bufTypeVideoCapture,
		memory: memoryMMAP,
	}
	if err := ioctl(d.fd, vidiocQBuf, unsafe.Pointer(&kb)); err != nil {
		return fmt.Errorf("VIDIOC_QBUF failed: %w", err)
	}
	return nil
}

// Close stops streaming, unmaps every buffer, and closes the device.
func (d *Device) Close() error {
	if d.streaming {
		typ := uint32(bufTypeVideoCapture)
		if err := ioctl(d.fd, vidiocStreamOff, unsafe.Pointer(&typ)); err != nil {
			return fmt.Errorf("VIDIOC_STREAMOFF failed: %w", err)
		}
		d.streaming = false
	}
	for i := 0; i < d.nrBuffers; i++ {
		if d.pool.mmaps[i] != nil {
			if err := unix.Munmap(d.pool.mmaps[i]); err != nil {
				return fmt.Errorf("can't munmap buffer %d: %w", i, err)
			}
			d.pool.mmaps[i] = nil
		}
	}
	return unix.Close(d.fd)
}
