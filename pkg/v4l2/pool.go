package v4l2

import "fmt"

// A Buffer identifies one filled frame slot. It is a handle only; the
// bytes live in the mapped region returned by BufBytes.
type Buffer struct {
	Index     uint32
	BytesUsed uint32
	Sequence  uint32
}

// bufferPool tracks ownership of the kernel's memory-mapped frame
// slots. A slot is owned by the kernel between release and the next
// fill, and by the application between acquire and release. The pool
// enforces that discipline so a read-after-release or double release
// fails loudly instead of corrupting a frame.
type bufferPool struct {
	mmaps [][]byte
	held  []bool // true while the application owns the slot
}

func newBufferPool(n int) *bufferPool {
	return &bufferPool{
		mmaps: make([][]byte, n),
		held:  make([]bool, n),
	}
}

func (p *bufferPool) acquire(index uint32) error {
	if int(index) >= len(p.held) {
		return fmt.Errorf("buffer index %d out of range (%d slots)", index, len(p.held))
	}
	if p.held[index] {
		return fmt.Errorf("buffer %d dequeued twice without release", index)
	}
	p.held[index] = true
	return nil
}

// view returns the mapped region for a slot the application currently
// owns. The returned slice is invalidated by release.
func (p *bufferPool) view(index uint32) ([]byte, error) {
	if int(index) >= len(p.held) || !p.held[index] {
		return nil, fmt.Errorf("buffer %d read while owned by the kernel", index)
	}
	return p.mmaps[index], nil
}

func (p *bufferPool) release(index uint32) error {
	if int(index) >= len(p.held) {
		return fmt.Errorf("buffer index %d out of range (%d slots)", index, len(p.held))
	}
	if !p.held[index] {
		return fmt.Errorf("buffer %d released twice", index)
	}
	p.held[index] = false
	return nil
}
