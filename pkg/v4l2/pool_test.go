package v4l2

import "testing"

func TestBufferPool_OwnershipDiscipline(t *testing.T) {
	p := newBufferPool(2)
	p.mmaps[0] = []byte{1, 2, 3}
	p.mmaps[1] = []byte{4, 5, 6}

	if err := p.acquire(0); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	data, err := p.view(0)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if data[0] != 1 {
		t.Errorf("view returned wrong slot: %v", data)
	}
	if err := p.release(0); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// The slot is back with the kernel; touching it must fail.
	if _, err := p.view(0); err == nil {
		t.Error("view succeeded on a released buffer")
	}
	if err := p.release(0); err == nil {
		t.Error("double release succeeded")
	}
}

func TestBufferPool_DoubleAcquire(t *testing.T) {
	p := newBufferPool(1)
	if err := p.acquire(0); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if err := p.acquire(0); err == nil {
		t.Error("acquiring a held buffer succeeded")
	}
}

func TestBufferPool_IndexOutOfRange(t *testing.T) {
	p := newBufferPool(2)
	if err := p.acquire(2); err == nil {
		t.Error("acquire out of range succeeded")
	}
	if _, err := p.view(2); err == nil {
		t.Error("view out of range succeeded")
	}
	if err := p.release(2); err == nil {
		t.Error("release out of range succeeded")
	}
}

func TestBufferPool_IndependentSlots(t *testing.T) {
	p := newBufferPool(3)
	for i := uint32(0); i < 3; i++ {
		if err := p.acquire(i); err != nil {
			t.Fatalf("acquire %d failed: %v", i, err)
		}
	}
	if err := p.release(1); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	// Releasing one slot must not affect its neighbors.
	if _, err := p.view(0); err != nil {
		t.Errorf("view 0 failed: %v", err)
	}
	if _, err := p.view(2); err != nil {
		t.Errorf("view 2 failed: %v", err)
	}
	if err := p.acquire(1); err != nil {
		t.Errorf("re-acquire after release failed: %v", err)
	}
}
