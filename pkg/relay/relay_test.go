package relay

import (
	"bytes"
	"net"
	"testing"

	"github.com/kevmo314/go-ircam/pkg/descriptors"
)

func pipeSession(t *testing.T) (*Producer, *Consumer) {
	t.Helper()
	pc, cc := net.Pipe()
	p := &Producer{conn: pc}
	c := NewConsumer(cc)
	t.Cleanup(func() {
		p.Close()
		c.Close()
	})
	return p, c
}

func TestSession_HandshakeAndFrames(t *testing.T) {
	p, c := pipeSession(t)

	sent := descriptors.Default()
	sent.FrameSize = 8 // tiny frames keep the test readable
	frames := [][]byte{
		{0, 1, 2, 3, 4, 5, 6, 7},
		{7, 6, 5, 4, 3, 2, 1, 0},
		{9, 9, 9, 9, 9, 9, 9, 9},
	}

	done := make(chan error, 1)
	go func() {
		if err := p.SendDescriptor(&sent); err != nil {
			done <- err
			return
		}
		for _, f := range frames {
			if err := p.SendFrame(f); err != nil {
				done <- err
				return
			}
		}
		done <- p.Close()
	}()

	got, err := c.ReadDescriptor()
	if err != nil {
		t.Fatalf("ReadDescriptor failed: %v", err)
	}
	if *got != sent {
		t.Errorf("descriptor = %+v, want %+v", got, sent)
	}

	buf := make([]byte, got.FrameSize)
	for i, want := range frames {
		if err := c.ReadFrame(buf); err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(buf, want) {
			t.Errorf("frame %d = %v, want %v", i, buf, want)
		}
	}

	// The producer hung up at a frame boundary: clean end of session.
	if err := c.ReadFrame(buf); err != ErrSessionEnded {
		t.Errorf("ReadFrame after close = %v, want ErrSessionEnded", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("producer failed: %v", err)
	}
}

func TestConsumer_ReassemblesPartialReads(t *testing.T) {
	pc, cc := net.Pipe()
	defer pc.Close()

	c := NewConsumer(cc)
	defer c.Close()
	c.frameSize = 9

	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	go func() {
		// One frame split across three writes; net.Pipe delivers each
		// separately, so ReadFrame has to loop.
		pc.Write(want[0:3])
		pc.Write(want[3:5])
		pc.Write(want[5:9])
	}()

	buf := make([]byte, 9)
	if err := c.ReadFrame(buf); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(buf, want) {
		t.Errorf("frame = %v, want %v", buf, want)
	}
}

func TestConsumer_MidFrameEOFIsError(t *testing.T) {
	pc, cc := net.Pipe()

	c := NewConsumer(cc)
	defer c.Close()
	c.frameSize = 8

	go func() {
		pc.Write([]byte{1, 2, 3})
		pc.Close()
	}()

	err := c.ReadFrame(make([]byte, 8))
	if err == nil {
		t.Fatal("ReadFrame accepted a truncated frame")
	}
	if err == ErrSessionEnded {
		t.Error("mid-frame EOF reported as a clean session end")
	}
}

func TestConsumer_ReadFrameBeforeHandshake(t *testing.T) {
	_, cc := net.Pipe()
	c := NewConsumer(cc)
	defer c.Close()

	if err := c.ReadFrame(make([]byte, 16)); err == nil {
		t.Error("ReadFrame before the descriptor handshake succeeded")
	}
}

func TestConsumer_ShortBuffer(t *testing.T) {
	_, cc := net.Pipe()
	c := NewConsumer(cc)
	defer c.Close()
	c.frameSize = 16

	if err := c.ReadFrame(make([]byte, 8)); err == nil {
		t.Error("ReadFrame accepted a buffer smaller than the frame size")
	}
}
