package codec

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.irv")

	enc, err := StartEncode(path, 4, 2, 25, 0x20363159, 16)
	if err != nil {
		t.Fatalf("StartEncode failed: %v", err)
	}

	frames := [][]byte{
		bytes.Repeat([]byte{0x11}, 16),
		bytes.Repeat([]byte{0x22}, 16),
		bytes.Repeat([]byte{0x33}, 16),
	}
	for i, f := range frames {
		if err := enc.Push(uint32(i), f); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
	}
	if err := enc.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	dec, info, err := StartDecode(path)
	if err != nil {
		t.Fatalf("StartDecode failed: %v", err)
	}
	defer dec.End()

	if info.Width != 4 || info.Height != 2 {
		t.Errorf("geometry = %dx%d, want 4x2", info.Width, info.Height)
	}
	if info.FPS != 25 {
		t.Errorf("FPS = %d, want 25", info.FPS)
	}
	if info.PixFmt != 0x20363159 {
		t.Errorf("PixFmt = %08x, want 20363159", info.PixFmt)
	}
	if info.FrameSize != 16 {
		t.Errorf("FrameSize = %d, want 16", info.FrameSize)
	}

	for i, want := range frames {
		got, err := dec.NextFrame()
		if err != nil {
			t.Fatalf("NextFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %x, want %x", i, got[0], want[0])
		}
	}
	if _, err := dec.NextFrame(); err != io.EOF {
		t.Fatalf("NextFrame past end = %v, want io.EOF", err)
	}

	// Rewind restarts at the first frame.
	if err := dec.Rewind(); err != nil {
		t.Fatalf("Rewind failed: %v", err)
	}
	got, err := dec.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame after Rewind failed: %v", err)
	}
	if !bytes.Equal(got, frames[0]) {
		t.Errorf("frame after Rewind = %x, want %x", got[0], frames[0][0])
	}
}

func TestPush_WrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.irv")
	enc, err := StartEncode(path, 4, 2, 25, 0, 16)
	if err != nil {
		t.Fatalf("StartEncode failed: %v", err)
	}
	defer enc.End()

	if err := enc.Push(0, make([]byte, 15)); err == nil {
		t.Error("Push accepted a frame of the wrong size")
	}
}

func TestStartDecode_RejectsNonRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-recording")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x55}, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := StartDecode(path); err == nil {
		t.Error("StartDecode accepted a file without the container magic")
	}
}

func TestStartDecode_RejectsTruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.irv")
	if err := os.WriteFile(path, fileMagic[:], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := StartDecode(path); err == nil {
		t.Error("StartDecode accepted a truncated header")
	}
}

func TestTimestampedPath(t *testing.T) {
	path := TimestampedPath("raw")
	if !strings.HasSuffix(path, "-raw.irv") {
		t.Errorf("TimestampedPath = %q, want -raw.irv suffix", path)
	}
}
