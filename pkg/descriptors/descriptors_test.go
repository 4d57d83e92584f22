package descriptors

import (
	"encoding/binary"
	"testing"
)

func TestCameraDescriptor_RoundTrip(t *testing.T) {
	original := &CameraDescriptor{
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
		Name:          name64("test sensor"),
	}

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if len(data) != WireSize {
		t.Fatalf("encoded length = %d, want %d", len(data), WireSize)
	}

	decoded := &CameraDescriptor{}
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}

	if *decoded != *original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestCameraDescriptor_WireLayout(t *testing.T) {
	desc := Default()
	data, err := desc.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	if got := int32(binary.LittleEndian.Uint32(data[0:4])); got != desc.Width {
		t.Errorf("width at offset 0 = %d, want %d", got, desc.Width)
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != desc.FPS {
		t.Errorf("fps at offset 8 = %d, want %d", got, desc.FPS)
	}
	if got := binary.LittleEndian.Uint32(data[32:36]); got != desc.CapturePixFmt {
		t.Errorf("capture pixfmt at offset 32 = %08x, want %08x", got, desc.CapturePixFmt)
	}
	if data[40] != desc.Name[0] {
		t.Errorf("name does not start at offset 40")
	}
}

func TestCameraDescriptor_UnmarshalShortBuffer(t *testing.T) {
	desc := &CameraDescriptor{}
	if err := desc.UnmarshalBinary(make([]byte, WireSize-1)); err == nil {
		t.Error("UnmarshalBinary accepted a short buffer")
	}
}

func TestString_StopsAtNul(t *testing.T) {
	desc := Default()
	if got := desc.String(); got != "TOPDON TC001 or compatible" {
		t.Errorf("String() = %q", got)
	}
}

func TestFourCC(t *testing.T) {
	if got := FourCC('Y', 'U', 'Y', 'V'); got != 0x56595559 {
		t.Errorf("FourCC(YUYV) = %08x, want 56595559", got)
	}
}

func TestDefaultContract(t *testing.T) {
	desc := Default()
	if desc.FrameSize != uint32(desc.PixelCount()*2) {
		t.Errorf("FrameSize = %d, want %d", desc.FrameSize, desc.PixelCount()*2)
	}
	if desc.SkipSize != desc.FrameSize {
		t.Errorf("SkipSize = %d, want %d", desc.SkipSize, desc.FrameSize)
	}
	if desc.ColorSize != uint32(desc.PixelCount()*4) {
		t.Errorf("ColorSize = %d, want %d", desc.ColorSize, desc.PixelCount()*4)
	}
}
