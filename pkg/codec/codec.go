// Package codec is the recording/playback boundary. The pipeline only
// needs six operations: start/push/end for encoding and
// start/next/rewind/end for decoding; whatever sits behind them is
// opaque to the capture path.
//
// The built-in implementation is a minimal raw container (".irv"): a
// fixed header followed by equally sized frame records. It is not a
// general video format, but it round-trips 16-bit thermal frames
// bit-exactly, which is what the recordings are for.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
)

// An Encoder consumes frames for one recording session.
type Encoder interface {
	Push(seq uint32, data []byte) error
	End() error
}

// A Decoder produces frames from one recorded session. NextFrame
// returns io.EOF past the last frame; Rewind seeks back to the first.
type Decoder interface {
	NextFrame() ([]byte, error)
	Rewind() error
	End() error
}

var fileMagic = [4]byte{'I', 'R', 'V', '1'}

const headerSize = 4 + 5*4

// FileInfo is the decoded container header.
type FileInfo struct {
	Width     int32
	Height    int32
	FPS       uint32
	PixFmt    uint32
	FrameSize uint32
}

// frame record: 4-byte sequence number, then FrameSize payload bytes.

// TimestampedPath names a recording the way the interactive toggles
// do: "<unix seconds>-<tag>.irv" in the current directory.
func TimestampedPath(tag string) string {
	return fmt.Sprintf("%d-%s.irv", time.Now().Unix(), tag)
}

type fileEncoder struct {
	f         *os.File
	id        uuid.UUID
	frameSize int
	hdr       [8]byte
}

// StartEncode opens path and writes the container header. Every frame
// pushed afterward must be exactly frameSize bytes.
func StartEncode(path string, width, height int, fps int, pixFmt uint32, frameSize int) (Encoder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't open record file: %w", err)
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], fileMagic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(width))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(height))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(fps))
	binary.LittleEndian.PutUint32(hdr[16:20], pixFmt)
	binary.LittleEndian.PutUint32(hdr[20:24], uint32(frameSize))
	if _, err := f.Write(hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("can't write header: %w", err)
	}

	e := &fileEncoder{f: f, id: uuid.New(), frameSize: frameSize}
	log.Printf("recording session %s open at %s", e.id, path)
	return e, nil
}

func (e *fileEncoder) Push(seq uint32, data []byte) error {
	if len(data) != e.frameSize {
		return fmt.Errorf("frame is %d bytes, session records %d", len(data), e.frameSize)
	}
	binary.LittleEndian.PutUint32(e.hdr[0:4], seq)
	if _, err := e.f.Write(e.hdr[0:4]); err != nil {
		return fmt.Errorf("can't write frame header: %w", err)
	}
	if _, err := e.f.Write(data); err != nil {
		return fmt.Errorf("can't write frame: %w", err)
	}
	return nil
}

func (e *fileEncoder) End() error {
	return e.f.Close()
}

type fileDecoder struct {
	f    *os.File
	info FileInfo
	buf  []byte
}

// StartDecode opens a recorded session for playback.
func StartDecode(path string) (Decoder, *FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("can't open input file '%s': %w", path, err)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("'%s' is not a recording: %w", path, err)
	}
	if [4]byte(hdr[0:4]) != fileMagic {
		f.Close()
		return nil, nil, fmt.Errorf("'%s' is not a recording (bad magic)", path)
	}

	d := &fileDecoder{f: f}
	d.info.Width = int32(binary.LittleEndian.Uint32(hdr[4:8]))
	d.info.Height = int32(binary.LittleEndian.Uint32(hdr[8:12]))
	d.info.FPS = binary.LittleEndian.Uint32(hdr[12:16])
	d.info.PixFmt = binary.LittleEndian.Uint32(hdr[16:20])
	d.info.FrameSize = binary.LittleEndian.Uint32(hdr[20:24])
	d.buf = make([]byte, d.info.FrameSize)
	return d, &d.info, nil
}

// NextFrame returns the next frame payload. The returned slice is
// reused across calls.
func (d *fileDecoder) NextFrame() ([]byte, error) {
	var seq [4]byte
	if _, err := io.ReadFull(d.f, seq[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("truncated frame header: %w", err)
	}
	if _, err := io.ReadFull(d.f, d.buf); err != nil {
		return nil, fmt.Errorf("truncated frame: %w", err)
	}
	return d.buf, nil
}

func (d *fileDecoder) Rewind() error {
	_, err := d.f.Seek(headerSize, io.SeekStart)
	return err
}

func (d *fileDecoder) End() error {
	return d.f.Close()
}
