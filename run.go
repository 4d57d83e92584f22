package ircam

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/kevmo314/go-ircam/pkg/codec"
	"github.com/kevmo314/go-ircam/pkg/descriptors"
	"github.com/kevmo314/go-ircam/pkg/relay"
	"github.com/kevmo314/go-ircam/pkg/render"
	"github.com/kevmo314/go-ircam/pkg/v4l2"
)

// A FrameSource hands out filled capture buffers. *v4l2.Device is the
// real implementation; tests substitute their own.
type FrameSource interface {
	GetBuffer() (v4l2.Buffer, error)
	BufBytes(v4l2.Buffer) ([]byte, error)
	PutBuffer(v4l2.Buffer) error
}

// A Runner sequences one run mode: capture, playback, or the two
// remote ends. Every iteration fully processes one frame or exits;
// the stop flag is observed once per iteration, never mid-frame.
type Runner struct {
	Desc     descriptors.CameraDescriptor
	Pipe     *render.Pipeline
	Surface  Surface         // nil in headless modes
	Producer *relay.Producer // non-nil when relaying frames out
	Stop     *atomic.Bool

	// LastResult is the most recent pipeline pass, left readable so
	// surfaces sharing the runner can overlay temperatures and
	// scale bounds.
	LastResult render.Result

	rawRec   codec.Encoder
	colorRec codec.Encoder
	colorBuf []byte
}

// NewRunner builds a runner for one descriptor with the standard
// display defaults: colormap on, no contours, crosshair centered.
func NewRunner(desc descriptors.CameraDescriptor, surface Surface, stop *atomic.Bool) *Runner {
	w, h := int(desc.Width), int(desc.Height)
	return &Runner{
		Desc:    desc,
		Surface: surface,
		Stop:    stop,
		Pipe: &render.Pipeline{
			Width:     w,
			Height:    h,
			Colormap:  true,
			Contours:  1,
			Crosshair: render.Point{X: w / 2, Y: h / 2},
		},
		colorBuf: make([]byte, desc.ColorSize),
	}
}

// RawRecording reports whether a raw recording session is open.
func (r *Runner) RawRecording() bool { return r.rawRec != nil }

// ColorRecording reports whether a color recording session is open.
func (r *Runner) ColorRecording() bool { return r.colorRec != nil }

// ToggleRawRecord starts a 16-bit raw recording session, or ends the
// open one.
func (r *Runner) ToggleRawRecord() error {
	if r.rawRec != nil {
		err := r.rawRec.End()
		r.rawRec = nil
		return err
	}
	path := codec.TimestampedPath("raw")
	enc, err := codec.StartEncode(path, int(r.Desc.Width), int(r.Desc.Height),
		int(r.Desc.FPS), r.Desc.RecordPixFmt, int(r.Desc.FrameSize))
	if err != nil {
		return err
	}
	log.Printf("recording raw frames to %s", path)
	r.rawRec = enc
	return nil
}

// ToggleColorRecord starts a rendered-output recording session, or
// ends the open one.
func (r *Runner) ToggleColorRecord() error {
	if r.colorRec != nil {
		err := r.colorRec.End()
		r.colorRec = nil
		return err
	}
	path := codec.TimestampedPath("rgb")
	enc, err := codec.StartEncode(path, int(r.Desc.Width), int(r.Desc.Height),
		int(r.Desc.FPS), descriptors.PixFmtBGRA32, int(r.Desc.ColorSize))
	if err != nil {
		return err
	}
	log.Printf("recording rendered frames to %s", path)
	r.colorRec = enc
	return nil
}

// CloseSessions ends whichever recording sessions are still open.
// Partial cleanup on shutdown is a defect, so run modes call this on
// every exit path.
func (r *Runner) CloseSessions() {
	if r.rawRec != nil {
		if err := r.rawRec.End(); err != nil {
			log.Printf("warning: can't finish raw recording: %v", err)
		}
		r.rawRec = nil
	}
	if r.colorRec != nil {
		if err := r.colorRec.End(); err != nil {
			log.Printf("warning: can't finish color recording: %v", err)
		}
		r.colorRec = nil
	}
	if r.Producer != nil {
		r.Producer.Close()
		r.Producer = nil
	}
}

// handleAction applies a surface action. It reports whether the run
// loop should exit.
func (r *Runner) handleAction(act Action) (bool, error) {
	switch act {
	case ActionToggleRawRecord:
		return false, r.ToggleRawRecord()
	case ActionToggleColorRecord:
		return false, r.ToggleColorRecord()
	case ActionQuit:
		return true, nil
	}
	return false, nil
}

// paint runs the processing pipeline over one raw frame, records the
// rendered output if a color session is open, and hands the result to
// the surface. Headless runners skip all of it.
func (r *Runner) paint(raw []byte, seq uint32) (bool, error) {
	if r.Surface == nil {
		return false, nil
	}
	r.LastResult = r.Pipe.Process(raw, r.colorBuf)
	if r.colorRec != nil {
		if err := r.colorRec.Push(seq, r.colorBuf); err != nil {
			return false, fmt.Errorf("can't record rendered frame: %w", err)
		}
	}
	return r.handleAction(r.Surface.PaintFrame(r.colorBuf, seq))
}

// relayFrame sends one raw frame to the remote consumer, if any. A
// gone peer ends the relay session with a warning but not the run:
// the producer may still be recording locally.
func (r *Runner) relayFrame(raw []byte) {
	if r.Producer == nil {
		return
	}
	if err := r.Producer.SendFrame(raw); err != nil {
		log.Printf("warning: remote viewer went away, ending relay")
		r.Producer.Close()
		r.Producer = nil
	}
}

// RunCapture drives the local capture loop: acquire, validate, relay,
// record, render, release. srcPath appears in the size-mismatch
// diagnostic so the user knows which device to second-guess.
func (r *Runner) RunCapture(src FrameSource, srcPath string) error {
	defer r.CloseSessions()

	if r.Producer != nil {
		if err := r.Producer.SendDescriptor(&r.Desc); err != nil {
			return fmt.Errorf("descriptor handshake failed: %w", err)
		}
	}

	want := r.Desc.FrameSize + r.Desc.SkipSize
	for !r.Stop.Load() {
		buf, err := src.GetBuffer()
		if err != nil {
			return err
		}

		if buf.BytesUsed != want {
			return fmt.Errorf("bad image size (%d != %d), is '%s' the correct device? Pass -d to specify a different one",
				buf.BytesUsed, want, srcPath)
		}

		data, err := src.BufBytes(buf)
		if err != nil {
			return err
		}
		raw := data[r.Desc.SkipSize : r.Desc.SkipSize+r.Desc.FrameSize]

		r.relayFrame(raw)

		if r.rawRec != nil {
			if err := r.rawRec.Push(buf.Sequence, raw); err != nil {
				return fmt.Errorf("can't record: %w", err)
			}
		}

		quit, err := r.paint(raw, buf.Sequence)
		if err != nil {
			return err
		}

		if err := src.PutBuffer(buf); err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return nil
}

// RunConsume drives the remote-consumer loop: read one frame payload
// per iteration from the producer and feed it through the same
// processing path capture uses. The consumer must already have
// performed the descriptor handshake.
func (r *Runner) RunConsume(c *relay.Consumer) error {
	defer r.CloseSessions()

	raw := make([]byte, r.Desc.FrameSize)
	for seq := uint32(0); !r.Stop.Load(); seq++ {
		if err := c.ReadFrame(raw); err != nil {
			if err == relay.ErrSessionEnded {
				return nil
			}
			return err
		}

		if r.rawRec != nil {
			if err := r.rawRec.Push(seq, raw); err != nil {
				return fmt.Errorf("can't record: %w", err)
			}
		}

		quit, err := r.paint(raw, seq)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return nil
}

// RunPlayback replays a recorded session, paced by a timer at the
// descriptor's nominal frame rate. At end of file playback rewinds
// and loops; any open color recording ends at the loop point so a
// re-render captures exactly one pass.
func (r *Runner) RunPlayback(dec codec.Decoder) error {
	defer r.CloseSessions()

	tick := time.NewTicker(time.Second / time.Duration(r.Desc.FPS))
	defer tick.Stop()

	var data []byte
	var seq uint32
	paused := false

	for !r.Stop.Load() {
		if data == nil || !paused {
			d, err := dec.NextFrame()
			if err == io.EOF {
				if err := dec.Rewind(); err != nil {
					return err
				}
				if r.colorRec != nil {
					if err := r.ToggleColorRecord(); err != nil {
						return err
					}
				}
				seq = 0
				continue
			}
			if err != nil {
				return err
			}
			data = d
		}

		<-tick.C
		if !paused {
			seq++
		}

		r.LastResult = r.Pipe.Process(data, r.colorBuf)
		if r.colorRec != nil && !paused {
			if err := r.colorRec.Push(seq, r.colorBuf); err != nil {
				return fmt.Errorf("can't record rendered frame: %w", err)
			}
		}

		switch act := r.Surface.PaintFrame(r.colorBuf, seq); act {
		case ActionTogglePause:
			paused = !paused
		default:
			quit, err := r.handleAction(act)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
	return nil
}
