// Package ircam is the acquisition pipeline for low-cost USB infrared
// cameras of the TOPDON TC001 family. It pulls raw 16-bit frames from
// a V4L2 device with zero copies, renders them through a fixed-point
// normalization pipeline, and can record frames locally or relay them
// to a remote viewer over a stream socket.
package ircam

// An Action is what the display surface asks the pipeline to do after
// painting a frame.
type Action int

const (
	ActionNone Action = iota
	ActionToggleRawRecord
	ActionToggleColorRecord
	ActionTogglePause
	ActionQuit
)

// A Surface displays one rendered BGRA frame and reports the user's
// request back to the pipeline. Implementations own all presentation
// concerns (windowing, overlay text, input); the pipeline only ever
// hands them a finished color buffer.
type Surface interface {
	PaintFrame(color []byte, seq uint32) Action
}
