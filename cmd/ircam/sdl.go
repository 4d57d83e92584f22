package main

import (
	"fmt"
	"log"

	"github.com/veandco/go-sdl2/sdl"

	ircam "github.com/kevmo314/go-ircam"
	"github.com/kevmo314/go-ircam/pkg/render"
	"github.com/kevmo314/go-ircam/pkg/thermal"
)

const windowName = "Linux V4L2 IR Camera Viewer"

// sdlSurface presents rendered frames in an SDL window and translates
// keyboard input into pipeline setting changes and runner actions.
type sdlSurface struct {
	runner   *ircam.Runner
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	fahren      bool
	showMarkers bool
	playback    bool
	paused      bool
	painted     uint32
}

func newSDLSurface(runner *ircam.Runner, winW, winH int, playback bool) (*sdlSurface, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, err
	}

	window, err := sdl.CreateWindow(windowName,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(winW), int32(winH), sdl.WINDOW_OPENGL)
	if err != nil {
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1,
		sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		log.Printf("falling back to software renderer: %v", err)
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			return nil, err
		}
	}

	w, h := int32(runner.Desc.Width), int32(runner.Desc.Height)
	renderer.SetLogicalSize(w, h)
	sdl.ShowCursor(sdl.DISABLE)

	// BGRA everywhere so recorded color output and the texture share
	// a byte order.
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_BGRA32,
		sdl.TEXTUREACCESS_STREAMING, w, h)
	if err != nil {
		return nil, err
	}

	return &sdlSurface{
		runner:   runner,
		window:   window,
		renderer: renderer,
		texture:  texture,
		fahren:   true,
		playback: playback,
	}, nil
}

func (s *sdlSurface) Close() {
	s.texture.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
	sdl.Quit()
}

func (s *sdlSurface) drawMarker(pt render.Point, size int32, r, g, b uint8) {
	x, y := int32(pt.X), int32(pt.Y)
	s.renderer.SetDrawColor(r, g, b, 255)
	s.renderer.DrawLine(x, y-size, x, y+size)
	s.renderer.DrawLine(x-size, y, x+size, y)
}

func (s *sdlSurface) formatTemp(raw uint16) string {
	t := thermal.RawCelsius(raw)
	unit := "C"
	if s.fahren {
		t = t.Fahrenheit()
		unit = "F"
	}
	return t.String() + unit
}

func (s *sdlSurface) updateTitle(seq uint32) {
	res := s.runner.LastResult
	p := s.runner.Pipe

	scale := "AUTO"
	if p.ScaleMin != 0 || p.ScaleMax != 0 {
		scale = fmt.Sprintf("%s..%s", s.formatTemp(p.ScaleMin), s.formatTemp(p.ScaleMax))
	}

	status := ""
	if p.GammaIndex != 0 {
		status += " [G " + render.GammaLabel(p.GammaIndex) + "]"
	}
	if s.runner.RawRecording() {
		status += " [REC]"
	}
	if s.runner.ColorRecording() {
		status += " [VREC]"
	}
	if s.playback && s.paused {
		status += " [PAUSE]"
	}

	s.window.SetTitle(fmt.Sprintf("%s - %s / %s / %s [%s]%s drops=%d",
		windowName,
		s.formatTemp(res.Min), s.formatTemp(res.Point), s.formatTemp(res.Max),
		scale, status, int64(seq)-int64(s.painted)))
}

// PaintFrame uploads one BGRA frame, overlays the crosshair and
// extremum markers, presents, and drains pending input events. The
// first event that maps to an action wins the iteration.
func (s *sdlSurface) PaintFrame(color []byte, seq uint32) ircam.Action {
	pixels, _, err := s.texture.Lock(nil)
	if err != nil {
		log.Printf("can't lock texture: %v", err)
		return ircam.ActionQuit
	}
	copy(pixels, color)
	s.texture.Unlock()

	s.renderer.SetDrawColor(0, 0, 0, 255)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)

	res := s.runner.LastResult
	s.drawMarker(s.runner.Pipe.Crosshair, 2, 255, 255, 255)
	if s.showMarkers && !res.Blank {
		s.drawMarker(res.MinAt, 1, 0, 0, 255)
		s.drawMarker(res.MaxAt, 1, 255, 0, 0)
	}
	s.renderer.Present()

	if !(s.playback && s.paused) {
		s.painted++
	}
	s.updateTitle(seq)

	ret := ircam.ActionNone
	for ret == ircam.ActionNone {
		evt := sdl.PollEvent()
		if evt == nil {
			break
		}
		ret = s.handleEvent(evt)
	}
	return ret
}

func (s *sdlSurface) handleEvent(evt sdl.Event) ircam.Action {
	p := s.runner.Pipe

	switch e := evt.(type) {
	case *sdl.QuitEvent:
		return ircam.ActionQuit

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			break
		}

		switch e.Keysym.Scancode {
		case sdl.SCANCODE_ESCAPE:
			return ircam.ActionQuit

		case sdl.SCANCODE_SPACE:
			s.paused = !s.paused
			return ircam.ActionTogglePause

		case sdl.SCANCODE_R:
			return ircam.ActionToggleRawRecord

		case sdl.SCANCODE_V:
			return ircam.ActionToggleColorRecord

		case sdl.SCANCODE_C:
			p.Colormap = !p.Colormap

		case sdl.SCANCODE_E:
			p.AutoScale()

		case sdl.SCANCODE_D:
			res := s.runner.LastResult
			p.PinScale(res.RangeMin, res.RangeMax)

		case sdl.SCANCODE_W:
			p.NudgeScaleMax(8)

		case sdl.SCANCODE_S:
			p.NudgeScaleMax(-8)

		case sdl.SCANCODE_Q:
			p.NudgeScaleMin(8)

		case sdl.SCANCODE_A:
			p.NudgeScaleMin(-8)

		case sdl.SCANCODE_Z:
			p.ScaleMin = 0

		case sdl.SCANCODE_X:
			p.ScaleMax = 0xFFFF

		case sdl.SCANCODE_G:
			p.CycleGamma()

		case sdl.SCANCODE_Y:
			p.CycleContours()

		case sdl.SCANCODE_F:
			s.fahren = !s.fahren

		case sdl.SCANCODE_I:
			p.Invert = !p.Invert

		case sdl.SCANCODE_U:
			p.Rotate = !p.Rotate

		case sdl.SCANCODE_M:
			s.showMarkers = !s.showMarkers

		case sdl.SCANCODE_RIGHT:
			p.MoveCrosshair(1, 0)

		case sdl.SCANCODE_LEFT:
			p.MoveCrosshair(-1, 0)

		case sdl.SCANCODE_UP:
			p.MoveCrosshair(0, -1)

		case sdl.SCANCODE_DOWN:
			p.MoveCrosshair(0, 1)
		}
	}
	return ircam.ActionNone
}
