// Command ircam-inspect is a diagnostic TUI for TC001-family cameras.
// It shows the matched capture contract, live temperature readings and
// frame statistics, and a temporal noise spectrum computed over the
// per-frame mean sensor count. With -render the rendered frames also
// go to a window.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"math/cmplx"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mjibson/go-dsp/fft"
	"github.com/rivo/tview"

	ircam "github.com/kevmo314/go-ircam"
	"github.com/kevmo314/go-ircam/pkg/descriptors"
	"github.com/kevmo314/go-ircam/pkg/render"
	"github.com/kevmo314/go-ircam/pkg/thermal"
	"github.com/kevmo314/go-ircam/pkg/v4l2"
)

type Display struct {
	frame atomic.Value
}

func (g *Display) Update() error {
	return nil
}

func (g *Display) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.frame.Load().(*ebiten.Image), &ebiten.DrawImageOptions{})
}

func (g *Display) Layout(outsideWidth, outsideHeight int) (int, int) {
	frame := g.frame.Load().(*ebiten.Image)
	return frame.Bounds().Dx(), frame.Bounds().Dy()
}

// A noiseProbe accumulates the per-frame mean sensor count and exposes
// its frequency spectrum. On a static scene the mean should be flat, so
// any structure here is fixed-pattern or periodic sensor noise.
type noiseProbe struct {
	mu      sync.Mutex
	means   []float64
	next    int
	filled  bool
	fftSize int
}

func newNoiseProbe(fftSize int) *noiseProbe {
	return &noiseProbe{
		means:   make([]float64, fftSize),
		fftSize: fftSize,
	}
}

func (np *noiseProbe) AddFrame(mean float64) {
	np.mu.Lock()
	np.means[np.next] = mean
	np.next = (np.next + 1) % np.fftSize
	if np.next == 0 {
		np.filled = true
	}
	np.mu.Unlock()
}

// Spectrum renders the magnitude spectrum as text rows of bar columns,
// DC bin excluded.
func (np *noiseProbe) Spectrum(width, height int) []string {
	np.mu.Lock()
	input := make([]float64, np.fftSize)
	copy(input, np.means[np.next:])
	copy(input[np.fftSize-np.next:], np.means[:np.next])
	filled := np.filled
	np.mu.Unlock()

	lines := make([]string, height)
	if !filled || width == 0 || height == 0 {
		return lines
	}

	// Hamming window against spectral leakage.
	for i := range input {
		input[i] *= 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(np.fftSize-1))
	}
	out := fft.FFTReal(input)

	bins := np.fftSize / 2
	db := make([]float64, bins)
	for i := 1; i < bins; i++ {
		mag := cmplx.Abs(out[i])
		if mag > 0 {
			db[i] = 20 * math.Log10(mag)
		} else {
			db[i] = -120
		}
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	minDB, maxDB := -20.0, 60.0
	binsPerCol := (bins - 1) / width
	if binsPerCol == 0 {
		binsPerCol = 1
	}
	for x := 0; x < width && 1+x*binsPerCol < bins; x++ {
		sum, count := 0.0, 0
		for i := 0; i < binsPerCol && 1+x*binsPerCol+i < bins; i++ {
			sum += db[1+x*binsPerCol+i]
			count++
		}
		normalized := (sum/float64(count) - minDB) / (maxDB - minDB)
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}
		barHeight := int(normalized * float64(height-1))
		for y := 0; y <= barHeight; y++ {
			grid[height-1-y][x] = '█'
		}
	}

	for i := range grid {
		lines[i] = string(grid[i])
	}
	return lines
}

func main() {
	device := flag.String("d", "", "path to the V4L2 camera device (default: probe /dev/videoN)")
	renderFlag := flag.Bool("render", false, "render the frames to screen (higher performance but requires a display)")
	flag.Parse()

	devPath := *device
	var err error
	var desc *descriptors.CameraDescriptor
	if devPath == "" {
		devPath, desc, err = ircam.FindCamera()
	} else {
		desc, err = ircam.Lookup(devPath)
	}
	if err != nil {
		log.Fatalf("no compatible camera: %v", err)
	}

	dev, err := v4l2.Open(devPath, desc.CapturePixFmt,
		int(desc.CaptureWidth), int(desc.CaptureHeight), int(desc.FPS))
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer dev.Close()
	if err := dev.InitStream(); err != nil {
		log.Fatalf("%v", err)
	}

	app := tview.NewApplication()

	contract := tview.NewList().ShowSecondaryText(true)
	contract.SetBorder(true).SetTitle("Capture Contract")
	contract.AddItem(desc.String(), devPath, 0, nil)
	contract.AddItem("Logical frame", fmt.Sprintf("%dx%d @ %d fps", desc.Width, desc.Height, desc.FPS), 0, nil)
	contract.AddItem("Physical frame", fmt.Sprintf("%dx%d %s", desc.CaptureWidth, desc.CaptureHeight, fourccString(desc.CapturePixFmt)), 0, nil)
	contract.AddItem("Payload", fmt.Sprintf("skip %d bytes, keep %d bytes", desc.SkipSize, desc.FrameSize), 0, nil)

	statsView := tview.NewTextView()
	statsView.SetBorder(true).SetTitle("Frame Statistics")

	spectrumView := tview.NewTextView()
	spectrumView.SetBorder(true).SetTitle("Temporal Noise Spectrum")

	preview := tview.NewImage()
	preview.SetColors(256).SetDithering(tview.DitheringNone).SetBorder(true).SetTitle("Preview")

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")
	log.SetOutput(logText)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	pipe := &render.Pipeline{
		Width:     int(desc.Width),
		Height:    int(desc.Height),
		Colormap:  true,
		Contours:  1,
		Crosshair: render.Point{X: int(desc.Width) / 2, Y: int(desc.Height) / 2},
	}
	colorBuf := make([]byte, desc.ColorSize)
	probe := newNoiseProbe(256)

	var mu sync.Mutex
	var lastRes render.Result
	var frameCount, fps, drops int
	var lastSeq uint32

	g := &Display{}

	go func() {
		t0 := time.Now()
		want := desc.FrameSize + desc.SkipSize
		for {
			buf, err := dev.GetBuffer()
			if err != nil {
				log.Printf("error reading frame: %v", err)
				return
			}
			if buf.BytesUsed != want {
				log.Printf("bad image size (%d != %d), is '%s' the correct device?",
					buf.BytesUsed, want, devPath)
				return
			}
			data, err := dev.BufBytes(buf)
			if err != nil {
				log.Printf("%v", err)
				return
			}
			raw := data[desc.SkipSize : desc.SkipSize+desc.FrameSize]

			res := pipe.Process(raw, colorBuf)
			probe.AddFrame(meanCount(raw))

			mu.Lock()
			if lastSeq != 0 && buf.Sequence > lastSeq+1 {
				drops += int(buf.Sequence - lastSeq - 1)
			}
			lastSeq = buf.Sequence
			lastRes = res
			frameCount++
			if time.Since(t0) >= time.Second {
				fps = frameCount
				frameCount = 0
				t0 = time.Now()
			}
			mu.Unlock()

			if *renderFlag {
				if g.frame.Swap(ebiten.NewImageFromImage(toRGBA(colorBuf, pipe.Width, pipe.Height))) == nil {
					go func() {
						if err := ebiten.RunGame(g); err != nil {
							log.Printf("ebiten error: %v", err)
						}
					}()
				}
			} else {
				w := 64
				h := pipe.Height * w / pipe.Width
				preview.SetImage(resize(toRGBA(colorBuf, pipe.Width, pipe.Height), w, h))
			}

			if err := dev.PutBuffer(buf); err != nil {
				log.Printf("%v", err)
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			res, curFPS, curDrops := lastRes, fps, drops
			mu.Unlock()

			statsView.Clear()
			fmt.Fprintf(statsView, "Min:   %sC raw %d at (%d,%d)\n",
				thermal.RawCelsius(res.Min), res.Min, res.MinAt.X, res.MinAt.Y)
			fmt.Fprintf(statsView, "Max:   %sC raw %d at (%d,%d)\n",
				thermal.RawCelsius(res.Max), res.Max, res.MaxAt.X, res.MaxAt.Y)
			fmt.Fprintf(statsView, "Point: %sC raw %d\n", thermal.RawCelsius(res.Point), res.Point)
			fmt.Fprintf(statsView, "FPS:   %d  Drops: %d\n", curFPS, curDrops)

			_, _, swidth, sheight := spectrumView.GetInnerRect()
			if swidth > 0 && sheight > 0 {
				spectrumView.Clear()
				spectrumView.SetText(strings.Join(probe.Spectrum(swidth, sheight), "\n"))
			}

			app.ForceDraw()
		}
	}()

	leftColumn := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(contract, 0, 1, true).
		AddItem(statsView, 8, 0, false)

	rightColumn := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(spectrumView, 0, 1, false)
	if !*renderFlag {
		rightColumn.AddItem(preview, 0, 2, false)
	}

	flex := tview.NewFlex().
		AddItem(leftColumn, 0, 1, true).
		AddItem(rightColumn, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(flex, 0, 1, true).
		AddItem(logText, 8, 0, false)

	if err := app.SetRoot(root, true).Run(); err != nil {
		panic(err)
	}
}

func meanCount(raw []byte) float64 {
	var sum uint64
	for i := 0; i < len(raw); i += 2 {
		sum += uint64(raw[i]) | uint64(raw[i+1])<<8
	}
	return float64(sum) / float64(len(raw)/2)
}

// toRGBA repacks a BGRA buffer into an image.RGBA for consumers that
// expect the standard library layout.
func toRGBA(bgra []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(bgra); i += 4 {
		img.Pix[i] = bgra[i+2]
		img.Pix[i+1] = bgra[i+1]
		img.Pix[i+2] = bgra[i]
		img.Pix[i+3] = bgra[i+3]
	}
	return img
}

func resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func fourccString(v uint32) string {
	return string([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
