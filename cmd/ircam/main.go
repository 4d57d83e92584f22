// Command ircam is an interactive viewer/recorder for TC001-family
// USB infrared cameras. It captures locally, replays recordings, and
// can relay raw frames to (or view them from) a remote instance.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"

	ircam "github.com/kevmo314/go-ircam"
	"github.com/kevmo314/go-ircam/pkg/codec"
	"github.com/kevmo314/go-ircam/pkg/descriptors"
	"github.com/kevmo314/go-ircam/pkg/relay"
	"github.com/kevmo314/go-ircam/pkg/v4l2"
)

func main() {
	runtime.LockOSThread() // SDL requires the main thread

	device := flag.String("d", "", "path to the V4L2 camera device (default: probe /dev/videoN)")
	playback := flag.String("p", "", "play back a recording instead of capturing")
	recordOnly := flag.Bool("n", false, "record raw frames without opening a window")
	winWidth := flag.Int("w", 1440, "window width (height follows 4:3)")
	listenPort := flag.Int("listen", 0, "relay raw frames to one remote viewer on this port")
	connect := flag.String("connect", "", "view raw frames from a remote producer at host:port")
	flag.Parse()

	if *playback != "" && (*device != "" || *recordOnly || *listenPort != 0 || *connect != "") {
		log.Fatalf("-p cannot be combined with capture options")
	}
	if *connect != "" && (*device != "" || *listenPort != 0) {
		log.Fatalf("-connect cannot be combined with a local device")
	}

	var stop atomic.Bool
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	signal.Ignore(syscall.SIGPIPE, syscall.SIGHUP)
	go func() {
		<-sigs
		stop.Store(true)
	}()

	switch {
	case *playback != "":
		runPlayback(*playback, *winWidth, &stop)
	case *connect != "":
		runConsume(*connect, *winWidth, *recordOnly, &stop)
	default:
		runCapture(*device, *winWidth, *recordOnly, *listenPort, &stop)
	}
}

func runCapture(devPath string, winWidth int, recordOnly bool, listenPort int, stop *atomic.Bool) {
	var desc *descriptors.CameraDescriptor
	var err error

	if devPath == "" {
		devPath, desc, err = ircam.FindCamera()
		if err != nil {
			log.Fatalf("no compatible camera found, pass -d to specify a device")
		}
	} else {
		desc, err = ircam.Lookup(devPath)
		if err != nil {
			log.Fatalf("'%s' is not a supported camera: %v", devPath, err)
		}
	}
	log.Printf("using %s at %s", desc, devPath)

	dev, err := v4l2.Open(devPath, desc.CapturePixFmt,
		int(desc.CaptureWidth), int(desc.CaptureHeight), int(desc.FPS))
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer dev.Close()
	if err := dev.InitStream(); err != nil {
		log.Fatalf("%v", err)
	}

	runner := ircam.NewRunner(*desc, nil, stop)

	if listenPort != 0 {
		log.Printf("waiting for one remote viewer on port %d", listenPort)
		producer, err := relay.ListenOne(listenPort)
		if err != nil {
			log.Fatalf("%v", err)
		}
		runner.Producer = producer
	}

	if recordOnly || listenPort != 0 {
		if recordOnly {
			if err := runner.ToggleRawRecord(); err != nil {
				log.Fatalf("%v", err)
			}
		}
		if err := runner.RunCapture(dev, devPath); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	surface, err := newSDLSurface(runner, winWidth, winWidth/4*3, false)
	if err != nil {
		log.Fatalf("can't initialize SDL: %v", err)
	}
	defer surface.Close()
	runner.Surface = surface

	if err := runner.RunCapture(dev, devPath); err != nil {
		log.Fatalf("%v", err)
	}
}

func runConsume(addr string, winWidth int, recordOnly bool, stop *atomic.Bool) {
	consumer, err := relay.Dial(addr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer consumer.Close()

	desc, err := consumer.ReadDescriptor()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("remote producer is a %s", desc)

	runner := ircam.NewRunner(*desc, nil, stop)

	if recordOnly {
		if err := runner.ToggleRawRecord(); err != nil {
			log.Fatalf("%v", err)
		}
	} else {
		surface, err := newSDLSurface(runner, winWidth, winWidth/4*3, false)
		if err != nil {
			log.Fatalf("can't initialize SDL: %v", err)
		}
		defer surface.Close()
		runner.Surface = surface
	}

	if err := runner.RunConsume(consumer); err != nil {
		log.Fatalf("%v", err)
	}
}

func runPlayback(path string, winWidth int, stop *atomic.Bool) {
	dec, info, err := codec.StartDecode(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer dec.End()

	// Recordings carry their own geometry; start from the default
	// contract and overlay it.
	desc := descriptors.Default()
	desc.Width = info.Width
	desc.Height = info.Height
	desc.FPS = info.FPS
	desc.FrameSize = info.FrameSize
	desc.ColorSize = uint32(info.Width) * uint32(info.Height) * 4

	runner := ircam.NewRunner(desc, nil, stop)
	surface, err := newSDLSurface(runner, winWidth, winWidth/4*3, true)
	if err != nil {
		log.Fatalf("can't initialize SDL: %v", err)
	}
	defer surface.Close()
	runner.Surface = surface

	if err := runner.RunPlayback(dec); err != nil {
		log.Fatalf("%v", err)
	}
}
