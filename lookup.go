//go:build linux && (amd64 || arm64)

package ircam

import (
	"errors"
	"fmt"

	"github.com/kevmo314/go-ircam/pkg/descriptors"
	"github.com/kevmo314/go-ircam/pkg/v4l2"
)

// ErrNoMatch reports that no supported camera was found.
var ErrNoMatch = errors.New("ircam: no compatible camera found")

// maxProbePaths bounds the default device scan so a machine with a
// runaway video device count can't stall startup.
const maxProbePaths = 64

// Lookup probes the device at path against every supported descriptor
// and returns the matching contract, or ErrNoMatch.
func Lookup(path string) (*descriptors.CameraDescriptor, error) {
	for _, desc := range descriptors.All() {
		ok, err := v4l2.MatchesDescriptor(path, &desc)
		if err != nil {
			return nil, err
		}
		if ok {
			return &desc, nil
		}
	}
	return nil, ErrNoMatch
}

// FindCamera probes the default /dev/videoN candidates in order and
// returns the first device that matches a supported descriptor.
// Exhausting the set without a match is ErrNoMatch, which callers
// treat as fatal: there is no compatible sensor attached.
func FindCamera() (string, *descriptors.CameraDescriptor, error) {
	for i := 0; i < maxProbePaths; i++ {
		path := fmt.Sprintf("/dev/video%d", i)
		desc, err := Lookup(path)
		if err == ErrNoMatch {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return path, desc, nil
	}
	return "", nil, ErrNoMatch
}
