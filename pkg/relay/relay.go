// Package relay moves raw thermal frames over a stream socket. A
// session is one producer and one consumer: the producer sends the
// camera descriptor once, then fixed-size frame payloads back to back
// with no per-frame framing — the payload size is known from the
// handshake, so none is needed.
package relay

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/kevmo314/go-ircam/pkg/descriptors"
)

// ErrSessionEnded reports that the peer has gone away at a frame
// boundary. It is a normal end of session, not a failure.
var ErrSessionEnded = errors.New("relay: session ended")

// A Producer sends descriptor and frames to a single consumer.
type Producer struct {
	conn net.Conn
}

// ListenOne listens on port, accepts exactly one consumer connection,
// and closes the listening socket immediately afterward.
func ListenOne(port int) (*Producer, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("can't listen on port %d: %w", port, err)
	}
	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		return nil, fmt.Errorf("accept failed: %w", err)
	}
	return &Producer{conn: conn}, nil
}

// SendDescriptor sends the handshake record. It must be called exactly
// once, before the first frame.
func (p *Producer) SendDescriptor(desc *descriptors.CameraDescriptor) error {
	buf, err := desc.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := p.conn.Write(buf); err != nil {
		return ErrSessionEnded
	}
	return nil
}

// SendFrame writes one raw frame payload. A write failure means the
// consumer is gone and ends the session; the producer itself keeps
// running (it may still be recording locally).
func (p *Producer) SendFrame(data []byte) error {
	if _, err := p.conn.Write(data); err != nil {
		return ErrSessionEnded
	}
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Close()
}

// A Consumer receives the descriptor and then frames from a producer.
type Consumer struct {
	conn      net.Conn
	frameSize int
}

// Dial connects to a producer at addr (host:port).
func Dial(addr string) (*Consumer, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("can't connect to %s: %w", addr, err)
	}
	return &Consumer{conn: conn}, nil
}

// NewConsumer wraps an already-connected stream.
func NewConsumer(conn net.Conn) *Consumer {
	return &Consumer{conn: conn}
}

// ReadDescriptor reads the handshake record. A short read here is
// fatal to the session: without the descriptor the frame size is
// unknown and no further byte can be interpreted.
func (c *Consumer) ReadDescriptor() (*descriptors.CameraDescriptor, error) {
	buf := make([]byte, descriptors.WireSize)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, fmt.Errorf("short descriptor handshake: %w", err)
	}
	desc := &descriptors.CameraDescriptor{}
	if err := desc.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	c.frameSize = int(desc.FrameSize)
	return desc, nil
}

// ReadFrame accumulates exactly one frame payload into buf, looping
// over however many partial reads the transport delivers. EOF at a
// frame boundary is a clean ErrSessionEnded; EOF mid-frame is a
// protocol error.
func (c *Consumer) ReadFrame(buf []byte) error {
	if c.frameSize == 0 {
		return errors.New("relay: ReadFrame before descriptor handshake")
	}
	if len(buf) < c.frameSize {
		return io.ErrShortBuffer
	}
	_, err := io.ReadFull(c.conn, buf[:c.frameSize])
	if err == io.EOF {
		return ErrSessionEnded
	}
	if err != nil {
		return fmt.Errorf("truncated frame payload: %w", err)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.conn.Close()
}
