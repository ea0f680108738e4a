package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

func (f Facing) Opposite() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// Device acquires live video input.
type Device interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Stream is a live video input. Close releases it.
type Stream interface {
	Frame() (image.Image, error)
	Close() error
}

// Camera holds at most one live stream from its device.
type Camera struct {
	device Device
	logger logrus.FieldLogger

	mu     sync.Mutex
	stream Stream
	facing Facing
}

func NewCamera(device Device, logger logrus.FieldLogger) *Camera {
	return &Camera{
		device: device,
		logger: logger,
		facing: FacingEnvironment,
	}
}

// Open releases any held stream and acquires a new one with the given facing.
// On failure no stream is held.
func (c *Camera) Open(ctx context.Context, facing Facing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open(ctx, facing)
}

// Capture reads one frame, closes the stream and returns the frame in the
// fixed upload format.
func (c *Camera) Capture() (*Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return nil, fmt.Errorf("%w: camera is not open", types.ErrCaptureUnavailable)
	}

	frame, err := c.stream.Frame()
	c.closeStream()
	if err != nil {
		return nil, fmt.Errorf("%w: read frame: %w", types.ErrCaptureUnavailable, err)
	}

	return Encode(frame)
}

// SwitchFacing reopens the camera facing the other way.
func (c *Camera) SwitchFacing(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open(ctx, c.facing.Opposite())
}

// Close releases the stream, if any.
func (c *Camera) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeStream()
}

func (c *Camera) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.facing
}

func (c *Camera) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stream != nil
}

func (c *Camera) open(ctx context.Context, facing Facing) error {
	c.closeStream()

	stream, err := c.device.Open(ctx, facing)
	if err != nil {
		c.logger.WithError(err).WithField("facing", facing).Warn("could not access camera")
		return fmt.Errorf("%w: %w", types.ErrCaptureUnavailable, err)
	}

	c.stream = stream
	c.facing = facing
	return nil
}

func (c *Camera) closeStream() {
	if c.stream == nil {
		return
	}

	if err := c.stream.Close(); err != nil {
		c.logger.WithError(err).Warn("failed to close camera stream")
	}
	c.stream = nil
}
