package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrames is returned by MockCamera when it has nothing (left) to play.
var ErrNoFrames = errors.New("mock camera: no frames")

// MockCamera stands in for a webcam in tests. It hands out copies of a fixed
// frame list and records how it was opened and released.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	next   int
	loop   bool
	open   bool

	openErr error
	opens   int
	closes  int
}

// NewMockCamera plays frames in order, wrapping to the first frame when
// loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

// SetOpenError makes Open fail with err, as a denied or missing device would.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// Open rewinds playback.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openErr != nil {
		return c.openErr
	}
	c.opens++
	c.open = true
	c.next = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		c.closes++
		c.open = false
	}
	return nil
}

// ReadFrame returns a clone of the next frame; the caller owns it.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.open:
		return nil, ErrCameraNotOpen
	case len(c.frames) == 0:
		return nil, ErrNoFrames
	case c.next == len(c.frames) && !c.loop:
		return nil, ErrNoFrames
	case c.next == len(c.frames):
		c.next = 0
	}

	mat := c.frames[c.next].Clone()
	c.next++
	return &mat, nil
}

func (c *MockCamera) SetFPS(int) {}

func (c *MockCamera) FPS() int { return DefaultFPS }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Opens counts successful Open calls.
func (c *MockCamera) Opens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

// Closes counts releases of an open camera.
func (c *MockCamera) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}
