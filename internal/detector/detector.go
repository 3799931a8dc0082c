package detector

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Detector defines the interface for synchronous landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected landmark sets.
	// Returns an empty slice if nothing is detected.
	Detect(frame *gocv.Mat) ([]LandmarkSet, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Result is the outcome of one submitted frame.
type Result struct {
	Landmarks []LandmarkSet
	Err       error
}

// Source is the asynchronous request/response side of a detector: a frame is
// submitted and the result is delivered later on the returned channel. The
// channel receives exactly one Result and is buffered so a caller that stops
// listening never blocks the producer.
type Source interface {
	Submit(ctx context.Context, frame *gocv.Mat) <-chan Result
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// Kind selects the model (face mesh or hands).
	Kind Kind

	// MaxResults is the maximum number of faces or hands to detect (default: 1).
	MaxResults int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the mediapipe service lookup.
	ScriptPath string

	// PythonPath overrides the interpreter lookup.
	PythonPath string
}

// DefaultConfig returns a Config with sensible default values for the given kind.
func DefaultConfig(kind Kind) Config {
	return Config{
		Kind:            kind,
		MaxResults:      1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// Async adapts a synchronous Detector to a Source. Each Submit runs the
// detection on its own goroutine; callers keep at most one submission in
// flight per Async.
type Async struct {
	det       Detector
	closeOnce sync.Once
	closeErr  error
}

// NewAsync wraps d so it can be driven through the Source contract.
func NewAsync(d Detector) *Async {
	return &Async{det: d}
}

// Submit starts detection on frame and returns the channel carrying its result.
// A detector panic is reported as an error result.
func (a *Async) Submit(ctx context.Context, frame *gocv.Mat) <-chan Result {
	out := make(chan Result, 1)

	if err := ctx.Err(); err != nil {
		out <- Result{Err: err}
		return out
	}

	// The detection owns a private copy so the caller may release its frame
	// while a slow inference is still running.
	var own *gocv.Mat
	if frame != nil {
		c := frame.Clone()
		own = &c
	}

	go func() {
		defer func() {
			if own != nil {
				own.Close()
			}
		}()
		defer func() {
			if r := recover(); r != nil {
				out <- Result{Err: fmt.Errorf("detector panic: %v", r)}
			}
		}()

		sets, err := a.det.Detect(own)
		out <- Result{Landmarks: sets, Err: err}
	}()

	return out
}

// Close closes the wrapped detector once.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		a.closeErr = a.det.Close()
	})
	return a.closeErr
}
