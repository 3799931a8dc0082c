// Package vision runs the live camera pipeline: it feeds frames to the face
// and hand landmark sources, keeps the latest mood and gesture
// classification, and publishes an overlay for every camera frame.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/moodlens/internal/capture"
	"github.com/ayusman/moodlens/internal/detector"
	"github.com/ayusman/moodlens/internal/gesture"
	"github.com/ayusman/moodlens/internal/logger"
	"github.com/ayusman/moodlens/internal/mood"
	"github.com/ayusman/moodlens/internal/overlay"
)

var (
	// ErrCameraUnavailable is returned when the camera cannot be opened,
	// whether access was denied or no device exists.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrDetectorInit is returned when a landmark source fails to initialize.
	ErrDetectorInit = errors.New("detector initialization failed")

	// ErrAlreadyStarted is returned by Start on a running manager.
	ErrAlreadyStarted = errors.New("vision pipeline already started")
)

// SourceFactory creates a landmark source when the pipeline starts.
type SourceFactory func() (detector.Source, error)

// Display receives the rendered overlay for every camera frame. Show must
// copy the frame if it keeps it.
type Display interface {
	Show(frame *gocv.Mat)
}

// Config wires a Manager to its camera, sources and sinks.
type Config struct {
	Camera  capture.Camera
	Face    SourceFactory
	Hand    SourceFactory
	Display Display

	// OnError is called once when Start fails to acquire a resource.
	OnError func(error)
}

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseStopping
	phaseStopped
	phaseFailed
)

// Stats counts frames moving through the pipeline.
type Stats struct {
	Read      uint64 `json:"read"`
	Processed uint64 `json:"processed"`
	Dropped   uint64 `json:"dropped"`
}

// Manager owns the camera and both landmark sources while it runs. It can
// be started again after Stop; each run begins from a neutral state.
//
// A reader goroutine reads frames at the camera cadence, renders the overlay
// from the latest results, and leaves the frame in a one-slot mailbox. A
// worker goroutine takes the newest pending frame and runs it through the
// face source, the mood classifier, the hand source and the gesture
// classifier, in that order. Results are applied only while the run that
// produced them is still live.
type Manager struct {
	cfg   Config
	state *State
	log   *slog.Logger

	mu      sync.Mutex
	phase   phase
	gen     uint64
	err     error
	cancel  context.CancelFunc
	face    detector.Source
	hand    detector.Source
	faceLM  detector.LandmarkSet
	handLM  detector.LandmarkSet
	stopped chan struct{}
	wg      sync.WaitGroup

	slotMu  sync.Mutex
	pending *capture.Frame
	wake    chan struct{}

	read      atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64
}

// NewManager creates an idle manager.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		state:   NewState(),
		log:     logger.With("component", "vision"),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// State returns the classification state written by the pipeline.
func (m *Manager) State() *State {
	return m.state
}

// Running reports whether the loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == phaseRunning
}

// Err returns the acquisition error of the last failed Start, if any.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Stats returns frame counters for the current or last run.
func (m *Manager) Stats() Stats {
	return Stats{
		Read:      m.read.Load(),
		Processed: m.processed.Load(),
		Dropped:   m.dropped.Load(),
	}
}

// Start opens the camera, creates both sources and launches the loop with
// the classification reset to neutral. On failure everything already
// acquired is released, the error is stored and reported through OnError,
// and no loop runs. A failed or stopped manager may be started again; a
// Start racing a Stop waits for the release to finish first. Cancelling ctx
// stops the run as Stop does.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	for m.phase == phaseStopping {
		done := m.stopped
		m.mu.Unlock()
		<-done
		m.mu.Lock()
	}
	if m.phase == phaseRunning {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}

	m.state.reset()
	m.faceLM, m.handLM = nil, nil

	face, hand, err := m.acquire()
	if err != nil {
		m.phase = phaseFailed
		m.err = err
		m.mu.Unlock()

		m.log.Warn("vision start failed", "error", err)
		if m.cfg.OnError != nil {
			m.cfg.OnError(err)
		}
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.phase = phaseRunning
	m.err = nil
	m.gen++
	m.face, m.hand = face, hand
	m.cancel = cancel
	m.stopped = make(chan struct{})
	gen := m.gen
	m.resetStats()
	m.drainWake()

	m.wg.Add(2)
	go m.readLoop(runCtx)
	go m.workLoop(runCtx, gen)
	m.mu.Unlock()

	go func() {
		<-runCtx.Done()
		m.stopRun(gen)
	}()

	m.log.Info("vision pipeline started", "fps", m.cfg.Camera.FPS())
	return nil
}

// acquire opens the camera and both sources, releasing the earlier ones when
// a later one fails.
func (m *Manager) acquire() (face, hand detector.Source, err error) {
	if err := m.cfg.Camera.Open(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}

	face, err = newSource(m.cfg.Face, "face")
	if err != nil {
		m.closeCamera()
		return nil, nil, err
	}

	hand, err = newSource(m.cfg.Hand, "hand")
	if err != nil {
		closeSource(face, "face")
		m.closeCamera()
		return nil, nil, err
	}

	return face, hand, nil
}

func newSource(f SourceFactory, name string) (detector.Source, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no %s source configured", ErrDetectorInit, name)
	}
	src, err := f()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDetectorInit, name, err)
	}
	return src, nil
}

func (m *Manager) resetStats() {
	m.read.Store(0)
	m.processed.Store(0)
	m.dropped.Store(0)
}

func (m *Manager) drainWake() {
	select {
	case <-m.wake:
	default:
	}
}

// Stop ends the current run. The first call cancels the loop, waits for it
// to exit and releases the camera and both sources. Calls made while that
// release is in progress wait for it; calls on an idle or stopped manager
// return at once.
func (m *Manager) Stop() {
	m.stopRun(0)
}

// stopRun stops the run started as generation gen, or whichever run is
// current when gen is 0.
func (m *Manager) stopRun(gen uint64) {
	m.mu.Lock()
	if gen != 0 && gen != m.gen {
		m.mu.Unlock()
		return
	}
	switch m.phase {
	case phaseStopping:
		done := m.stopped
		m.mu.Unlock()
		<-done
		return
	case phaseRunning:
	default:
		m.mu.Unlock()
		return
	}

	m.phase = phaseStopping
	m.gen++
	done := m.stopped
	cancel := m.cancel
	face, hand := m.face, m.hand
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.closeCamera()
	closeSource(face, "face")
	closeSource(hand, "hand")

	if f := m.takePending(); f != nil {
		f.Close()
	}

	m.mu.Lock()
	m.phase = phaseStopped
	close(done)
	m.mu.Unlock()

	m.log.Info("vision pipeline stopped", "frames", m.read.Load(), "processed", m.processed.Load())
}

func (m *Manager) closeCamera() {
	if err := m.cfg.Camera.Close(); err != nil {
		m.log.Warn("camera close failed", "error", err)
	}
}

func closeSource(s detector.Source, name string) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.Warn("source close failed", "source", name, "error", err)
	}
}

// readLoop reads frames at the camera cadence until ctx is cancelled.
func (m *Manager) readLoop(ctx context.Context) {
	defer m.wg.Done()

	fps := m.cfg.Camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var (
		seq     uint64
		failing int
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		mat, err := m.cfg.Camera.ReadFrame()
		if err != nil {
			// Only the first failure of a streak is a warning.
			if failing == 0 {
				m.log.Warn("frame read failed", "error", err)
			} else {
				m.log.Debug("frame read failed", "error", err, "streak", failing+1)
			}
			failing++
			continue
		}
		if failing > 0 {
			m.log.Info("frame reads recovered", "failed", failing)
			failing = 0
		}

		seq++
		m.read.Add(1)
		f := &capture.Frame{
			Mat:       *mat,
			Width:     mat.Cols(),
			Height:    mat.Rows(),
			Seq:       seq,
			Timestamp: time.Now(),
		}

		m.show(f)
		m.offer(f)
	}
}

// show renders the overlay of the latest results onto a copy of f.
func (m *Manager) show(f *capture.Frame) {
	if m.cfg.Display == nil {
		return
	}

	m.mu.Lock()
	scene := overlay.Scene{
		Width:  f.Width,
		Height: f.Height,
		Face:   m.faceLM,
		Hand:   m.handLM,
	}
	m.mu.Unlock()

	snap := m.state.Snapshot()
	scene.Mood = mood.Classification{Mood: snap.Mood, Accurate: snap.Accurate}
	scene.Gesture = snap.Gesture

	out := f.Mat.Clone()
	defer out.Close()
	overlay.Render(overlay.NewMatSurface(&out), scene)
	m.cfg.Display.Show(&out)
}

// offer leaves f in the mailbox, releasing any frame the worker has not
// picked up yet.
func (m *Manager) offer(f *capture.Frame) {
	m.slotMu.Lock()
	old := m.pending
	m.pending = f
	m.slotMu.Unlock()

	if old != nil {
		m.dropped.Add(1)
		old.Close()
	}

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) takePending() *capture.Frame {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()
	f := m.pending
	m.pending = nil
	return f
}

// workLoop processes the newest pending frame, one at a time.
func (m *Manager) workLoop(ctx context.Context, gen uint64) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		}

		f := m.takePending()
		if f == nil {
			continue
		}
		m.process(ctx, gen, f)
		f.Close()
	}
}

// process runs one frame through the face then the hand path. The face
// result is applied before the hand source sees the frame.
func (m *Manager) process(ctx context.Context, gen uint64, f *capture.Frame) {
	m.mu.Lock()
	face, hand := m.face, m.hand
	m.mu.Unlock()

	res, ok := await(ctx, face.Submit(ctx, &f.Mat))
	if !ok || !m.applyFace(gen, f.Seq, res) {
		return
	}

	res, ok = await(ctx, hand.Submit(ctx, &f.Mat))
	if !ok || !m.applyHand(gen, f.Seq, res) {
		return
	}

	m.processed.Add(1)
}

// await waits for a result or for the run to end.
func await(ctx context.Context, ch <-chan detector.Result) (detector.Result, bool) {
	select {
	case <-ctx.Done():
		return detector.Result{}, false
	case r := <-ch:
		return r, true
	}
}

// applyFace classifies a face result into the state. It reports false when
// the run that submitted the frame has ended.
func (m *Manager) applyFace(gen, seq uint64, res detector.Result) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != phaseRunning || m.gen != gen {
		m.log.Debug("dropping late face result", "seq", seq)
		return false
	}
	if res.Err != nil {
		m.log.Warn("face detection failed", "seq", seq, "error", res.Err)
		return true
	}
	if len(res.Landmarks) == 0 {
		m.faceLM = nil
		return true
	}

	m.faceLM = res.Landmarks[0]
	if c, ok := mood.Classify(m.faceLM); ok {
		m.state.setMood(c)
	}
	return true
}

// applyHand classifies a hand result into the state.
func (m *Manager) applyHand(gen, seq uint64, res detector.Result) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != phaseRunning || m.gen != gen {
		m.log.Debug("dropping late hand result", "seq", seq)
		return false
	}
	if res.Err != nil {
		m.log.Warn("hand detection failed", "seq", seq, "error", res.Err)
		return true
	}
	if len(res.Landmarks) == 0 {
		m.handLM = nil
		return true
	}

	m.handLM = res.Landmarks[0]
	if g, ok := gesture.Classify(m.handLM); ok {
		m.state.setGesture(g)
	}
	return true
}
