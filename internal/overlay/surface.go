package overlay

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// MatSurface draws onto an OpenCV image.
type MatSurface struct {
	mat *gocv.Mat
}

// NewMatSurface returns a surface drawing directly into mat.
func NewMatSurface(mat *gocv.Mat) *MatSurface {
	return &MatSurface{mat: mat}
}

func (m *MatSurface) bounds() image.Rectangle {
	return image.Rect(0, 0, m.mat.Cols(), m.mat.Rows())
}

// FillRect blends c over the rectangle with the given opacity.
func (m *MatSurface) FillRect(r image.Rectangle, c color.RGBA, alpha float64) {
	r = r.Intersect(m.bounds())
	if r.Empty() {
		return
	}

	roi := m.mat.Region(r)
	defer roi.Close()

	// Scalars are in the Mat's BGR channel order.
	fill := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		r.Dy(), r.Dx(), m.mat.Type(),
	)
	defer fill.Close()

	gocv.AddWeighted(fill, alpha, roi, 1-alpha, 0, &roi)
}

func (m *MatSurface) StrokeRect(r image.Rectangle, c color.RGBA, thickness int) {
	gocv.Rectangle(m.mat, r, c, thickness)
}

func (m *MatSurface) Line(from, to image.Point, c color.RGBA, thickness int) {
	gocv.Line(m.mat, from, to, c, thickness)
}

func (m *MatSurface) Text(s string, at image.Point, c color.RGBA) {
	gocv.PutText(m.mat, s, at, gocv.FontHersheySimplex, 0.5, c, 1)
}

// Op names a recorded draw call.
type Op string

const (
	OpFill   Op = "fill"
	OpStroke Op = "stroke"
	OpLine   Op = "line"
	OpText   Op = "text"
)

// Command is one recorded draw call.
type Command struct {
	Op        Op
	Rect      image.Rectangle
	From, To  image.Point
	Color     color.RGBA
	Alpha     float64
	Thickness int
	Text      string
}

// Recorder is a Surface that keeps the draw calls instead of drawing.
type Recorder struct {
	Commands []Command
}

func (r *Recorder) FillRect(rect image.Rectangle, c color.RGBA, alpha float64) {
	r.Commands = append(r.Commands, Command{Op: OpFill, Rect: rect, Color: c, Alpha: alpha})
}

func (r *Recorder) StrokeRect(rect image.Rectangle, c color.RGBA, thickness int) {
	r.Commands = append(r.Commands, Command{Op: OpStroke, Rect: rect, Color: c, Thickness: thickness})
}

func (r *Recorder) Line(from, to image.Point, c color.RGBA, thickness int) {
	r.Commands = append(r.Commands, Command{Op: OpLine, From: from, To: to, Color: c, Thickness: thickness})
}

func (r *Recorder) Text(s string, at image.Point, c color.RGBA) {
	r.Commands = append(r.Commands, Command{Op: OpText, From: at, Color: c, Text: s})
}

// Filter returns the recorded commands with the given op.
func (r *Recorder) Filter(op Op) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Latest holds the most recently rendered frame for display sinks such as
// the MJPEG stream and the preview window.
type Latest struct {
	mu    sync.Mutex
	frame gocv.Mat
	seq   uint64
	ok    bool
}

// NewLatest returns an empty holder.
func NewLatest() *Latest {
	return &Latest{}
}

// Show stores a copy of frame, replacing the previous one.
func (l *Latest) Show(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	c := frame.Clone()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ok {
		l.frame.Close()
	}
	l.frame = c
	l.seq++
	l.ok = true
}

// Seq counts the frames shown so far.
func (l *Latest) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Clone returns a copy of the latest frame. The caller closes it.
func (l *Latest) Clone() (gocv.Mat, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ok {
		return gocv.Mat{}, false
	}
	return l.frame.Clone(), true
}

// JPEG encodes the latest frame.
func (l *Latest) JPEG() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ok {
		return nil, false
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, l.frame)
	if err != nil {
		return nil, false
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, true
}

// Close releases the held frame.
func (l *Latest) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ok {
		l.frame.Close()
		l.ok = false
	}
}
