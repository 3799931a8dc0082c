// Package overlay draws the per-frame mood and gesture overlay.
//
// Render is a pure function of the scene: it reads the frame size, the
// landmark sets and a classification snapshot, and issues draw calls on a
// Surface. It keeps no state between frames.
package overlay

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/moodlens/internal/detector"
	"github.com/ayusman/moodlens/internal/gesture"
	"github.com/ayusman/moodlens/internal/mood"
)

// Drawing constants.
const (
	FillAlpha       = 0.2
	BorderThickness = 3
	SkeletonWidth   = 1
)

var (
	Yellow = color.RGBA{R: 255, G: 255, A: 255}
	Blue   = color.RGBA{B: 255, A: 255}
	Orange = color.RGBA{R: 255, G: 165, A: 255}
	Purple = color.RGBA{R: 128, B: 128, A: 255}
	Gray   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	Green  = color.RGBA{G: 128, A: 255}
	Red    = color.RGBA{R: 255, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	FaceSkeleton = color.RGBA{G: 255, A: 255}
	HandSkeleton = color.RGBA{R: 255, A: 255}
)

// MoodColor maps a mood to its box fill color. Unknown moods are gray.
func MoodColor(m mood.Mood) color.RGBA {
	switch m {
	case mood.Happy:
		return Yellow
	case mood.Sad:
		return Blue
	case mood.Angry:
		return Orange
	case mood.Surprised:
		return Purple
	default:
		return Gray
	}
}

// Surface is a display target for draw calls. Rectangles and points are in
// pixel coordinates of the frame.
type Surface interface {
	FillRect(r image.Rectangle, c color.RGBA, alpha float64)
	StrokeRect(r image.Rectangle, c color.RGBA, thickness int)
	Line(from, to image.Point, c color.RGBA, thickness int)
	Text(s string, at image.Point, c color.RGBA)
}

// Scene is everything one overlay frame depends on.
type Scene struct {
	Width   int
	Height  int
	Face    detector.LandmarkSet
	Hand    detector.LandmarkSet
	Mood    mood.Classification
	Gesture gesture.Gesture
}

// Box is an axis-aligned box in pixel coordinates.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Rect rounds the box to integer pixels.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(b.MinX)), int(math.Round(b.MinY)),
		int(math.Round(b.MaxX)), int(math.Round(b.MaxY)),
	)
}

// BoundingBox returns the extent of all points scaled to a width x height
// frame. ok is false for an empty set.
func BoundingBox(lm detector.LandmarkSet, width, height int) (b Box, ok bool) {
	if len(lm) == 0 {
		return Box{}, false
	}

	xs := make([]float64, len(lm))
	ys := make([]float64, len(lm))
	for i, p := range lm {
		xs[i] = p.X
		ys[i] = p.Y
	}

	w, h := float64(width), float64(height)
	return Box{
		MinX: floats.Min(xs) * w,
		MinY: floats.Min(ys) * h,
		MaxX: floats.Max(xs) * w,
		MaxY: floats.Max(ys) * h,
	}, true
}

// Render draws the scene onto s: the face skeleton, the mood box with its
// accuracy border, the hand skeleton and the status line.
func Render(s Surface, sc Scene) {
	if len(sc.Face) > 0 {
		drawSkeleton(s, sc.Face, FaceConnections, FaceSkeleton, sc.Width, sc.Height)

		if box, ok := BoundingBox(sc.Face, sc.Width, sc.Height); ok {
			r := box.Rect()
			s.FillRect(r, MoodColor(sc.Mood.Mood), FillAlpha)

			border := Red
			if sc.Mood.Accurate {
				border = Green
			}
			s.StrokeRect(r, border, BorderThickness)
		}
	}

	if len(sc.Hand) > 0 {
		drawSkeleton(s, sc.Hand, HandConnections, HandSkeleton, sc.Width, sc.Height)
	}

	s.Text(StatusLine(sc.Mood.Mood, sc.Gesture), image.Pt(8, 20), White)
}

// StatusLine is the "Mood: X | Gesture: Y" label.
func StatusLine(m mood.Mood, g gesture.Gesture) string {
	if m == "" {
		m = mood.Neutral
	}
	return "Mood: " + string(m) + " | Gesture: " + g.Label()
}

func drawSkeleton(s Surface, lm detector.LandmarkSet, conns [][2]int, c color.RGBA, width, height int) {
	for _, conn := range conns {
		if !lm.Has(conn[0], conn[1]) {
			continue
		}
		s.Line(toPixel(lm[conn[0]], width, height), toPixel(lm[conn[1]], width, height), c, SkeletonWidth)
	}
}

func toPixel(p detector.Point3D, width, height int) image.Point {
	return image.Pt(int(math.Round(p.X*float64(width))), int(math.Round(p.Y*float64(height))))
}
