// Package mood classifies facial expressions from face mesh landmarks.
package mood

import (
	"math"

	"github.com/ayusman/moodlens/internal/detector"
)

// Mood is a discrete facial expression label.
type Mood string

const (
	Happy     Mood = "happy"
	Sad       Mood = "sad"
	Angry     Mood = "angry"
	Surprised Mood = "surprised"
	Neutral   Mood = "neutral"
)

// Primary thresholds, checked in cascade order.
const (
	HappyThreshold     = 0.6
	SurprisedThreshold = 0.25
	AngryThreshold     = 0.10
)

// Secondary bounds. A mood whose signal falls below its bound is reported
// with Accurate set to false.
const (
	HappyMinimum     = 0.55
	SurprisedMinimum = 0.2
	AngryMinimum     = 0.08
)

// RequiredIndices are the face landmarks Classify reads.
var RequiredIndices = []int{
	detector.MouthLeft, detector.MouthRight,
	detector.LipTop, detector.LipBottom,
	detector.EyeLeftOuter, detector.EyeRightOuter,
	detector.BrowLeft, detector.BrowRight,
}

// Classification is a mood label plus its accuracy flag.
type Classification struct {
	Mood     Mood `json:"mood"`
	Accurate bool `json:"accurate"`
}

// Ratios are the geometric signals, all normalized by the eye distance.
type Ratios struct {
	FaceWidth        float64
	MouthWidth       float64
	MouthOpen        float64
	EyebrowRaise     float64
	MouthCornersDown bool
}

// Measure computes the classifier signals. The caller guarantees the
// required indices are present.
func Measure(lm detector.LandmarkSet) Ratios {
	leftMouth := lm[detector.MouthLeft]
	rightMouth := lm[detector.MouthRight]
	topLip := lm[detector.LipTop]
	bottomLip := lm[detector.LipBottom]
	leftEye := lm[detector.EyeLeftOuter]
	rightEye := lm[detector.EyeRightOuter]
	leftBrow := lm[detector.BrowLeft]
	rightBrow := lm[detector.BrowRight]

	faceWidth := math.Abs(rightEye.X - leftEye.X)
	if faceWidth == 0 {
		faceWidth = 1
	}

	return Ratios{
		FaceWidth:        faceWidth,
		MouthWidth:       math.Abs(rightMouth.X-leftMouth.X) / faceWidth,
		MouthOpen:        math.Abs(bottomLip.Y-topLip.Y) / faceWidth,
		EyebrowRaise:     ((leftEye.Y - leftBrow.Y) + (rightEye.Y - rightBrow.Y)) / 2 / faceWidth,
		MouthCornersDown: leftMouth.Y > topLip.Y && rightMouth.Y > topLip.Y,
	}
}

// Classify returns the mood for a face. ok is false when a required index is
// missing, in which case the face must not be classified.
func Classify(lm detector.LandmarkSet) (c Classification, ok bool) {
	if !lm.Has(RequiredIndices...) {
		return Classification{}, false
	}
	return FromRatios(Measure(lm)), true
}

// FromRatios applies the ordered cascade and then the secondary bounds.
// The first matching rule wins; nothing matched is neutral and inaccurate.
func FromRatios(r Ratios) Classification {
	c := Classification{Mood: Neutral, Accurate: true}

	switch {
	case r.MouthWidth > HappyThreshold:
		c.Mood = Happy
	case r.MouthOpen > SurprisedThreshold:
		c.Mood = Surprised
	case r.EyebrowRaise > AngryThreshold:
		c.Mood = Angry
	case r.MouthCornersDown:
		c.Mood = Sad
	default:
		c.Accurate = false
	}

	switch c.Mood {
	case Happy:
		if r.MouthWidth < HappyMinimum {
			c.Accurate = false
		}
	case Surprised:
		if r.MouthOpen < SurprisedMinimum {
			c.Accurate = false
		}
	case Angry:
		if r.EyebrowRaise < AngryMinimum {
			c.Accurate = false
		}
	case Sad:
		if !r.MouthCornersDown {
			c.Accurate = false
		}
	}

	return c
}
