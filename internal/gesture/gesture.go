// Package gesture classifies hand poses from hand landmarks.
package gesture

import "github.com/ayusman/moodlens/internal/detector"

// Gesture is a discrete hand pose label.
type Gesture string

const (
	ThumbsUp Gesture = "thumbs_up"
	None     Gesture = "none"
)

// Classify returns ThumbsUp when the thumb tip is above the index fingertip
// in image coordinates, None otherwise. ok is false when either tip is
// missing from the set.
func Classify(lm detector.LandmarkSet) (g Gesture, ok bool) {
	if !lm.Has(detector.ThumbTip, detector.IndexTip) {
		return None, false
	}
	if lm[detector.ThumbTip].Y < lm[detector.IndexTip].Y {
		return ThumbsUp, true
	}
	return None, true
}

// Label is the human-readable form used in status lines.
func (g Gesture) Label() string {
	if g == "" || g == None {
		return "None"
	}
	return string(g)
}
