// Package detector provides landmark detection contracts and types for mood and gesture recognition.
package detector

// Face landmark indices following the MediaPipe face mesh topology.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	MouthLeft     = 61
	MouthRight    = 291
	LipTop        = 13
	LipBottom     = 14
	EyeLeftOuter  = 33
	EyeRightOuter = 263
	BrowLeft      = 105
	BrowRight     = 334

	// NumFaceLandmarks is the size of a full face mesh without iris refinement.
	NumFaceLandmarks = 468
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to [0,1] relative
// to the frame size; Z is the detector's relative depth and may be zero.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LandmarkSet is an ordered sequence of points whose index carries anatomical
// meaning. Sets are passed through exactly as the detector produced them.
type LandmarkSet []Point3D

// Has reports whether every given index is present in the set.
func (s LandmarkSet) Has(indices ...int) bool {
	for _, i := range indices {
		if i < 0 || i >= len(s) {
			return false
		}
	}
	return true
}

// Kind identifies the detector modality.
type Kind string

const (
	KindFace Kind = "face_mesh"
	KindHand Kind = "hands"
)
