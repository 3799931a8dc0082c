package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	sets   []LandmarkSet
	err    error
	calls  int
	closed int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmark sets that will be returned by Detect.
func (m *MockDetector) SetLandmarks(sets ...LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = sets
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured landmark sets or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]LandmarkSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.sets, nil
}

// Close records the call and returns nil.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed returns how many times Close ran.
func (m *MockDetector) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ThumbsUpLandmarks returns a preset hand with the thumb extended upward
// while the other fingers are curled.
func ThumbsUpLandmarks() LandmarkSet {
	lm := make(LandmarkSet, NumLandmarks)

	lm[Wrist] = Point3D{X: 0.5, Y: 0.8}

	// Thumb extended upward (Y decreases going up)
	lm[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	lm[ThumbMCP] = Point3D{X: 0.58, Y: 0.65}
	lm[ThumbIP] = Point3D{X: 0.58, Y: 0.50}
	lm[ThumbTip] = Point3D{X: 0.58, Y: 0.35}

	// Index finger curled
	lm[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	lm[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	lm[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	lm[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	lm[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	lm[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	lm[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	lm[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	lm[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	lm[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	lm[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	lm[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	lm[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	lm[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	lm[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	lm[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return lm
}

// OpenPalmLandmarks returns a preset hand with all fingers extended upward.
// The index tip sits above the thumb tip, so it does not read as thumbs up.
func OpenPalmLandmarks() LandmarkSet {
	lm := make(LandmarkSet, NumLandmarks)

	lm[Wrist] = Point3D{X: 0.5, Y: 0.8}

	lm[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	lm[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	lm[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	lm[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	lm[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	lm[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	lm[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	lm[RingTip] = Point3D{X: 0.42, Y: 0.35}

	lm[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	lm[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	lm[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return lm
}

// FacePoints places the eight face points the mood classifier reads. Every
// other index of the generated mesh sits at the eye midpoint.
type FacePoints struct {
	EyeLeft, EyeRight     Point3D
	BrowLeft, BrowRight   Point3D
	MouthLeft, MouthRight Point3D
	LipTop, LipBottom     Point3D
}

// FaceLandmarks builds a full-size face mesh from p.
func FaceLandmarks(p FacePoints) LandmarkSet {
	lm := make(LandmarkSet, NumFaceLandmarks)
	mid := Point3D{
		X: (p.EyeLeft.X + p.EyeRight.X) / 2,
		Y: (p.EyeLeft.Y + p.EyeRight.Y) / 2,
	}
	for i := range lm {
		lm[i] = mid
	}

	lm[EyeLeftOuter] = p.EyeLeft
	lm[EyeRightOuter] = p.EyeRight
	lm[BrowLeft] = p.BrowLeft
	lm[BrowRight] = p.BrowRight
	lm[MouthLeft] = p.MouthLeft
	lm[MouthRight] = p.MouthRight
	lm[LipTop] = p.LipTop
	lm[LipBottom] = p.LipBottom

	return lm
}

// NeutralFace returns a relaxed face: narrow closed mouth with level corners
// and resting brows. Eye distance is 0.2.
func NeutralFace() LandmarkSet {
	return FaceLandmarks(FacePoints{
		EyeLeft:    Point3D{X: 0.40, Y: 0.40},
		EyeRight:   Point3D{X: 0.60, Y: 0.40},
		BrowLeft:   Point3D{X: 0.40, Y: 0.39},
		BrowRight:  Point3D{X: 0.60, Y: 0.39},
		MouthLeft:  Point3D{X: 0.45, Y: 0.60},
		MouthRight: Point3D{X: 0.55, Y: 0.60},
		LipTop:     Point3D{X: 0.50, Y: 0.60},
		LipBottom:  Point3D{X: 0.50, Y: 0.61},
	})
}

// SmilingFace returns a face whose mouth spans 0.7 of the eye distance.
func SmilingFace() LandmarkSet {
	return FaceLandmarks(FacePoints{
		EyeLeft:    Point3D{X: 0.40, Y: 0.40},
		EyeRight:   Point3D{X: 0.60, Y: 0.40},
		BrowLeft:   Point3D{X: 0.40, Y: 0.39},
		BrowRight:  Point3D{X: 0.60, Y: 0.39},
		MouthLeft:  Point3D{X: 0.43, Y: 0.58},
		MouthRight: Point3D{X: 0.57, Y: 0.58},
		LipTop:     Point3D{X: 0.50, Y: 0.60},
		LipBottom:  Point3D{X: 0.50, Y: 0.61},
	})
}

// SadFace returns a face with both mouth corners below the top lip.
func SadFace() LandmarkSet {
	return FaceLandmarks(FacePoints{
		EyeLeft:    Point3D{X: 0.40, Y: 0.40},
		EyeRight:   Point3D{X: 0.60, Y: 0.40},
		BrowLeft:   Point3D{X: 0.40, Y: 0.39},
		BrowRight:  Point3D{X: 0.60, Y: 0.39},
		MouthLeft:  Point3D{X: 0.45, Y: 0.62},
		MouthRight: Point3D{X: 0.55, Y: 0.62},
		LipTop:     Point3D{X: 0.50, Y: 0.60},
		LipBottom:  Point3D{X: 0.50, Y: 0.61},
	})
}
