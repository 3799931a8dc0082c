package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/moodlens/internal/detector"
)

func handWithTips(thumbY, indexY float64) detector.LandmarkSet {
	lm := make(detector.LandmarkSet, detector.NumLandmarks)
	lm[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: thumbY}
	lm[detector.IndexTip] = detector.Point3D{X: 0.5, Y: indexY}
	return lm
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		lm     detector.LandmarkSet
		want   Gesture
		wantOK bool
	}{
		{name: "thumb above index", lm: handWithTips(0.3, 0.5), want: ThumbsUp, wantOK: true},
		{name: "thumb below index", lm: handWithTips(0.6, 0.4), want: None, wantOK: true},
		{name: "level tips", lm: handWithTips(0.4, 0.4), want: None, wantOK: true},
		{name: "thumbs up fixture", lm: detector.ThumbsUpLandmarks(), want: ThumbsUp, wantOK: true},
		{name: "open palm fixture", lm: detector.OpenPalmLandmarks(), want: None, wantOK: true},
		{name: "missing index tip", lm: make(detector.LandmarkSet, detector.IndexTip), want: None, wantOK: false},
		{name: "empty set", lm: nil, want: None, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.lm)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGesture_Label(t *testing.T) {
	assert.Equal(t, "thumbs_up", ThumbsUp.Label())
	assert.Equal(t, "None", None.Label())
	assert.Equal(t, "None", Gesture("").Label())
}
