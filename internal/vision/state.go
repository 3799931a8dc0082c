package vision

import (
	"sync"

	"github.com/ayusman/moodlens/internal/gesture"
	"github.com/ayusman/moodlens/internal/mood"
)

// Snapshot is a read-only copy of the classification state.
type Snapshot struct {
	Mood     mood.Mood       `json:"mood"`
	Accurate bool            `json:"accurate"`
	Gesture  gesture.Gesture `json:"gesture"`
}

// State holds the latest mood and gesture classification. The face path is
// the only writer of the mood fields and the hand path the only writer of
// the gesture; readers always see a consistent snapshot.
type State struct {
	mu      sync.RWMutex
	mood    mood.Classification
	gesture gesture.Gesture
}

// NewState returns a state initialized to neutral, inaccurate and no gesture.
func NewState() *State {
	return &State{
		mood:    mood.Classification{Mood: mood.Neutral},
		gesture: gesture.None,
	}
}

// reset returns the state to its initial values for a new run.
func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mood = mood.Classification{Mood: mood.Neutral}
	s.gesture = gesture.None
}

func (s *State) setMood(c mood.Classification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mood = c
}

func (s *State) setGesture(g gesture.Gesture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture = g
}

// Snapshot returns the current values.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Mood:     s.mood.Mood,
		Accurate: s.mood.Accurate,
		Gesture:  s.gesture,
	}
}

// Classification returns the mood half of the state.
func (s *State) Classification() mood.Classification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mood
}
