package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/moodlens/internal/gesture"
	"github.com/ayusman/moodlens/internal/mood"
	"github.com/ayusman/moodlens/internal/store"
	"github.com/ayusman/moodlens/internal/vision"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fakePipeline struct {
	startErr error
	running  bool
	err      error
	started  int
}

func (p *fakePipeline) Start(ctx context.Context) error {
	p.started++
	if p.startErr != nil {
		p.err = p.startErr
		return p.startErr
	}
	p.running = true
	return nil
}

func (p *fakePipeline) Running() bool       { return p.running }
func (p *fakePipeline) Err() error          { return p.err }
func (p *fakePipeline) Stats() vision.Stats { return vision.Stats{Read: 10, Processed: 4, Dropped: 6} }

type fakeController struct {
	snap  vision.Snapshot
	exits int
}

func (c *fakeController) Snapshot() vision.Snapshot { return c.snap }

func (c *fakeController) Capture() (vision.CaptureEvent, bool) {
	if c.snap.Mood == mood.Neutral {
		return vision.CaptureEvent{}, false
	}
	return vision.CaptureEvent{Mood: c.snap.Mood, Gesture: c.snap.Gesture, Message: vision.CaptureMessage(c.snap.Mood)}, true
}

func (c *fakeController) Exit() { c.exits++ }

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestVisionHandler_Start(t *testing.T) {
	tests := []struct {
		name       string
		startErr   error
		wantStatus int
		wantError  string
	}{
		{name: "started", wantStatus: http.StatusOK},
		{name: "already started", startErr: vision.ErrAlreadyStarted, wantStatus: http.StatusConflict, wantError: "vision pipeline already started"},
		{name: "camera unavailable", startErr: fmt.Errorf("%w: permission denied", vision.ErrCameraUnavailable), wantStatus: http.StatusServiceUnavailable, wantError: "camera unavailable: permission denied"},
		{name: "detector init", startErr: fmt.Errorf("%w: hand", vision.ErrDetectorInit), wantStatus: http.StatusServiceUnavailable, wantError: "detector initialization failed: hand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{startErr: tt.startErr}
			h := NewVisionHandler(context.Background(), p, &fakeController{snap: vision.NewState().Snapshot()})

			rec := serve(h, http.MethodPost, "/api/vision/start")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 1, p.started)
			if tt.wantError != "" {
				var body errorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}
}

func TestVisionHandler_State(t *testing.T) {
	p := &fakePipeline{running: true}
	c := &fakeController{snap: vision.Snapshot{Mood: mood.Happy, Accurate: true, Gesture: gesture.ThumbsUp}}
	h := NewVisionHandler(context.Background(), p, c)

	rec := serve(h, http.MethodGet, "/api/vision/state")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"mood": "happy",
		"accurate": true,
		"gesture": "thumbs_up",
		"running": true,
		"frames": {"read": 10, "processed": 4, "dropped": 6}
	}`, rec.Body.String())
}

func TestVisionHandler_StateAfterFailure(t *testing.T) {
	p := &fakePipeline{err: errors.New("camera unavailable: no device")}
	h := NewVisionHandler(context.Background(), p, &fakeController{snap: vision.NewState().Snapshot()})

	var body StateResponse
	require.NoError(t, json.NewDecoder(serve(h, http.MethodGet, "/api/vision/state").Body).Decode(&body))

	assert.False(t, body.Running)
	assert.Equal(t, "camera unavailable: no device", body.Error)
	assert.Equal(t, mood.Neutral, body.Mood)
	assert.Equal(t, gesture.None, body.Gesture)
}

func TestVisionHandler_Capture(t *testing.T) {
	t.Run("neutral is no content", func(t *testing.T) {
		h := NewVisionHandler(context.Background(), &fakePipeline{}, &fakeController{snap: vision.NewState().Snapshot()})

		rec := serve(h, http.MethodPost, "/api/vision/capture")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("sad returns the event", func(t *testing.T) {
		c := &fakeController{snap: vision.Snapshot{Mood: mood.Sad, Accurate: true, Gesture: gesture.None}}
		h := NewVisionHandler(context.Background(), &fakePipeline{}, c)

		rec := serve(h, http.MethodPost, "/api/vision/capture")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"mood":"sad","gesture":"none","message":"The user looks sad.Ask him Why.."}`, rec.Body.String())
	})
}

func TestVisionHandler_Exit(t *testing.T) {
	c := &fakeController{snap: vision.NewState().Snapshot()}
	h := NewVisionHandler(context.Background(), &fakePipeline{}, c)

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "/api/vision/exit").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "/api/vision/exit").Code)
	assert.Equal(t, 2, c.exits)
}

func TestVisionHandler_Routing(t *testing.T) {
	h := NewVisionHandler(context.Background(), &fakePipeline{}, &fakeController{snap: vision.NewState().Snapshot()})

	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "/api/vision/capture").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPost, "/api/vision/state").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/api/vision/dance").Code)
}

func TestCaptureHandler_List(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, m := range []string{"happy", "sad", "surprised"} {
		require.NoError(t, s.Captures().Create(&store.Capture{
			Mood:      m,
			Gesture:   "none",
			Message:   vision.CaptureMessage(mood.Mood(m)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	h := NewCaptureHandler(s)

	rec := serve(h, http.MethodGet, "/api/captures?limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body listCapturesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Captures, 2)
	assert.Equal(t, "surprised", body.Captures[0].Mood)
	assert.Equal(t, "sad", body.Captures[1].Mood)
}

func TestCaptureHandler_ListEmpty(t *testing.T) {
	rec := serve(NewCaptureHandler(newTestStore(t)), http.MethodGet, "/api/captures")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"captures":[]}`, rec.Body.String())
}

func TestCaptureHandler_ListBadLimit(t *testing.T) {
	h := NewCaptureHandler(newTestStore(t))

	for _, q := range []string{"0", "-3", "ten"} {
		rec := serve(h, http.MethodGet, "/api/captures?limit="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", q)
	}
}

func TestCaptureHandler_GetAndDelete(t *testing.T) {
	s := newTestStore(t)
	c := &store.Capture{Mood: "angry", Gesture: "thumbs_up", Message: vision.CaptureMessage(mood.Angry)}
	require.NoError(t, s.Captures().Create(c))
	require.NoError(t, s.Deliveries().Record(&store.Delivery{CaptureID: c.ID, PluginName: "chat-forward", Success: true}))
	h := NewCaptureHandler(s)

	rec := serve(h, http.MethodGet, "/api/captures/"+c.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID         string `json:"id"`
		Mood       string `json:"mood"`
		Deliveries []struct {
			Plugin  string `json:"plugin"`
			Success bool   `json:"success"`
		} `json:"deliveries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, c.ID, body.ID)
	assert.Equal(t, "angry", body.Mood)
	require.Len(t, body.Deliveries, 1)
	assert.Equal(t, "chat-forward", body.Deliveries[0].Plugin)
	assert.True(t, body.Deliveries[0].Success)

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodDelete, "/api/captures/"+c.ID).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/captures/"+c.ID).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodDelete, "/api/captures/"+c.ID).Code)
}

func TestCaptureHandler_MethodNotAllowed(t *testing.T) {
	h := NewCaptureHandler(newTestStore(t))
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPost, "/api/captures").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPut, "/api/captures/abc").Code)
}
