package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() #%d error = %v", i+1, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("ReadFrame() past the end error = %v, want ErrNoFrames", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("reopen should rewind playback: %v", err)
	}
	f.Close()
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("iteration %d: ReadFrame() error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_Empty(t *testing.T) {
	cam := NewMockCamera(nil, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("ReadFrame() error = %v, want ErrNoFrames", err)
	}
}

func TestMockCamera_OpenError(t *testing.T) {
	denied := errors.New("permission denied")
	cam := NewMockCamera(nil, false)
	cam.SetOpenError(denied)

	if err := cam.Open(); !errors.Is(err, denied) {
		t.Errorf("Open() error = %v, want %v", err, denied)
	}
	if cam.IsOpen() {
		t.Error("camera should not be open after a failed Open")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_CloseCounting(t *testing.T) {
	cam := NewMockCamera(nil, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	cam.Close()
	cam.Close()

	if cam.Opens() != 1 || cam.Closes() != 1 {
		t.Errorf("Opens() = %d, Closes() = %d, want 1 and 1", cam.Opens(), cam.Closes())
	}
}
