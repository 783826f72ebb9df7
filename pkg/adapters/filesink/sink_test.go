package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/cursorscan/pkg/mocks"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{}, 1)

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	var gotTrail []image.Point
	renderer := &mocks.Renderer{
		AnnotateFunc: func(img image.Image, trail []image.Point) image.Image {
			gotTrail = trail
			return img
		},
		EncodePNGFunc: func(img image.Image) ([]byte, error) {
			return []byte("png"), nil
		},
	}
	sink := New(testBaseDir, fs, renderer, 1)

	trail := []image.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if err := sink.SaveFrame(7, image.NewRGBA(image.Rect(0, 0, 4, 4)), trail); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "frames", "frame-00007.png")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != "png" {
		t.Errorf("expected %q, got %q", "png", saved)
	}
	if len(gotTrail) != 2 {
		t.Errorf("expected trail of 2 points passed to renderer, got %d", len(gotTrail))
	}
	if renderer.ScaleCalls != 0 {
		t.Errorf("expected no scaling at factor 1, got %d calls", renderer.ScaleCalls)
	}
}

func TestSink_SaveFrameScales(t *testing.T) {
	fs := mocks.NewFileSystem()
	var gotFactor float64
	renderer := &mocks.Renderer{
		ScaleFunc: func(img image.Image, factor float64) image.Image {
			gotFactor = factor
			return img
		},
	}
	sink := New(testBaseDir, fs, renderer, 0.5)

	if err := sink.SaveFrame(0, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if gotFactor != 0.5 {
		t.Errorf("expected scale factor 0.5, got %v", gotFactor)
	}
}

func TestSink_SaveFrameEncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	boom := errors.New("boom")
	renderer := &mocks.Renderer{
		EncodePNGFunc: func(img image.Image) ([]byte, error) {
			return nil, boom
		},
	}
	sink := New(testBaseDir, fs, renderer, 1)

	err := sink.SaveFrame(3, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped encode error, got %v", err)
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("expected no files written after encode failure")
	}
}

func TestSink_SaveFrameMkdirError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(path string) error {
		return errors.New("read-only")
	}
	sink := New(testBaseDir, fs, &mocks.Renderer{}, 1)

	if err := sink.SaveFrame(0, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil); err == nil {
		t.Error("expected error when directory cannot be created")
	}
}

func TestSink_SaveFrameCreatesDirectoryOnce(t *testing.T) {
	fs := mocks.NewFileSystem()
	created := false
	mkdirCalls := 0
	fs.ExistsFunc = func(path string) (bool, error) {
		return created, nil
	}
	fs.MkdirAllFunc = func(path string) error {
		mkdirCalls++
		created = true
		return nil
	}
	sink := New(testBaseDir, fs, &mocks.Renderer{}, 1)

	for i := 0; i < 3; i++ {
		if err := sink.SaveFrame(i, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil); err != nil {
			t.Fatalf("SaveFrame %d failed: %v", i, err)
		}
	}
	if mkdirCalls != 1 {
		t.Errorf("expected the frames directory to be created once, got %d calls", mkdirCalls)
	}
	if len(fs.GetAllFiles()) != 3 {
		t.Errorf("expected 3 frames written, got %d", len(fs.GetAllFiles()))
	}
}

func TestSink_SaveFrameExistsError(t *testing.T) {
	fs := mocks.NewFileSystem()
	denied := errors.New("permission denied")
	fs.ExistsFunc = func(path string) (bool, error) {
		return false, denied
	}
	sink := New(testBaseDir, fs, &mocks.Renderer{}, 1)

	err := sink.SaveFrame(0, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	if !errors.Is(err, denied) {
		t.Errorf("expected wrapped stat error, got %v", err)
	}
}
