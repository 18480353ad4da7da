package ocrtool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

// blockingEngine holds every call until release is closed.
type blockingEngine struct {
	started chan struct{}
	release chan struct{}
}

func (e blockingEngine) ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {
	close(e.started)
	<-e.release
	return OcrResult{Text: "slow"}, nil
}

// failingEngine always fails like a crashing binary would.
type failingEngine struct{}

func (failingEngine) ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {
	return OcrResult{}, errors.New("exit status 1")
}

func newMockSession(t *testing.T) *Session {
	session, err := NewSession(EngineMock, DefaultEngineConfig())
	assert.True(t, err == nil)
	return session
}

func TestSessionOpenCropReset(t *testing.T) {
	path := writePNG(t, t.TempDir(), "page.png", squareBitmap(100, 100, 45, 45, 10))
	session := newMockSession(t)

	assert.True(t, session.OpenFile(path) == nil)
	assert.Equals(t, session.ImagePath(), path)
	assert.False(t, session.FolderMode())
	assert.Equals(t, session.Working().Width, 100)

	assert.True(t, session.SetCropAll(0.1) == nil)
	assert.Equals(t, session.Working().Width, 80)
	assert.Equals(t, session.Working().Height, 80)
	assert.Equals(t, session.Original().Width, 100)
	assert.Equals(t, session.CropFractions(), UniformCrop(0.1))

	assert.True(t, session.Binarize() == nil)
	assert.True(t, session.Binarized())
	working := session.Working()
	assert.Equals(t, countValue(working, 0)+countValue(working, 255), len(working.Pix))

	// reset keeps the crop and drops the binarization
	assert.True(t, session.Reset() == nil)
	assert.False(t, session.Binarized())
	assert.Equals(t, session.Working().Width, 80)

	// a new crop is always taken from the original
	assert.True(t, session.SetCrop(CropFractions{Left: 0.25}) == nil)
	assert.Equals(t, session.Working().Width, 75)
	assert.Equals(t, session.Working().Height, 100)
}

func TestSessionRejectsBadCrop(t *testing.T) {
	path := writePNG(t, t.TempDir(), "page.png", colorBitmap(20, 20))
	session := newMockSession(t)
	assert.True(t, session.OpenFile(path) == nil)

	err := session.SetCrop(CropFractions{Top: 0.3})
	assert.True(t, errors.Is(err, ErrInvalidCrop))
	var cropErr *InvalidCropError
	assert.True(t, errors.As(err, &cropErr))
	assert.True(t, cropErr.Cause != nil)
	assert.True(t, strings.Contains(err.Error(), "top=0.3"))
	assert.False(t, strings.Contains(err.Error(), "yield"))
	assert.True(t, session.CropFractions().IsZero())
	assert.Equals(t, session.Working().Width, 20)
}

func TestSessionCropAppliesToNextLoad(t *testing.T) {
	dir := t.TempDir()
	first := writePNG(t, dir, "first.png", colorBitmap(40, 40))
	second := writePNG(t, dir, "second.png", colorBitmap(60, 20))

	session := newMockSession(t)
	assert.True(t, session.SetCropAll(0.25) == nil)
	assert.True(t, session.OpenFile(first) == nil)
	assert.Equals(t, session.Working().Width, 20)
	assert.True(t, session.OpenFile(second) == nil)
	assert.Equals(t, session.Working().Width, 30)
	assert.Equals(t, session.Working().Height, 10)
}

func TestSessionWithoutImage(t *testing.T) {
	session := newMockSession(t)
	assert.True(t, errors.Is(session.Binarize(), ErrInvalidInput))
	_, err := session.RunOCR(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(session.SaveImage(filepath.Join(t.TempDir(), "x.jpg")), ErrInvalidInput))

	moved, err := session.Next()
	assert.False(t, moved)
	assert.True(t, err == nil)
}

func TestSessionOpenMissingFile(t *testing.T) {
	session := newMockSession(t)
	err := session.OpenFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
	assert.Equals(t, session.ImagePath(), "")
}

func TestSessionRunOCRAndPDF(t *testing.T) {
	path := writePNG(t, t.TempDir(), "page.png", colorBitmap(32, 32))
	session := newMockSession(t)
	assert.True(t, session.OpenFile(path) == nil)

	text, err := session.RunOCR(context.Background())
	assert.True(t, err == nil)
	assert.Equals(t, text, MOCK_ENGINE_RESPONSE)

	pdf, err := session.MakePDF(context.Background())
	assert.True(t, err == nil)
	assert.Equals(t, string(pdf), string(MOCK_ENGINE_PDF))
}

func TestSessionEngineFailure(t *testing.T) {
	path := writePNG(t, t.TempDir(), "page.png", colorBitmap(8, 8))
	session := NewSessionWithEngine(EngineTesseract, failingEngine{}, DefaultEngineConfig())
	assert.True(t, session.OpenFile(path) == nil)

	_, err := session.RunOCR(context.Background())
	assert.True(t, errors.Is(err, ErrExternalEngine))

	var engineErr *ExternalEngineError
	assert.True(t, errors.As(err, &engineErr))
	assert.Equals(t, engineErr.Engine, EngineTesseract.String())
	assert.Equals(t, engineErr.Cause.Error(), "exit status 1")
}

func TestSessionBusy(t *testing.T) {
	path := writePNG(t, t.TempDir(), "page.png", colorBitmap(8, 8))
	engine := blockingEngine{started: make(chan struct{}), release: make(chan struct{})}
	session := NewSessionWithEngine(EngineMock, engine, DefaultEngineConfig())
	assert.True(t, session.OpenFile(path) == nil)

	done := make(chan error)
	go func() {
		_, err := session.RunOCR(context.Background())
		done <- err
	}()
	<-engine.started

	_, err := session.MakePDF(context.Background())
	assert.True(t, errors.Is(err, ErrSessionBusy))

	close(engine.release)
	assert.True(t, <-done == nil)
}

func TestSessionFolderNavigation(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "01.png", colorBitmap(10, 10))
	writePNG(t, dir, "02.png", colorBitmap(20, 10))
	writePNG(t, dir, "03.png", colorBitmap(30, 10))

	session := newMockSession(t)
	assert.True(t, session.OpenFolder(dir) == nil)
	assert.True(t, session.FolderMode())
	assert.Equals(t, filepath.Base(session.ImagePath()), "01.png")

	moved, err := session.Previous()
	assert.False(t, moved)
	assert.True(t, err == nil)
	assert.Equals(t, filepath.Base(session.ImagePath()), "01.png")

	moved, err = session.Next()
	assert.True(t, moved && err == nil)
	assert.Equals(t, session.Working().Width, 20)
	moved, err = session.Next()
	assert.True(t, moved && err == nil)
	assert.Equals(t, filepath.Base(session.ImagePath()), "03.png")

	moved, err = session.Next()
	assert.False(t, moved)
	assert.True(t, err == nil)
	assert.Equals(t, filepath.Base(session.ImagePath()), "03.png")

	moved, err = session.Previous()
	assert.True(t, moved && err == nil)
	assert.Equals(t, filepath.Base(session.ImagePath()), "02.png")

	// opening a single file leaves folder mode
	assert.True(t, session.OpenFile(filepath.Join(dir, "01.png")) == nil)
	assert.False(t, session.FolderMode())
	moved, _ = session.Next()
	assert.False(t, moved)
}

func TestSessionSkipsUnreadableFolderEntry(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "01.png", colorBitmap(10, 10))
	broken := filepath.Join(dir, "02.png")
	assert.True(t, os.WriteFile(broken, []byte("\x89PNG\r\n\x1a\ngarbage"), 0600) == nil)
	writePNG(t, dir, "03.png", colorBitmap(30, 10))

	session := newMockSession(t)
	assert.True(t, session.OpenFolder(dir) == nil)

	moved, err := session.Next()
	assert.True(t, moved)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
	// previous image stays shown
	assert.Equals(t, filepath.Base(session.ImagePath()), "01.png")

	moved, err = session.Next()
	assert.True(t, moved && err == nil)
	assert.Equals(t, filepath.Base(session.ImagePath()), "03.png")
}

func TestSessionExports(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "scan.png", squareBitmap(40, 40, 10, 10, 10))
	session := newMockSession(t)
	assert.True(t, session.OpenFile(path) == nil)
	assert.True(t, session.Binarize() == nil)

	jpgPath := filepath.Join(dir, "scan.jpg")
	assert.True(t, session.SaveImage(jpgPath) == nil)
	content, err := os.ReadFile(jpgPath)
	assert.True(t, err == nil)
	_, x, _, ok := jfifDensity(content)
	assert.True(t, ok)
	assert.Equals(t, x, ExportDPI)

	jsonPath := filepath.Join(dir, "scan.json")
	assert.True(t, session.ExportJSON(jsonPath, "hello world") == nil)
	content, err = os.ReadFile(jsonPath)
	assert.True(t, err == nil)
	assert.True(t, len(content) > 0)
}

func TestSessionSettings(t *testing.T) {
	session := newMockSession(t)
	assert.Equals(t, session.PageSegMode(), DefaultPageSegMode)
	assert.True(t, session.SetPageSegMode(PsmSparseText) == nil)
	assert.Equals(t, session.PageSegMode(), PsmSparseText)
	assert.False(t, session.SetPageSegMode(PageSegMode(14)) == nil)
	assert.Equals(t, session.PageSegMode(), PsmSparseText)

	assert.Equals(t, session.Language(), DefaultLanguage)
	assert.True(t, session.SetLanguage("deu") == nil)
	assert.Equals(t, session.Language(), "deu")
	assert.False(t, session.SetLanguage("") == nil)
}

func TestSessionFolderWithBrokenFirstImage(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "01.png")
	assert.True(t, os.WriteFile(broken, []byte("\x89PNG\r\n\x1a\ngarbage"), 0600) == nil)
	writePNG(t, dir, "02.png", colorBitmap(20, 10))
	writePNG(t, dir, "03.png", colorBitmap(30, 10))

	session := newMockSession(t)
	err := session.OpenFolder(dir)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
	assert.True(t, session.FolderMode())

	moved, err := session.Next()
	assert.True(t, moved && err == nil)
	assert.Equals(t, filepath.Base(session.ImagePath()), "02.png")
	assert.Equals(t, session.Working().Width, 20)
}

func TestSessionOpensOnePixelWideImageWithCrop(t *testing.T) {
	path := writePNG(t, t.TempDir(), "strip.png", colorBitmap(1, 10))
	session := newMockSession(t)
	assert.True(t, session.SetCropAll(MaxCropFraction) == nil)
	assert.True(t, session.OpenFile(path) == nil)
	assert.Equals(t, session.Working().Width, 1)
	assert.Equals(t, session.Working().Height, 5)
}
