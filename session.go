package ocrtool

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session is the state of one open document: the loaded image, the crop
// applied to it, the working copy handed to OCR and the optional folder the
// image came from. At most one OCR or PDF call runs per session.
type Session struct {
	engine     OcrEngine
	engineType OcrEngineType
	config     EngineConfig

	mu        sync.Mutex
	imagePath string
	cursor    *FolderCursor
	original  Bitmap
	working   Bitmap
	crop      CropFractions
	binarized bool

	ocrMu sync.Mutex
}

// NewSession builds a session around one of the registered engines.
func NewSession(engineType OcrEngineType, engineConfig EngineConfig) (*Session, error) {
	engine := NewOcrEngine(engineType)
	if engine == nil {
		return nil, errors.Errorf("unknown engine type %d", engineType)
	}
	if err := engineConfig.Validate(); err != nil {
		return nil, err
	}
	return NewSessionWithEngine(engineType, engine, engineConfig), nil
}

// NewSessionWithEngine is NewSession for callers that bring their own engine.
// engineType labels metrics and engine errors.
func NewSessionWithEngine(engineType OcrEngineType, engine OcrEngine, engineConfig EngineConfig) *Session {
	return &Session{engine: engine, engineType: engineType, config: engineConfig}
}

func (s *Session) logger() zerolog.Logger {
	return log.With().Str("component", "OCR_SESSION").Str("file_name", s.imagePath).Logger()
}

// OpenFile loads a single image and leaves folder mode.
func (s *Session) OpenFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(path); err != nil {
		return err
	}
	s.cursor = nil
	return nil
}

// OpenFolder loads the first image of dir and enables Next/Previous. When
// the first image cannot be decoded the folder stays open and the error is
// returned, so Next moves past it.
func (s *Session) OpenFolder(dir string) error {
	cursor, err := OpenFolder(dir)
	if err != nil {
		log.Warn().Err(err).Str("component", "OCR_SESSION").Str("folder", dir).Msg("could not open folder")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor = cursor
	return s.load(cursor.Current())
}

// Next moves to the following image of the folder. It reports false and
// changes nothing when no folder is open or the last image is shown.
func (s *Session) Next() (bool, error) {
	return s.step((*FolderCursor).Next)
}

// Previous is the mirror of Next.
func (s *Session) Previous() (bool, error) {
	return s.step((*FolderCursor).Previous)
}

// step moves the cursor and loads the new image. When loading fails the
// cursor stays on the unreadable file and the previous image remains, so the
// next step skips past it.
func (s *Session) step(move func(*FolderCursor) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor == nil || !move(s.cursor) {
		return false, nil
	}
	if err := s.load(s.cursor.Current()); err != nil {
		return true, err
	}
	return true, nil
}

// load replaces the document image and re-applies the current crop. The
// caller holds mu.
func (s *Session) load(path string) error {
	b, err := LoadBitmap(path)
	if err != nil {
		log.Warn().Err(err).Str("component", "OCR_SESSION").Str("file_name", path).Msg("error opening image")
		return err
	}
	working, err := Crop(b, s.crop)
	if err != nil {
		return err
	}

	s.imagePath = path
	s.original = b
	s.working = working
	s.binarized = false

	l := s.logger()
	l.Info().Int("width", b.Width).Int("height", b.Height).Int("channels", b.Channels).Msg("image loaded")
	return nil
}

// SetCrop stores new fractions and recomputes the working image from the
// original, dropping any binarization.
func (s *Session) SetCrop(fractions CropFractions) error {
	if err := fractions.Validate(); err != nil {
		return &InvalidCropError{Fractions: fractions, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original.IsEmpty() {
		s.crop = fractions
		return nil
	}
	working, err := Crop(s.original, fractions)
	if err != nil {
		return err
	}
	s.crop = fractions
	s.working = working
	s.binarized = false
	return nil
}

// SetCropAll sets every edge to the same fraction.
func (s *Session) SetCropAll(fraction float64) error {
	return s.SetCrop(UniformCrop(fraction))
}

// Reset discards binarization and shows the cropped original again.
func (s *Session) Reset() error {
	s.mu.Lock()
	crop := s.crop
	s.mu.Unlock()
	return s.SetCrop(crop)
}

// Binarize replaces the working image with the pipeline output.
func (s *Session) Binarize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.working.IsEmpty() {
		return &InvalidInputError{Reason: "no image loaded"}
	}

	start := time.Now()
	binary, err := ProcessWithOptions(s.working, PipelineOptions{DenoiseKernel: s.config.DenoiseKernel})
	if err != nil {
		return err
	}
	s.working = binary
	s.binarized = true

	l := s.logger()
	l.Debug().Dur("took", time.Since(start)).Msg("binarized")
	return nil
}

// RunOCR recognizes the working image with the session's mode and language.
func (s *Session) RunOCR(ctx context.Context) (string, error) {
	result, err := s.recognize(ctx, OutputText)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// MakePDF asks the engine for a searchable PDF of the working image.
func (s *Session) MakePDF(ctx context.Context) ([]byte, error) {
	result, err := s.recognize(ctx, OutputPdf)
	if err != nil {
		return nil, err
	}
	if len(result.Pdf) == 0 {
		return nil, newExternalEngineError(s.engineType.String(), "engine returned no pdf", nil)
	}
	return result.Pdf, nil
}

func (s *Session) recognize(ctx context.Context, format OutputFormat) (OcrResult, error) {
	if !s.ocrMu.TryLock() {
		return OcrResult{}, ErrSessionBusy
	}
	defer s.ocrMu.Unlock()

	s.mu.Lock()
	working := s.working
	config := s.config
	path := s.imagePath
	s.mu.Unlock()

	if working.IsEmpty() {
		return OcrResult{}, &InvalidInputError{Reason: "no image loaded"}
	}

	imgBytes, err := EncodePNG(working)
	if err != nil {
		return OcrResult{}, err
	}

	ocrRequest := OcrRequest{
		ImgBytes:     imgBytes,
		FileName:     path,
		EngineType:   s.engineType,
		OutputFormat: format,
	}

	defer timeTrack(time.Now(), "ocr", "engine call finished", "")
	result, err := s.engine.ProcessRequest(ctx, ocrRequest, config)
	observeEngine(s.engineType, err)
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_SESSION").Str("file_name", path).Msg("ocr failed")
		if errors.Is(err, ErrExternalEngine) {
			return OcrResult{}, err
		}
		return OcrResult{}, newExternalEngineError(s.engineType.String(), "", err)
	}
	return result, nil
}

// SaveImage exports the working image as a 300 DPI JPEG.
func (s *Session) SaveImage(path string) error {
	working := s.Working()
	if working.IsEmpty() {
		return &InvalidInputError{Reason: "no image loaded"}
	}
	return SaveImage(path, working)
}

// ExportJSON writes text tagged with the current file name.
func (s *Session) ExportJSON(path string, text string) error {
	return SaveJSON(path, NewJsonExport(s.ImagePath(), text, time.Now()))
}

func (s *Session) Working() Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working
}

func (s *Session) Original() Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

func (s *Session) ImagePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imagePath
}

func (s *Session) CropFractions() CropFractions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crop
}

func (s *Session) Binarized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binarized
}

// FolderMode reports whether Next and Previous can move.
func (s *Session) FolderMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor != nil
}

func (s *Session) PageSegMode() PageSegMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.PageSegMode
}

func (s *Session) SetPageSegMode(psm PageSegMode) error {
	if !psm.Valid() {
		return errors.Errorf("page segmentation mode %d outside [0, 13]", psm)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.PageSegMode = psm
	return nil
}

func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Language
}

func (s *Session) SetLanguage(lang string) error {
	if lang == "" {
		return errors.New("language must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Language = lang
	return nil
}
