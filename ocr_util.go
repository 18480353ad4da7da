package ocrtool

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"
)

var urlClient = &http.Client{Timeout: 30 * time.Second}

func saveUrlContentToFileName(url, tmpFileName string) error {

	content, err := url2bytes(url)
	if err != nil {
		return err
	}
	return saveBytesToFileName(content, tmpFileName)
}

func saveBytesToFileName(bytes []byte, tmpFileName string) error {
	return os.WriteFile(tmpFileName, bytes, 0600)
}

func url2bytes(url string) ([]byte, error) {

	resp, err := urlClient.Get(url)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)

}

// createTempFileName generating a file name within of a temp directory. If function argument ist empty string
// file name will be generated in ksuid format.
func createTempFileName(fileName string) (string, error) {
	tempDir := os.TempDir()

	if fileName == "" {
		ksuidRaw, err := ksuid.NewRandom()
		if err != nil {
			return "", err
		}
		fileName = ksuidRaw.String()
	}

	return filepath.Join(tempDir, fileName), nil
}

func removeTempFile(name string) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("component", "OCR_UTIL").Msg(name + " could not be removed")
	}
}

// timeTrack used to measure time of selected operations
func timeTrack(start time.Time, operation string, message string, requestID string) {
	elapsed := time.Since(start)
	event := log.Info().Str("component", "OCR_TIMING").Dur(operation, elapsed)
	if requestID != "" {
		event = event.Str("RequestID", requestID)
	}
	event.Msg(message)
}
