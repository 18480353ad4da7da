package ocrtool

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// FolderCursor walks the image files of one directory in lexicographic
// order. Moving past either end is a no-op.
type FolderCursor struct {
	dir   string
	files []string
	index int
}

// OpenFolder lists the decodable images directly inside dir.
func OpenFolder(dir string) (*FolderCursor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newResourceUnavailableError(dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		mime, err := mimetype.DetectFile(path)
		if err != nil || !IsSupportedImageType(mime.String()) {
			log.Debug().Str("component", "OCR_FOLDER").Str("file_name", path).Msg("skipping non image file")
			continue
		}
		files = append(files, entry.Name())
	}
	if len(files) == 0 {
		return nil, newResourceUnavailableError(dir, errors.New("folder contains no images"))
	}
	sort.Strings(files)

	return &FolderCursor{dir: dir, files: files}, nil
}

func (c *FolderCursor) Dir() string { return c.dir }

func (c *FolderCursor) Len() int { return len(c.files) }

func (c *FolderCursor) Index() int { return c.index }

// Current returns the full path of the selected file.
func (c *FolderCursor) Current() string {
	return filepath.Join(c.dir, c.files[c.index])
}

func (c *FolderCursor) AtStart() bool { return c.index == 0 }

func (c *FolderCursor) AtEnd() bool { return c.index == len(c.files)-1 }

// Next advances to the following file and reports whether it moved.
func (c *FolderCursor) Next() bool {
	if c.AtEnd() {
		return false
	}
	c.index++
	return true
}

// Previous steps back one file and reports whether it moved.
func (c *FolderCursor) Previous() bool {
	if c.AtStart() {
		return false
	}
	c.index--
	return true
}
