package ocrtool

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSegMode is the tesseract page segmentation mode. It is passed to the
// engine untouched.
type PageSegMode int

const (
	PsmOsdOnly PageSegMode = iota
	PsmAutoOsd
	PsmAutoOnly
	PsmAuto
	PsmSingleColumn
	PsmSingleBlockVertText
	PsmSingleBlock
	PsmSingleLine
	PsmSingleWord
	PsmCircleWord
	PsmSingleChar
	PsmSparseText
	PsmSparseTextOsd
	PsmRawLine
)

const DefaultPageSegMode = PsmAuto

var pageSegModeDescriptions = [...]string{
	"Orientation and script detection (OSD) only.",
	"Automatic page segmentation with OSD.",
	"Automatic page segmentation, but no OSD, or OCR.",
	"Fully automatic page segmentation, but no OSD. (Default)",
	"Assume a single column of text of variable sizes.",
	"Assume a single uniform block of vertically aligned text.",
	"Assume a single uniform block of text.",
	"Treat the image as a single text line.",
	"Treat the image as a single word.",
	"Treat the image as a single word in a circle.",
	"Treat the image as a single character.",
	"Sparse text. Find as much text as possible in no particular order.",
	"Sparse text with OSD.",
	"Raw line. Treat the image as a single text line, bypassing hacks that are Tesseract-specific.",
}

func (p PageSegMode) Valid() bool {
	return p >= PsmOsdOnly && p <= PsmRawLine
}

func (p PageSegMode) String() string {
	return strconv.Itoa(int(p))
}

// Description returns the human readable meaning of the mode.
func (p PageSegMode) Description() string {
	if !p.Valid() {
		return ""
	}
	return pageSegModeDescriptions[p]
}

// ParsePageSegMode parses "0".."13".
func ParsePageSegMode(s string) (PageSegMode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("page segmentation mode %q is not a number", s)
	}
	psm := PageSegMode(n)
	if !psm.Valid() {
		return 0, fmt.Errorf("page segmentation mode %d outside [0, 13]", n)
	}
	return psm, nil
}

// PageSegModeHelp renders the table of all modes.
func PageSegModeHelp() string {
	var sb strings.Builder
	sb.WriteString("Page segmentation modes:\n")
	for i, d := range pageSegModeDescriptions {
		fmt.Fprintf(&sb, "%3d    %s\n", i, d)
	}
	return sb.String()
}
