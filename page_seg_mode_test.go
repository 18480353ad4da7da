package ocrtool

import (
	"strings"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestParsePageSegMode(t *testing.T) {
	psm, err := ParsePageSegMode("6")
	assert.True(t, err == nil)
	assert.Equals(t, psm, PsmSingleBlock)

	psm, err = ParsePageSegMode(" 13 ")
	assert.True(t, err == nil)
	assert.Equals(t, psm, PsmRawLine)

	_, err = ParsePageSegMode("14")
	assert.False(t, err == nil)
	_, err = ParsePageSegMode("-1")
	assert.False(t, err == nil)
	_, err = ParsePageSegMode("auto")
	assert.False(t, err == nil)
}

func TestPageSegModeDefaults(t *testing.T) {
	assert.Equals(t, DefaultPageSegMode, PageSegMode(3))
	assert.Equals(t, DefaultPageSegMode.String(), "3")
	assert.True(t, strings.Contains(DefaultPageSegMode.Description(), "(Default)"))
	assert.Equals(t, PageSegMode(20).Description(), "")
	assert.False(t, PageSegMode(20).Valid())
}

func TestPageSegModeHelpListsAllModes(t *testing.T) {
	help := PageSegModeHelp()
	lines := strings.Split(strings.TrimSpace(help), "\n")
	assert.Equals(t, len(lines), 15)
	assert.True(t, strings.Contains(help, " 13    Raw line."))
	assert.True(t, strings.Contains(help, "  0    Orientation and script detection (OSD) only."))
}
