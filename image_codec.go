package ocrtool

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	// decoders not covered by the standard library
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ExportDPI is the density written into exported JPEG files.
const ExportDPI = 300

var supportedImageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/bmp",
	"image/tiff",
	"image/webp",
}

// IsSupportedImageType reports whether the sniffed MIME type can be decoded.
func IsSupportedImageType(mimeType string) bool {
	for _, t := range supportedImageTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}

// DecodeBitmap sniffs and decodes an image, honoring EXIF orientation.
func DecodeBitmap(r io.Reader) (Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Bitmap{}, newResourceUnavailableError("<reader>", err)
	}
	return decodeBitmapBytes(data, "<bytes>")
}

// LoadBitmap opens and decodes an image file.
func LoadBitmap(path string) (Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bitmap{}, newResourceUnavailableError(path, err)
	}
	return decodeBitmapBytes(data, path)
}

func decodeBitmapBytes(data []byte, name string) (Bitmap, error) {
	mime := mimetype.Detect(data)
	if !IsSupportedImageType(mime.String()) {
		log.Warn().Str("component", "OCR_CODEC").Str("file_name", name).Str("mime", mime.String()).
			Msg("unsupported image type")
		return Bitmap{}, newResourceUnavailableError(name, errors.Errorf("unsupported image type %s", mime.String()))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Bitmap{}, newResourceUnavailableError(name, errors.Wrap(err, "decode image"))
	}

	b := BitmapFromImage(img)
	if b.IsEmpty() {
		return Bitmap{}, newResourceUnavailableError(name, errors.New("image has no pixels"))
	}
	return b, nil
}

// EncodePNG is the format handed to the OCR engines.
func EncodePNG(b Bitmap) ([]byte, error) {
	if b.IsEmpty() {
		return nil, &InvalidInputError{Reason: "encode: empty bitmap"}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, b.Image(), imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes b and stamps a JFIF header with the given density in
// dots per inch.
func EncodeJPEG(b Bitmap, dpi int) ([]byte, error) {
	if b.IsEmpty() {
		return nil, &InvalidInputError{Reason: "encode: empty bitmap"}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, b.Image(), imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return withJFIFDensity(buf.Bytes(), dpi)
}

// withJFIFDensity inserts (or rewrites) the APP0 JFIF segment right after SOI.
func withJFIFDensity(data []byte, dpi int) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errors.New("not a jpeg stream")
	}
	if dpi <= 0 || dpi > 0xFFFF {
		return nil, errors.Errorf("density %d out of range", dpi)
	}

	segment := make([]byte, 18)
	segment[0], segment[1] = 0xFF, 0xE0
	binary.BigEndian.PutUint16(segment[2:], 16)
	copy(segment[4:], "JFIF\x00")
	segment[9], segment[10] = 1, 1 // version 1.01
	segment[11] = 1                // density in dots per inch
	binary.BigEndian.PutUint16(segment[12:], uint16(dpi))
	binary.BigEndian.PutUint16(segment[14:], uint16(dpi))
	// no thumbnail: segment[16], segment[17] stay 0

	rest := data[2:]
	if len(rest) >= 4 && rest[0] == 0xFF && rest[1] == 0xE0 {
		n := int(binary.BigEndian.Uint16(rest[2:]))
		if 2+n <= len(rest) {
			rest = rest[2+n:]
		}
	}

	out := make([]byte, 0, 2+len(segment)+len(rest))
	out = append(out, 0xFF, 0xD8)
	out = append(out, segment...)
	out = append(out, rest...)
	return out, nil
}

// jfifDensity reads the density of the leading APP0 segment.
func jfifDensity(data []byte) (unit byte, x, y int, ok bool) {
	if len(data) < 20 || data[2] != 0xFF || data[3] != 0xE0 || string(data[6:11]) != "JFIF\x00" {
		return 0, 0, 0, false
	}
	return data[13], int(binary.BigEndian.Uint16(data[14:])), int(binary.BigEndian.Uint16(data[16:])), true
}
