// Package media recognizes uploaded image formats and measures background
// images. It never stores anything.
package media

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Registered decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

// Format is a recognized image format.
type Format struct {
	Ext  string // canonical extension without the dot
	MIME string
}

var (
	PNG  = Format{Ext: "png", MIME: "image/png"}
	JPEG = Format{Ext: "jpg", MIME: "image/jpeg"}
	GIF  = Format{Ext: "gif", MIME: "image/gif"}
	WebP = Format{Ext: "webp", MIME: "image/webp"}
	BMP  = Format{Ext: "bmp", MIME: "image/bmp"}
	ICO  = Format{Ext: "ico", MIME: "image/x-icon"}
	SVG  = Format{Ext: "svg", MIME: "image/svg+xml"}
	TIFF = Format{Ext: "tiff", MIME: "image/tiff"}
)

var byExtension = map[string]Format{
	"png":  PNG,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"jpe":  JPEG,
	"gif":  GIF,
	"webp": WebP,
	"bmp":  BMP,
	"ico":  ICO,
	"svg":  SVG,
	"tif":  TIFF,
	"tiff": TIFF,
}

// sniffable lists formats in detection order with their MIME aliases.
var sniffable = []struct {
	format  Format
	aliases []string
}{
	{PNG, nil},
	{JPEG, nil},
	{GIF, nil},
	{WebP, nil},
	{BMP, []string{"image/x-ms-bmp"}},
	{ICO, []string{"image/vnd.microsoft.icon"}},
	{SVG, nil},
	{TIFF, nil},
}

// DetectFormat picks the format from the upload's file name extension and
// falls back to sniffing the content. A known extension wins.
func DetectFormat(filename string, data []byte) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if f, ok := byExtension[ext]; ok {
		return f, nil
	}
	if f, ok := Sniff(data); ok {
		return f, nil
	}
	return Format{}, fmt.Errorf("unrecognized image %q: %w", filename, domain.ErrInvalidImageFormat)
}

// Sniff detects the format from content alone.
func Sniff(data []byte) (Format, bool) {
	if len(data) == 0 {
		return Format{}, false
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		for _, c := range sniffable {
			if m.Is(c.format.MIME) {
				return c.format, true
			}
			for _, alias := range c.aliases {
				if m.Is(alias) {
					return c.format, true
				}
			}
		}
	}
	return Format{}, false
}

// IsImage reports whether data looks like an image format we accept.
func IsImage(data []byte) bool {
	_, ok := Sniff(data)
	return ok
}

// Orientation decodes only the image header and classifies it. Formats
// without a registered decoder (ICO, SVG) are rejected.
func Orientation(data []byte) (domain.Orientation, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read image dimensions: %v: %w", err, domain.ErrInvalidImageFormat)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("image has no pixels: %w", domain.ErrInvalidImageFormat)
	}
	return domain.OrientationFor(cfg.Width, cfg.Height), nil
}
