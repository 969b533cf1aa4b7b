// Package imaging extracts pixel dimensions from uploaded images.
package imaging

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the webp format with image.Decode
)

// Decoder reports the width and height of an image file.
type Decoder interface {
	Dimensions(name string, data []byte) (width, height int, err error)
}

// RasterDecoder decodes raster formats through disintegration/imaging,
// honouring EXIF orientation, and reads SVG sizes from the root element.
type RasterDecoder struct{}

var _ Decoder = RasterDecoder{}

// NewDecoder returns the default Decoder.
func NewDecoder() RasterDecoder {
	return RasterDecoder{}
}

// Dimensions implements Decoder.
func (RasterDecoder) Dimensions(name string, data []byte) (int, int, error) {
	if strings.HasSuffix(strings.ToLower(name), ".svg") {
		return svgDimensions(data)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

type svgRoot struct {
	XMLName xml.Name `xml:"svg"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	ViewBox string   `xml:"viewBox,attr"`
}

var errNoSVGSize = errors.New("svg has no width, height or viewBox")

func svgDimensions(data []byte) (int, int, error) {
	var root svgRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return 0, 0, fmt.Errorf("cannot parse svg: %w", err)
	}

	w, wok := svgLength(root.Width)
	h, hok := svgLength(root.Height)
	if wok && hok {
		return w, h, nil
	}

	fields := strings.FieldsFunc(root.ViewBox, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 4 {
		vw, werr := strconv.ParseFloat(fields[2], 64)
		vh, herr := strconv.ParseFloat(fields[3], 64)
		if werr == nil && herr == nil && vw > 0 && vh > 0 {
			return int(math.Round(vw)), int(math.Round(vh)), nil
		}
	}
	return 0, 0, errNoSVGSize
}

// svgLength parses a user-unit or px length. Relative units are rejected.
func svgLength(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int(math.Round(v)), true
}
