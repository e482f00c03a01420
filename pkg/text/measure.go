package text

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	// DefaultSizePx is the root font size.
	DefaultSizePx = 16.0
	// dpi at which a face of px*0.75 points renders px-tall glyphs.
	dpi = 96
)

// FontKey identifies a face: pixel size, weight ("normal" or "bold") and
// style ("normal" or "italic").
type FontKey struct {
	SizePx float64
	Weight string
	Style  string
}

// DefaultKey is the face used for line spacing of empty inline boxes.
var DefaultKey = FontKey{SizePx: DefaultSizePx, Weight: "normal", Style: "normal"}

// Bold reports whether the key selects a bold face.
func (k FontKey) Bold() bool { return k.Weight == "bold" }

// Italic reports whether the key selects an italic face.
func (k FontKey) Italic() bool { return k.Style == "italic" }

func (k FontKey) String() string {
	return fmt.Sprintf("%gpx %s %s", k.SizePx, k.Weight, k.Style)
}

// KeyFromStyle derives a FontKey from a computed style.
func KeyFromStyle(style map[string]string) FontKey {
	key := DefaultKey
	if v, err := strconv.ParseFloat(strings.TrimSuffix(style["font-size"], "px"), 64); err == nil && v > 0 {
		key.SizePx = v
	}
	switch w := style["font-weight"]; w {
	case "bold", "bolder":
		key.Weight = "bold"
	default:
		if n, err := strconv.Atoi(w); err == nil && n >= 600 {
			key.Weight = "bold"
		}
	}
	switch style["font-style"] {
	case "italic", "oblique":
		key.Style = "italic"
	}
	return key
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent    float64
	Descent   float64
	Linespace float64
}

// Measurer measures text for layout.
type Measurer interface {
	Measure(key FontKey, s string) float64
	Metrics(key FontKey) Metrics
}

// Fonts serves faces built from the bundled Go fonts. Faces are cached
// per key and guarded by a mutex since opentype faces are not safe for
// concurrent use.
type Fonts struct {
	mu    sync.Mutex
	fonts map[[2]bool]*opentype.Font
	faces map[FontKey]font.Face
}

// NewFonts parses the four bundled faces.
func NewFonts() (*Fonts, error) {
	f := &Fonts{
		fonts: make(map[[2]bool]*opentype.Font),
		faces: make(map[FontKey]font.Face),
	}
	sources := map[[2]bool][]byte{
		{false, false}: goregular.TTF,
		{true, false}:  gobold.TTF,
		{false, true}:  goitalic.TTF,
		{true, true}:   gobolditalic.TTF,
	}
	for k, ttf := range sources {
		parsed, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing bundled font: %w", err)
		}
		f.fonts[k] = parsed
	}
	return f, nil
}

// MustFonts is NewFonts that panics; the bundled fonts always parse.
func MustFonts() *Fonts {
	f, err := NewFonts()
	if err != nil {
		panic(err)
	}
	return f
}

// Face returns the cached face for key.
func (f *Fonts) Face(key FontKey) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face(key)
}

func (f *Fonts) face(key FontKey) font.Face {
	if face, ok := f.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(f.fonts[[2]bool{key.Bold(), key.Italic()}], &opentype.FaceOptions{
		Size:    key.SizePx * 0.75,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// only reachable with a nonsensical size; fall back to the default face
		face = f.face(DefaultKey)
	}
	f.faces[key] = face
	return face
}

// Measure returns the advance width of s in pixels.
func (f *Fonts) Measure(key FontKey, s string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return float64(font.MeasureString(f.face(key), s)) / 64
}

// Metrics returns the vertical metrics of the face for key.
func (f *Fonts) Metrics(key FontKey) Metrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.face(key).Metrics()
	return Metrics{
		Ascent:    float64(m.Ascent) / 64,
		Descent:   float64(m.Descent) / 64,
		Linespace: float64(m.Height) / 64,
	}
}

// Fixed is a deterministic measurer: every rune advances CharWidth × size
// and metrics are fixed fractions of the size.
type Fixed struct {
	CharWidth float64
}

// NewFixed returns a measurer where each rune is half the font size wide.
func NewFixed() Fixed {
	return Fixed{CharWidth: 0.5}
}

func (m Fixed) Measure(key FontKey, s string) float64 {
	return float64(len([]rune(s))) * m.CharWidth * key.SizePx
}

func (m Fixed) Metrics(key FontKey) Metrics {
	return Metrics{
		Ascent:    0.8 * key.SizePx,
		Descent:   0.2 * key.SizePx,
		Linespace: 1.2 * key.SizePx,
	}
}
