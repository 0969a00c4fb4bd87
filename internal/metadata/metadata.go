// Package metadata extracts capture time, camera, dimensions and GPS position
// from uploaded images.
//
// Extraction is best effort: it never returns an error. Whatever could be read
// is returned in a Result, and failures of individual sections are recorded in
// Result.Issues and logged.
package metadata

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/mmynk/memoria/internal/models"
)

// CaptureTimeLayout is the EXIF "YYYY:MM:DD HH:MM:SS" date/time format.
const CaptureTimeLayout = "2006:01:02 15:04:05"

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Result holds everything that could be extracted from one image.
type Result struct {
	CameraMake  string
	CameraModel string
	CapturedAt  *time.Time
	Location    *models.Location
	Altitude    *float64

	// Width, Height and Format come from the image header, not from EXIF.
	Width  int
	Height int
	Format string

	// Issues lists the failures that were swallowed during extraction.
	Issues []error
}

// Map returns the attributes stored in a photo's metadata map.
func (r *Result) Map() map[string]any {
	m := make(map[string]any)
	if r.CameraMake != "" {
		m["camera_make"] = r.CameraMake
	}
	if r.CameraModel != "" {
		m["camera_model"] = r.CameraModel
	}
	if r.Altitude != nil {
		m["altitude"] = *r.Altitude
	}
	if r.Format != "" {
		m["width"] = r.Width
		m["height"] = r.Height
		m["format"] = r.Format
	}
	return m
}

// HasLocation reports whether GPS coordinates were extracted.
func (r *Result) HasLocation() bool {
	return r.Location != nil
}

// Extractor reads embedded image metadata.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor that logs swallowed failures to logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger.With("component", "metadata")}
}

// ExtractFile extracts metadata from the image at path.
func (e *Extractor) ExtractFile(path string) *Result {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Error("Failed to open image", "path", path, "error", err)
		return &Result{Issues: []error{fmt.Errorf("failed to open image: %w", err)}}
	}
	defer f.Close()
	return e.Extract(f)
}

// ExtractBytes extracts metadata from an in-memory image.
func (e *Extractor) ExtractBytes(data []byte) *Result {
	return e.Extract(bytes.NewReader(data))
}

// Extract reads image dimensions and the EXIF block from r.
func (e *Extractor) Extract(r io.ReadSeeker) *Result {
	res := &Result{}

	e.guard(res, "header", func() error { return readHeader(r, res) })

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		res.Issues = append(res.Issues, fmt.Errorf("failed to rewind image: %w", err))
		e.logIssues(res)
		return res
	}

	e.guard(res, "exif", func() error { return e.readExif(r, res) })

	e.logIssues(res)
	return res
}

// guard runs one extraction section, turning errors and panics into issues.
func (e *Extractor) guard(res *Result, section string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			res.Issues = append(res.Issues, fmt.Errorf("%s: panic: %v", section, p))
		}
	}()
	if err := fn(); err != nil {
		res.Issues = append(res.Issues, fmt.Errorf("%s: %w", section, err))
	}
}

func (e *Extractor) logIssues(res *Result) {
	for _, issue := range res.Issues {
		e.logger.Warn("Metadata extraction issue", "error", issue)
	}
}

func readHeader(r io.Reader, res *Result) error {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("failed to decode image header: %w", err)
	}
	res.Width = cfg.Width
	res.Height = cfg.Height
	res.Format = strings.ToUpper(format)
	return nil
}

func (e *Extractor) readExif(r io.Reader, res *Result) error {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		// Images without an EXIF block are normal.
		e.logger.Debug("No usable EXIF block", "error", err)
		return nil
	}

	res.CameraMake = stringTag(x, exif.Make)
	res.CameraModel = stringTag(x, exif.Model)

	if raw := stringTag(x, exif.DateTimeOriginal); raw != "" {
		if t, err := time.Parse(CaptureTimeLayout, raw); err == nil {
			res.CapturedAt = &t
		} else {
			e.logger.Debug("Unparseable capture time", "value", raw)
		}
	}

	loc, err := readLocation(x)
	if err != nil {
		return err
	}
	if loc == nil {
		return nil
	}
	res.Location = loc

	if tag, err := x.Get(exif.GPSAltitude); err == nil {
		alt, err := ratFloat(tag, 0)
		if err != nil {
			return fmt.Errorf("failed to read altitude: %w", err)
		}
		res.Altitude = &alt
	}
	return nil
}

// readLocation returns nil without error when any of the four required GPS
// fields is missing.
func readLocation(x *exif.Exif) (*models.Location, error) {
	latTag, err := x.Get(exif.GPSLatitude)
	if err != nil {
		return nil, nil
	}
	lngTag, err := x.Get(exif.GPSLongitude)
	if err != nil {
		return nil, nil
	}
	latRef := stringTag(x, exif.GPSLatitudeRef)
	lngRef := stringTag(x, exif.GPSLongitudeRef)
	if latRef == "" || lngRef == "" {
		return nil, nil
	}

	lat, err := dmsFromTag(latTag)
	if err != nil {
		return nil, fmt.Errorf("failed to read latitude: %w", err)
	}
	lng, err := dmsFromTag(lngTag)
	if err != nil {
		return nil, fmt.Errorf("failed to read longitude: %w", err)
	}

	return &models.Location{
		Lat: ToDecimal(lat, latRef),
		Lng: ToDecimal(lng, lngRef),
	}, nil
}

// ToDecimal converts a (degrees, minutes, seconds) triple to signed decimal
// degrees. Southern and western hemispheres are negative.
func ToDecimal(dms [3]float64, ref string) float64 {
	decimal := dms[0] + dms[1]/60 + dms[2]/3600
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		return -decimal
	}
	return decimal
}

type ratTag interface {
	Rat2(i int) (num, den int64, err error)
}

func dmsFromTag(tag ratTag) ([3]float64, error) {
	var dms [3]float64
	for i := range dms {
		v, err := ratFloat(tag, i)
		if err != nil {
			return dms, err
		}
		dms[i] = v
	}
	return dms, nil
}

func ratFloat(tag ratTag, i int) (float64, error) {
	num, den, err := tag.Rat2(i)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, fmt.Errorf("zero denominator at index %d", i)
	}
	return float64(num) / float64(den), nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
