package metadata

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/memoria/internal/metadata/metadatatest"
)

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name string
		dms  [3]float64
		ref  string
		want float64
	}{
		{"north", [3]float64{40, 26, 46}, "N", 40.446111},
		{"south", [3]float64{33, 52, 4}, "S", -33.867778},
		{"east", [3]float64{2, 17, 40}, "E", 2.294444},
		{"west", [3]float64{79, 58, 56}, "W", -79.982222},
		{"lowercase ref", [3]float64{79, 58, 56}, "w", -79.982222},
		{"zero", [3]float64{0, 0, 0}, "S", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDecimal(tt.dms, tt.ref)
			if math.Abs(got-tt.want) > 1e-5 {
				t.Errorf("ToDecimal(%v, %q) = %f, want %f", tt.dms, tt.ref, got, tt.want)
			}
		})
	}
}

func TestToDecimalSignConsistency(t *testing.T) {
	for d := 0.0; d <= 180; d += 17 {
		for m := 0.0; m < 60; m += 13 {
			for s := 0.0; s < 60; s += 11.5 {
				dms := [3]float64{d, m, s}
				magnitude := d + m/60 + s/3600
				for _, ref := range []string{"N", "E"} {
					if got := ToDecimal(dms, ref); got != magnitude {
						t.Fatalf("ToDecimal(%v, %s) = %f, want %f", dms, ref, got, magnitude)
					}
				}
				for _, ref := range []string{"S", "W"} {
					if got := ToDecimal(dms, ref); got != -magnitude {
						t.Fatalf("ToDecimal(%v, %s) = %f, want %f", dms, ref, got, -magnitude)
					}
				}
			}
		}
	}
}

func TestExtractFullExif(t *testing.T) {
	img := metadatatest.JPEG(t, 64, 48, &metadatatest.Fixture{
		Make:     "Canon",
		Model:    "Canon EOS 80D",
		DateTime: "2023:05:10 14:30:00",
		GPS:      metadatatest.PittsburghGPS(),
	})

	res := newTestExtractor().ExtractBytes(img)

	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
	if res.CameraMake != "Canon" || res.CameraModel != "Canon EOS 80D" {
		t.Errorf("camera = %q/%q", res.CameraMake, res.CameraModel)
	}

	wantTime := time.Date(2023, 5, 10, 14, 30, 0, 0, time.UTC)
	if res.CapturedAt == nil || !res.CapturedAt.Equal(wantTime) {
		t.Errorf("CapturedAt = %v, want %v", res.CapturedAt, wantTime)
	}

	if res.Location == nil {
		t.Fatal("expected location")
	}
	if math.Abs(res.Location.Lat-40.446) > 0.001 || math.Abs(res.Location.Lng-(-79.982)) > 0.001 {
		t.Errorf("location = %+v, want ≈ {40.446, -79.982}", *res.Location)
	}
	if res.Altitude == nil || math.Abs(*res.Altitude-300) > 1e-9 {
		t.Errorf("Altitude = %v, want 300", res.Altitude)
	}

	if res.Width != 64 || res.Height != 48 || res.Format != "JPEG" {
		t.Errorf("dimensions = %dx%d %s", res.Width, res.Height, res.Format)
	}

	m := res.Map()
	for _, key := range []string{"camera_make", "camera_model", "width", "height", "format", "altitude"} {
		if _, ok := m[key]; !ok {
			t.Errorf("metadata map missing %q: %v", key, m)
		}
	}
}

func TestExtractWithoutExif(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		res := newTestExtractor().ExtractBytes(metadatatest.PNG(t, 10, 20))
		assertOnlyDimensions(t, res, 10, 20, "PNG")
	})

	t.Run("jpeg without APP1", func(t *testing.T) {
		res := newTestExtractor().ExtractBytes(metadatatest.JPEG(t, 30, 15, nil))
		assertOnlyDimensions(t, res, 30, 15, "JPEG")
	})
}

func assertOnlyDimensions(t *testing.T, res *Result, w, h int, format string) {
	t.Helper()
	m := res.Map()
	if len(m) != 3 {
		t.Errorf("expected only width/height/format, got %v", m)
	}
	if m["width"] != w || m["height"] != h || m["format"] != format {
		t.Errorf("map = %v, want %dx%d %s", m, w, h, format)
	}
	if res.CapturedAt != nil || res.Location != nil || res.Altitude != nil {
		t.Errorf("unexpected EXIF fields: %+v", res)
	}
}

func TestExtractPartialGPSIsDiscarded(t *testing.T) {
	gps := []metadatatest.Entry{
		metadatatest.ASCII(metadatatest.TagGPSLatitudeRef, "N"),
		metadatatest.Rational(metadatatest.TagGPSLatitude, [2]uint32{40, 1}, [2]uint32{26, 1}, [2]uint32{46, 1}),
		metadatatest.Rational(metadatatest.TagGPSLongitude, [2]uint32{79, 1}, [2]uint32{58, 1}, [2]uint32{56, 1}),
		metadatatest.Rational(metadatatest.TagGPSAltitude, [2]uint32{100, 1}),
	}
	img := metadatatest.JPEG(t, 8, 8, &metadatatest.Fixture{GPS: gps})

	res := newTestExtractor().ExtractBytes(img)

	if res.Location != nil {
		t.Errorf("expected no location without longitude ref, got %+v", res.Location)
	}
	if res.Altitude != nil {
		t.Errorf("altitude must not be extracted without a location, got %v", *res.Altitude)
	}
}

func TestExtractBadCaptureTimeIsOmitted(t *testing.T) {
	img := metadatatest.JPEG(t, 8, 8, &metadatatest.Fixture{
		Make:     "Apple",
		DateTime: "2023-05-10T14:30:00",
	})

	res := newTestExtractor().ExtractBytes(img)

	if res.CapturedAt != nil {
		t.Errorf("expected unparseable time to be omitted, got %v", res.CapturedAt)
	}
	if res.CameraMake != "Apple" {
		t.Errorf("CameraMake = %q, want Apple", res.CameraMake)
	}
	if len(res.Issues) != 0 {
		t.Errorf("bad capture time is not an issue, got %v", res.Issues)
	}
}

func TestExtractGarbageNeverFails(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     {},
		"text":      []byte("definitely not an image"),
		"truncated": metadatatest.JPEG(t, 16, 16, &metadatatest.Fixture{Make: "Canon"})[:40],
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			res := newTestExtractor().Extract(bytes.NewReader(data))
			if res == nil {
				t.Fatal("expected a result")
			}
			if res.Format != "" {
				t.Errorf("unexpected format %q", res.Format)
			}
			if len(res.Issues) == 0 {
				t.Error("expected the header failure to be recorded")
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, metadatatest.JPEG(t, 12, 9, &metadatatest.Fixture{Model: "Pixel 7"}), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	res := newTestExtractor().ExtractFile(path)
	if res.CameraModel != "Pixel 7" {
		t.Errorf("CameraModel = %q, want Pixel 7", res.CameraModel)
	}

	missing := newTestExtractor().ExtractFile(filepath.Join(dir, "missing.jpg"))
	if len(missing.Issues) == 0 {
		t.Error("expected an issue for a missing file")
	}
}
