// Package metadatatest builds JPEG and PNG fixtures with hand-assembled EXIF
// blocks for tests.
package metadatatest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// TIFF field types used by the fixtures.
const (
	typeByte     = 1
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

// EXIF tag numbers used by the fixtures.
const (
	TagMake             = 0x010F
	TagModel            = 0x0110
	TagExifIFDPointer   = 0x8769
	TagGPSIFDPointer    = 0x8825
	TagDateTimeOriginal = 0x9003
	TagGPSLatitudeRef   = 0x0001
	TagGPSLatitude      = 0x0002
	TagGPSLongitudeRef  = 0x0003
	TagGPSLongitude     = 0x0004
	TagGPSAltitudeRef   = 0x0005
	TagGPSAltitude      = 0x0006
)

// Entry is one IFD field with its little-endian encoded value.
type Entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ASCII(tag uint16, s string) Entry {
	data := append([]byte(s), 0)
	return Entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func Rational(tag uint16, vals ...[2]uint32) Entry {
	data := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		data = binary.LittleEndian.AppendUint32(data, v[0])
		data = binary.LittleEndian.AppendUint32(data, v[1])
	}
	return Entry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: data}
}

func Long(tag uint16, v uint32) Entry {
	return Entry{tag: tag, typ: typeLong, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

func Byte(tag uint16, v byte) Entry {
	return Entry{tag: tag, typ: typeByte, count: 1, data: []byte{v}}
}

// tiffBuilder lays out little-endian TIFF IFDs. Offsets are relative to the
// start of the TIFF header.
type tiffBuilder struct {
	b []byte
}

func newTiffBuilder() *tiffBuilder {
	b := []byte{'I', 'I', 42, 0, 0, 0, 0, 0}
	return &tiffBuilder{b: b}
}

// ifd appends an IFD and its out-of-line values and returns its offset.
func (tb *tiffBuilder) ifd(entries []Entry) uint32 {
	start := len(tb.b)
	dataOff := start + 2 + 12*len(entries) + 4

	var data []byte
	tb.b = binary.LittleEndian.AppendUint16(tb.b, uint16(len(entries)))
	for _, e := range entries {
		tb.b = binary.LittleEndian.AppendUint16(tb.b, e.tag)
		tb.b = binary.LittleEndian.AppendUint16(tb.b, e.typ)
		tb.b = binary.LittleEndian.AppendUint32(tb.b, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			tb.b = append(tb.b, inline...)
			continue
		}
		tb.b = binary.LittleEndian.AppendUint32(tb.b, uint32(dataOff+len(data)))
		data = append(data, e.data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	tb.b = binary.LittleEndian.AppendUint32(tb.b, 0)
	tb.b = append(tb.b, data...)
	return uint32(start)
}

func (tb *tiffBuilder) setRoot(offset uint32) {
	binary.LittleEndian.PutUint32(tb.b[4:8], offset)
}

// Fixture describes the EXIF content of a generated JPEG.
type Fixture struct {
	Make, Model string
	DateTime    string
	GPS         []Entry
}

func buildExif(f Fixture) []byte {
	tb := newTiffBuilder()

	var exifIFD, gpsIFD uint32
	if f.DateTime != "" {
		exifIFD = tb.ifd([]Entry{ASCII(TagDateTimeOriginal, f.DateTime)})
	}
	if len(f.GPS) > 0 {
		gpsIFD = tb.ifd(f.GPS)
	}

	var root []Entry
	if f.Make != "" {
		root = append(root, ASCII(TagMake, f.Make))
	}
	if f.Model != "" {
		root = append(root, ASCII(TagModel, f.Model))
	}
	if exifIFD != 0 {
		root = append(root, Long(TagExifIFDPointer, exifIFD))
	}
	if gpsIFD != 0 {
		root = append(root, Long(TagGPSIFDPointer, gpsIFD))
	}
	tb.setRoot(tb.ifd(root))

	return tb.b
}

// JPEG encodes a w×h JPEG and splices an APP1 EXIF segment after SOI.
func JPEG(t testing.TB, w, h int, f *Fixture) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(w, h), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	plain := buf.Bytes()
	if f == nil {
		return plain
	}

	payload := append([]byte("Exif\x00\x00"), buildExif(*f)...)
	segment := []byte{0xFF, 0xE1}
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(payload)+2))
	segment = append(segment, payload...)

	out := make([]byte, 0, len(plain)+len(segment))
	out = append(out, plain[:2]...)
	out = append(out, segment...)
	out = append(out, plain[2:]...)
	return out
}

// PNG encodes a w×h PNG, which never carries EXIF.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h)); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

// PittsburghGPS is 40°26'46"N 79°58'56"W at 300m.
func PittsburghGPS() []Entry {
	return []Entry{
		ASCII(TagGPSLatitudeRef, "N"),
		Rational(TagGPSLatitude, [2]uint32{40, 1}, [2]uint32{26, 1}, [2]uint32{46, 1}),
		ASCII(TagGPSLongitudeRef, "W"),
		Rational(TagGPSLongitude, [2]uint32{79, 1}, [2]uint32{58, 1}, [2]uint32{56, 1}),
		Byte(TagGPSAltitudeRef, 0),
		Rational(TagGPSAltitude, [2]uint32{3000, 10}),
	}
}
