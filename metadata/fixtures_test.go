package metadata

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	tiffShort = 3
	tiffASCII = 2
	tiffLong  = 4
)

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func asciiEntry(tag uint16, s string) tiffEntry {
	v := append([]byte(s), 0)
	return tiffEntry{tag: tag, typ: tiffASCII, count: uint32(len(v)), value: v}
}

func shortEntry(tag uint16, v uint16) tiffEntry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return tiffEntry{tag: tag, typ: tiffShort, count: 1, value: b}
}

func dataLen(entries []tiffEntry) int {
	n := 0
	for _, e := range entries {
		if len(e.value) > 4 {
			n += len(e.value) + len(e.value)%2
		}
	}
	return n
}

func ifdLen(entries []tiffEntry) int {
	return 2 + 12*len(entries) + 4
}

// buildTIFF lays out a little-endian TIFF with IFD0 and, when exifIFD is
// not nil, an EXIF sub-IFD referenced from IFD0.
func buildTIFF(t testing.TB, ifd0, exifIFD []tiffEntry) []byte {
	t.Helper()

	if exifIFD != nil {
		ifd0 = append(ifd0, tiffEntry{tag: TagExifIFDPointer, typ: tiffLong, count: 1, value: make([]byte, 4)})
	}
	ifd0Off := 8
	subOff := ifd0Off + ifdLen(ifd0) + dataLen(ifd0)
	total := subOff
	if exifIFD != nil {
		binary.LittleEndian.PutUint32(ifd0[len(ifd0)-1].value, uint32(subOff))
		total += ifdLen(exifIFD) + dataLen(exifIFD)
	}

	buf := make([]byte, total)
	copy(buf, "II*\x00")
	binary.LittleEndian.PutUint32(buf[4:], uint32(ifd0Off))
	writeIFD(buf, ifd0Off, ifd0)
	if exifIFD != nil {
		writeIFD(buf, subOff, exifIFD)
	}
	return buf
}

func writeIFD(buf []byte, off int, entries []tiffEntry) {
	le := binary.LittleEndian
	le.PutUint16(buf[off:], uint16(len(entries)))
	dataOff := off + ifdLen(entries)
	p := off + 2
	for _, e := range entries {
		le.PutUint16(buf[p:], e.tag)
		le.PutUint16(buf[p+2:], e.typ)
		le.PutUint32(buf[p+4:], e.count)
		if len(e.value) <= 4 {
			copy(buf[p+8:p+12], e.value)
		} else {
			le.PutUint32(buf[p+8:], uint32(dataOff))
			copy(buf[dataOff:], e.value)
			dataOff += len(e.value) + len(e.value)%2
		}
		p += 12
	}
	le.PutUint32(buf[p:], 0)
}

func segment(t testing.TB, marker byte, payload []byte) []byte {
	t.Helper()
	length := len(payload) + 2
	if length > 0xFFFF {
		t.Fatalf("segment payload too large: %d", length)
	}
	out := []byte{0xFF, marker, byte(length >> 8), byte(length)}
	return append(out, payload...)
}

func exifSegment(t testing.TB, tiffData []byte) []byte {
	t.Helper()
	return segment(t, markerAPP1, append([]byte("Exif\x00\x00"), tiffData...))
}

// iptcSegment wraps keyword datasets into an APP13 Photoshop resource.
func iptcSegment(t testing.TB, keywords ...string) []byte {
	t.Helper()

	var iim bytes.Buffer
	iim.Write([]byte{iimTagMarker, 2, 0, 0, 2, 0, 4})
	for _, k := range keywords {
		iim.Write([]byte{iimTagMarker, 2, 25, byte(len(k) >> 8), byte(len(k))})
		iim.WriteString(k)
	}

	var irb bytes.Buffer
	irb.Write(photoshopHeader)
	irb.WriteString("8BIM")
	irb.Write([]byte{0x04, 0x04})
	irb.Write([]byte{0, 0}) // empty name, padded
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(iim.Len()))
	irb.Write(size)
	irb.Write(iim.Bytes())
	if iim.Len()%2 != 0 {
		irb.WriteByte(0)
	}
	return segment(t, markerAPP13, irb.Bytes())
}

func frameSegment(t testing.TB, width, height int) []byte {
	t.Helper()
	payload := []byte{8, byte(height >> 8), byte(height), byte(width >> 8), byte(width), 3,
		1, 0x11, 0, 2, 0x11, 1, 3, 0x11, 1}
	return segment(t, 0xC0, payload)
}

// buildJPEG returns SOI, the given segments and EOI. It is a valid
// container for the structured decoder but carries no image data.
func buildJPEG(segments ...[]byte) []byte {
	out := []byte{0xFF, markerSOI}
	for _, s := range segments {
		out = append(out, s...)
	}
	return append(out, 0xFF, markerEOI)
}

// encodeJPEG encodes a real image and inserts the given segments right
// after SOI, so both tiers can read the file.
func encodeJPEG(t testing.TB, width, height int, segments ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(width, height), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	encoded := buf.Bytes()
	out := []byte{0xFF, markerSOI}
	for _, s := range segments {
		out = append(out, s...)
	}
	return append(out, encoded[2:]...)
}

func encodePNG(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(width, height)); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	return img
}

func writeFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// hostileLong declares a LONG array whose byte length wraps a uint32.
func hostileLong(tag uint16) tiffEntry {
	return tiffEntry{tag: tag, typ: tiffLong, count: 0x40000001, value: make([]byte, 4)}
}

// hugeCountTIFF has an IFD0 entry claiming about 4GB of values.
func hugeCountTIFF(t testing.TB) []byte {
	return buildTIFF(t, []tiffEntry{shortEntry(TagOrientation, 6), hostileLong(0x010F)}, nil)
}

// hugeSubIFDTIFF has a sane IFD0 and an EXIF sub-IFD claiming about 4GB.
func hugeSubIFDTIFF(t testing.TB) []byte {
	return buildTIFF(t, []tiffEntry{shortEntry(TagOrientation, 6)}, []tiffEntry{hostileLong(TagDateTimeOriginal)})
}

// loopTIFF chains IFD0 back to itself.
func loopTIFF(t testing.TB) []byte {
	buf := buildTIFF(t, []tiffEntry{shortEntry(TagOrientation, 1)}, nil)
	binary.LittleEndian.PutUint32(buf[8+2+12:], 8)
	return buf
}

// hugeOffsetTIFF is a big-endian header pointing IFD0 about 1GB past the
// end of a 9 byte file.
var hugeOffsetTIFF = []byte("MM\x00*C\x00f\xe1\xc6")

// allocatedBytes reports the heap allocated while fn runs.
func allocatedBytes(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}
