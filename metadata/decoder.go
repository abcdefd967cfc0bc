package metadata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP1  = 0xE1
	markerAPP13 = 0xED
	markerTEM   = 0x01
)

var exifHeader = []byte("Exif\x00\x00")

// Decoder turns a file into its structured metadata directories. A
// decoder fails as a whole; a missing individual directory is not an
// error.
type Decoder interface {
	Decode(path string) (*DirectorySet, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string) (*DirectorySet, error)

func (f DecoderFunc) Decode(path string) (*DirectorySet, error) {
	return f(path)
}

// StructuredDecoder reads EXIF, IPTC and JPEG frame data from JPEG files
// and EXIF/IPTC from TIFF files.
type StructuredDecoder struct{}

func (StructuredDecoder) Decode(path string) (*DirectorySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	var set *DirectorySet
	switch {
	case magic[0] == 0xFF && magic[1] == markerSOI:
		set, err = decodeJPEG(bufio.NewReader(f))
	case isTIFF(magic[:]):
		set, err = decodeTIFF(f)
	default:
		err = ErrUnsupportedContainer
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return set, nil
}

func isTIFF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
}

func isSOF(marker byte) bool {
	switch marker {
	case 0xC0, 0xC1, 0xC2, 0xC3, 0xC5, 0xC6, 0xC7, 0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF:
		return true
	}
	return false
}

// decodeJPEG walks the marker segments up to the start of scan. A file
// that ends early keeps whatever was collected so far.
func decodeJPEG(r *bufio.Reader) (*DirectorySet, error) {
	var soi [2]byte
	if _, err := io.ReadFull(r, soi[:]); err != nil {
		return nil, err
	}

	var b DirectorySetBuilder
	var iptc, frame *Directory
	haveExif := false

SEGMENTS:
	for {
		marker, err := nextMarker(r)
		if err != nil {
			if isTruncated(err) {
				break
			}
			return nil, err
		}
		switch {
		case marker == markerEOI || marker == markerSOS:
			break SEGMENTS
		case marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7):
			continue
		}

		var lb [2]byte
		if _, err := io.ReadFull(r, lb[:]); err != nil {
			if isTruncated(err) {
				break
			}
			return nil, err
		}
		length := int(binary.BigEndian.Uint16(lb[:]))
		if length < 2 {
			return nil, fmt.Errorf("segment 0x%02x length %d: %w", marker, length, ErrMalformedContainer)
		}
		payload := make([]byte, length-2)
		if _, err := io.ReadFull(r, payload); err != nil {
			if isTruncated(err) {
				break
			}
			return nil, err
		}

		switch {
		case marker == markerAPP1 && !haveExif && bytes.HasPrefix(payload, exifHeader):
			dirs, err := decodeExif(payload[len(exifHeader):], false)
			if err != nil {
				return nil, err
			}
			b.ExifBase(dirs.base).ExifExtended(dirs.extended)
			haveExif = true
		case marker == markerAPP13:
			// A broken IPTC block is dropped like a broken EXIF block.
			dir := NewDirectory("iptc")
			if found, err := parsePhotoshop(payload, dir); err == nil && found {
				if iptc == nil {
					iptc = dir
				} else {
					iptc.merge(dir)
				}
			}
		case isSOF(marker) && frame == nil:
			frame, err = parseFrame(payload)
			if err != nil {
				return nil, err
			}
		}
	}

	if iptc != nil {
		b.IPTC(iptc)
	}
	if frame != nil {
		b.JPEGFrame(frame)
	}
	return b.Build(), nil
}

func nextMarker(r *bufio.Reader) (byte, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if c != 0xFF {
		return 0, fmt.Errorf("expected marker, found 0x%02x: %w", c, ErrMalformedContainer)
	}
	// Any number of 0xFF fill bytes may precede the marker code.
	for c == 0xFF {
		if c, err = r.ReadByte(); err != nil {
			return 0, err
		}
	}
	return c, nil
}

func isTruncated(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func parseFrame(payload []byte) (*Directory, error) {
	if len(payload) < 6 {
		return nil, fmt.Errorf("short frame header: %w", ErrMalformedContainer)
	}
	d := NewDirectory("jpeg")
	d.SetInt(TagJPEGDataPrecision, int(payload[0]))
	d.SetInt(TagJPEGImageHeight, int(binary.BigEndian.Uint16(payload[1:3])))
	d.SetInt(TagJPEGImageWidth, int(binary.BigEndian.Uint16(payload[3:5])))
	d.SetInt(TagJPEGNumComponents, int(payload[5]))
	return d, nil
}

func decodeTIFF(f io.Reader) (*DirectorySet, error) {
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	dirs, err := decodeExif(raw, true)
	if err != nil {
		return nil, err
	}
	var b DirectorySetBuilder
	b.ExifBase(dirs.base).ExifExtended(dirs.extended)
	if dirs.iptcNAA != nil {
		iptc := NewDirectory("iptc")
		if err := parseIIM(dirs.iptcNAA, iptc); err == nil {
			b.IPTC(iptc)
		}
	}
	return b.Build(), nil
}

type exifDirs struct {
	base     *Directory
	extended *Directory
	iptcNAA  []byte
}

// decodeExif decodes a TIFF structure with goexif and splits it into the
// IFD0 directory and the EXIF sub-IFD. The structure is bounds-checked
// first. Problems in the sub-IFD leave the extended directory absent.
func decodeExif(raw []byte, required bool) (dirs exifDirs, err error) {
	defer func() {
		if r := recover(); r != nil {
			dirs, err = exifDirs{}, fmt.Errorf("exif decoder panic: %v", r)
		}
	}()

	if err := checkTIFF(bytes.NewReader(raw), int64(len(raw))); err != nil {
		if required {
			return exifDirs{}, fmt.Errorf("exif: %w", err)
		}
		return exifDirs{}, nil
	}

	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		if required {
			return exifDirs{}, fmt.Errorf("exif: %w", err)
		}
		// A broken APP1 block in a JPEG is treated like a missing one.
		return exifDirs{}, nil
	}
	if x.Tiff == nil || len(x.Tiff.Dirs) == 0 {
		return exifDirs{}, nil
	}

	ifd0 := x.Tiff.Dirs[0]
	dirs.base = directoryFromTIFF("exif-base", ifd0)
	if tag := findTag(ifd0, tiffTagIPTC); tag != nil {
		dirs.iptcNAA = tag.Val
	}

	ptr := findTag(ifd0, TagExifIFDPointer)
	if ptr == nil || ptr.Format() != tiff.IntVal || ptr.Count == 0 {
		return dirs, nil
	}
	offset, err := ptr.Int64(0)
	if err != nil || offset <= 0 || offset >= int64(len(x.Raw)) {
		return dirs, nil
	}
	r := bytes.NewReader(x.Raw)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return dirs, nil
	}
	sub, _, err := tiff.DecodeDir(r, x.Tiff.Order)
	if err != nil {
		return dirs, nil
	}
	dirs.extended = directoryFromTIFF("exif-extended", sub)
	return dirs, nil
}

func findTag(dir *tiff.Dir, id uint16) *tiff.Tag {
	for _, tag := range dir.Tags {
		if tag.Id == id {
			return tag
		}
	}
	return nil
}

func directoryFromTIFF(name string, dir *tiff.Dir) *Directory {
	d := NewDirectory(name)
	for _, tag := range dir.Tags {
		switch tag.Format() {
		case tiff.IntVal:
			if tag.Count == 0 {
				continue
			}
			if v, err := tag.Int(0); err == nil {
				d.SetInt(tag.Id, v)
			}
		case tiff.StringVal:
			if v, err := tag.StringVal(); err == nil {
				d.SetString(tag.Id, v)
			}
		}
	}
	return d
}
