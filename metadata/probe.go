package metadata

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	// Header decoders registered with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xtiff "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Prober determines pixel dimensions from a file's format header alone.
type Prober interface {
	Probe(path string) (Dimensions, bool)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(path string) (Dimensions, bool)

func (f ProberFunc) Probe(path string) (Dimensions, bool) {
	return f(path)
}

// HeaderProber sniffs the format by magic bytes and reads only as much of
// the header as the format needs to report its size.
type HeaderProber struct{}

func (HeaderProber) Probe(path string) (Dimensions, bool) {
	dims, _, err := ProbeHeader(path)
	return dims, err == nil
}

// ProbeHeader is like HeaderProber.Probe but also reports the detected
// format name and why probing failed.
func ProbeHeader(path string) (Dimensions, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, "", err
	}
	defer f.Close()

	var magic [4]byte
	n, _ := io.ReadFull(f, magic[:])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}, "", err
	}

	var cfg image.Config
	var format string
	if isTIFF(magic[:n]) {
		format = "tiff"
		cfg, err = probeTIFF(f)
	} else {
		cfg, format, err = image.DecodeConfig(bufio.NewReader(f))
	}
	if err != nil {
		return Dimensions{}, "", fmt.Errorf("%w: %v", ErrProbeUnavailable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, format, fmt.Errorf("%w: %s header reports %dx%d", ErrProbeUnavailable, format, cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}

// probeTIFF hands the file itself to the TIFF decoder, which then reads
// at offsets instead of buffering up to them, after the IFD entries have
// been bounds-checked against the file size.
func probeTIFF(f *os.File) (image.Config, error) {
	st, err := f.Stat()
	if err != nil {
		return image.Config{}, err
	}
	if err := checkTIFF(f, st.Size()); err != nil {
		return image.Config{}, err
	}
	return xtiff.DecodeConfig(f)
}
