package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	tagGPSIFDPointer     = 0x8825
	tagInteropIFDPointer = 0xA005

	// Upper bound on the IFDs followed in one file, chained or nested.
	maxIFDs = 64
)

// Byte sizes of the TIFF field types. Unknown types carry no value data.
var tiffTypeSize = map[uint16]uint64{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1,
	7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

// checkTIFF walks the IFD chain and the EXIF, GPS and interoperability
// sub-IFDs of a TIFF structure and rejects any entry table or value that
// does not fit inside size bytes, as well as IFD loops. Decoders size
// their buffers from the declared counts.
func checkTIFF(r io.ReaderAt, size int64) error {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return fmt.Errorf("short tiff header: %w", ErrMalformedContainer)
	}
	var order binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return fmt.Errorf("bad tiff byte order: %w", ErrMalformedContainer)
	}

	pending := []uint32{order.Uint32(hdr[4:])}
	seen := make(map[uint32]bool)
	for len(pending) > 0 {
		off := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if off == 0 {
			continue
		}
		if seen[off] {
			return fmt.Errorf("ifd loop at offset %d: %w", off, ErrMalformedContainer)
		}
		seen[off] = true
		if len(seen) > maxIFDs {
			return fmt.Errorf("more than %d ifds: %w", maxIFDs, ErrMalformedContainer)
		}

		next, subs, err := checkIFD(r, uint64(size), order, off)
		if err != nil {
			return err
		}
		pending = append(pending, subs...)
		pending = append(pending, next)
	}
	return nil
}

func checkIFD(r io.ReaderAt, size uint64, order binary.ByteOrder, off uint32) (uint32, []uint32, error) {
	start := uint64(off)
	if start+2 > size {
		return 0, nil, fmt.Errorf("ifd offset %d beyond end: %w", off, ErrMalformedContainer)
	}
	var nb [2]byte
	if _, err := r.ReadAt(nb[:], int64(start)); err != nil {
		return 0, nil, fmt.Errorf("read ifd: %w", ErrMalformedContainer)
	}
	n := uint64(order.Uint16(nb[:]))
	end := start + 2 + 12*n
	if end+4 > size {
		return 0, nil, fmt.Errorf("ifd at %d overruns file: %w", off, ErrMalformedContainer)
	}

	table := make([]byte, 12*n+4)
	if _, err := r.ReadAt(table, int64(start+2)); err != nil {
		return 0, nil, fmt.Errorf("read ifd: %w", ErrMalformedContainer)
	}

	var subs []uint32
	for i := uint64(0); i < n; i++ {
		e := table[12*i : 12*i+12]
		tag := order.Uint16(e[0:2])
		typ := order.Uint16(e[2:4])
		count := uint64(order.Uint32(e[4:8]))
		if ts, ok := tiffTypeSize[typ]; ok && ts*count > 4 {
			length := ts * count
			valOff := uint64(order.Uint32(e[8:12]))
			if valOff+length > size {
				return 0, nil, fmt.Errorf("tag 0x%04x value of %d bytes overruns file: %w", tag, length, ErrMalformedContainer)
			}
		}
		switch tag {
		case TagExifIFDPointer, tagGPSIFDPointer, tagInteropIFDPointer:
			// Pointers out of range are left to the decoder, which reports
			// them without reading anything.
			if (typ == 4 || typ == 13) && count > 0 {
				if p := order.Uint32(e[8:12]); uint64(p) < size {
					subs = append(subs, p)
				}
			}
		}
	}
	return order.Uint32(table[12*n:]), subs, nil
}
