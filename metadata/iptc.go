package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	iimTagMarker       = 0x1C
	iimApplicationRec  = 2
	iimRecordVersion   = 0
	irbIPTCResourceID  = 0x0404
	tiffTagIPTC        = 0x83BB
	irbSignatureLength = 4
)

var (
	photoshopHeader = []byte("Photoshop 3.0\x00")
	irbSignature    = []byte("8BIM")
)

// parsePhotoshop walks the image resource blocks of an APP13 payload and
// feeds every IPTC-NAA block to parseIIM. It reports whether an IPTC
// block was found.
func parsePhotoshop(payload []byte, dir *Directory) (bool, error) {
	if !bytes.HasPrefix(payload, photoshopHeader) {
		return false, nil
	}
	data := payload[len(photoshopHeader):]
	found := false
	for len(data) >= irbSignatureLength+2 {
		if !bytes.Equal(data[:irbSignatureLength], irbSignature) {
			break
		}
		id := binary.BigEndian.Uint16(data[4:6])
		data = data[6:]

		// Pascal string name, padded so that length byte plus name is even.
		if len(data) < 1 {
			return found, fmt.Errorf("truncated resource name: %w", ErrMalformedContainer)
		}
		nameLen := int(data[0]) + 1
		if nameLen%2 != 0 {
			nameLen++
		}
		if len(data) < nameLen+4 {
			return found, fmt.Errorf("truncated resource header: %w", ErrMalformedContainer)
		}
		data = data[nameLen:]

		size := int(binary.BigEndian.Uint32(data[:4]))
		data = data[4:]
		if size < 0 || size > len(data) {
			return found, fmt.Errorf("resource 0x%04x overruns segment: %w", id, ErrMalformedContainer)
		}
		if id == irbIPTCResourceID {
			if err := parseIIM(data[:size], dir); err != nil {
				return true, err
			}
			found = true
		}
		if size%2 != 0 {
			size++
		}
		if size > len(data) {
			break
		}
		data = data[size:]
	}
	return found, nil
}

// parseIIM reads IPTC-IIM datasets. Application record datasets are stored
// as text under (record << 8) | dataset; repeatable datasets such as
// keywords accumulate.
func parseIIM(data []byte, dir *Directory) error {
	for len(data) >= 5 {
		if data[0] != iimTagMarker {
			// Trailing padding after the last dataset.
			return nil
		}
		record, dataset := data[1], data[2]
		size := int(binary.BigEndian.Uint16(data[3:5]))
		data = data[5:]
		if size&0x8000 != 0 {
			n := size & 0x7FFF
			if n > 4 || len(data) < n {
				return fmt.Errorf("bad extended dataset length: %w", ErrMalformedContainer)
			}
			size = 0
			for _, b := range data[:n] {
				size = size<<8 | int(b)
			}
			data = data[n:]
		}
		if size > len(data) {
			return fmt.Errorf("dataset %d:%d overruns block: %w", record, dataset, ErrMalformedContainer)
		}
		if record == iimApplicationRec && dataset != iimRecordVersion {
			dir.AddString(uint16(record)<<8|uint16(dataset), string(data[:size]))
		}
		data = data[size:]
	}
	return nil
}
