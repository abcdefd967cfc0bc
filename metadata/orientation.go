package metadata

// DefaultOrientation is the EXIF code for an image stored upright.
const DefaultOrientation = 1

// NormalizeOrientation maps a raw orientation code to the range 1..8.
// Missing or out of range codes become DefaultOrientation.
func NormalizeOrientation(code int, ok bool) int {
	if !ok || code < 1 || code > 8 {
		return DefaultOrientation
	}
	return code
}

// Transposed reports whether an orientation code swaps width and height
// on display. Codes 5 to 8 are the 90 and 270 degree rotations.
func Transposed(code int) bool {
	switch code {
	case 5, 6, 7, 8:
		return true
	}
	return false
}
