package metadata

// Dimensions is an image size in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func uniqueID(set *DirectorySet) string {
	dir, ok := set.ExifExtended()
	if !ok {
		return ""
	}
	id, ok := dir.String(TagImageUniqueID)
	if !ok {
		return ""
	}
	return id
}

// frameDimensions reads width and height from the JPEG frame directory.
// Any other container, or a frame without usable sizes, yields
// ErrDimensionUnavailable.
func frameDimensions(set *DirectorySet) (Dimensions, error) {
	dir, ok := set.JPEGFrame()
	if !ok {
		return Dimensions{}, ErrDimensionUnavailable
	}
	w, wok := dir.Int(TagJPEGImageWidth)
	h, hok := dir.Int(TagJPEGImageHeight)
	if !wok || !hok || w <= 0 || h <= 0 {
		return Dimensions{}, ErrDimensionUnavailable
	}
	return Dimensions{Width: w, Height: h}, nil
}

func orientation(set *DirectorySet) int {
	dir, ok := set.ExifBase()
	if !ok {
		return DefaultOrientation
	}
	return NormalizeOrientation(dir.Int(TagOrientation))
}
