package metadata

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// OutcomeKind says which tier produced a result, if any.
type OutcomeKind int

const (
	// Absent means neither tier could describe the file.
	Absent OutcomeKind = iota
	// Resolved means the structured metadata tier succeeded.
	Resolved
	// Degraded means only the header probe succeeded.
	Degraded
)

func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Degraded:
		return "degraded"
	default:
		return "absent"
	}
}

// Outcome is the result of resolving one file. Info is only meaningful
// when Kind is not Absent. Cause holds the reason the structured tier was
// abandoned, for reporting only.
type Outcome struct {
	Kind  OutcomeKind
	Info  ImageInformation
	Cause error
}

// Information returns the resolved value and whether there is one.
func (o Outcome) Information() (ImageInformation, bool) {
	return o.Info, o.Kind != Absent
}

// Resolver runs the two-tier cascade: a full structured decode, and if any
// step of it fails, a header probe for dimensions only. A tier either
// produces every field or is discarded whole.
//
// A Resolver holds no state between calls and may be shared between
// goroutines.
type Resolver struct {
	Decoder    Decoder
	Prober     Prober
	Attributes AttributeReader
}

// NewResolver returns a Resolver reading from the local filesystem.
func NewResolver() *Resolver {
	return &Resolver{
		Decoder:    StructuredDecoder{},
		Prober:     HeaderProber{},
		Attributes: FileAttributes{},
	}
}

var defaultResolver = NewResolver()

// Resolve resolves path with the default Resolver.
func Resolve(logger hclog.Logger, path string) Outcome {
	return defaultResolver.Resolve(logger, path)
}

// Resolve never fails: problems with the file show up as a Degraded or
// Absent outcome.
func (r *Resolver) Resolve(logger hclog.Logger, path string) Outcome {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	info, err := r.resolveStructured(logger, path)
	if err == nil {
		return Outcome{Kind: Resolved, Info: info}
	}
	logger.Debug("Unable to get structured metadata, probing header", "path", path, "error", err)

	dims, ok := r.Prober.Probe(path)
	if !ok {
		logger.Warn("Unable to get image information", "path", path)
		return Outcome{Kind: Absent, Cause: err}
	}
	date, _ := r.creationTime(logger, path)
	return Outcome{
		Kind:  Degraded,
		Info:  NewImageInformation(DefaultOrientation, dims.Width, dims.Height, false, "", date),
		Cause: err,
	}
}

func (r *Resolver) resolveStructured(logger hclog.Logger, path string) (ImageInformation, error) {
	set, err := r.Decoder.Decode(path)
	if err != nil {
		return ImageInformation{}, err
	}

	// Dimensions first, so a discarded tier reads no file attributes.
	dims, err := frameDimensions(set)
	if err != nil {
		return ImageInformation{}, err
	}

	code := orientation(set)
	var date time.Time
	if t, ok := r.resolveDate(logger, path, set); ok {
		date = t
	}
	deleteTag := hasDeleteTag(set)
	id := uniqueID(set)
	return NewImageInformation(code, dims.Width, dims.Height, deleteTag, id, date), nil
}
