package osm

import "errors"

// Error kinds per the reader's error taxonomy. Each is a sentinel suitable
// for errors.Is; concrete errors returned by the reader wrap one of these
// with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrMalformedFeature: a single node/way/relation record could not be
	// decoded (bad numeric attribute, truncated tag list, ...).
	ErrMalformedFeature = errors.New("osm: malformed feature")
	// ErrMalformedFile: the container framing itself is truncated or
	// inconsistent (short blob, bad length prefix, blob before header, ...).
	ErrMalformedFile = errors.New("osm: malformed file")
	// ErrUnsupportedFeature: the PBF header declares a required_features
	// entry this reader does not implement.
	ErrUnsupportedFeature = errors.New("osm: unsupported feature")
	// ErrIO: the underlying stream failed.
	ErrIO = errors.New("osm: io error")
)
