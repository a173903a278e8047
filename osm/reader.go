package osm

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
)

// Format selects which container the input stream holds. FormatAuto
// sniffs the (post-decompression) stream's leading byte.
type Format int

const (
	FormatAuto Format = iota
	FormatXML
	FormatPBF
)

type featureSource interface {
	Next() (Feature, error)
}

// Reader is a pull-based, lazy iterator over the features of an OSM XML or
// OSM PBF stream: Next returns one Feature at a time and io.EOF once
// exhausted, never materialising the whole input in memory. Gzip and
// bzip2 are transparently decompressed regardless of the requested
// Format.
type Reader struct {
	src    featureSource
	logger *slog.Logger
}

// ReaderOption configures NewReader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	logger *slog.Logger
}

// WithLogger overrides the logger used for warning-level, non-fatal
// conditions (currently: an OSM PBF blob of an unrecognised type, which
// §4.5 specifies is skipped rather than treated as an error).
func WithLogger(l *slog.Logger) ReaderOption {
	return func(c *readerConfig) { c.logger = l }
}

// NewReader wraps r as a Reader, auto-detecting XML vs PBF (after
// transparently decompressing gzip/bzip2) when format is FormatAuto.
func NewReader(r io.Reader, format Format, opts ...ReaderOption) (*Reader, error) {
	cfg := readerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	dr, err := decompress(br)
	if err != nil {
		return nil, err
	}

	if format == FormatAuto {
		format, err = sniffFormat(dr)
		if err != nil {
			return nil, err
		}
	}

	var src featureSource
	switch format {
	case FormatXML:
		src = newXMLSource(dr)
	case FormatPBF:
		src = newPBFSource(dr, cfg.logger)
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrMalformedFile, format)
	}

	return &Reader{src: src, logger: cfg.logger}, nil
}

// Next returns the next feature in the stream, or io.EOF once exhausted.
// A malformed individual record is returned as an error wrapping
// ErrMalformedFeature; the caller may call Next again to attempt to
// continue past it when the underlying format permits resynchronising
// (PBF: yes, at the next block boundary; XML: generally no, since a
// corrupt element leaves the token stream in an inconsistent position).
func (r *Reader) Next() (Feature, error) {
	return r.src.Next()
}

func sniffFormat(r *bufio.Reader) (Format, error) {
	b, err := r.Peek(1)
	if err != nil {
		if err == io.EOF {
			return FormatXML, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if b[0] == '<' {
		return FormatXML, nil
	}
	return FormatPBF, nil
}

// ReadAll drains r into a slice. Intended for tests and small inputs; the
// whole point of Reader is that production callers should prefer Next in
// a loop so memory stays bounded.
func ReadAll(r *Reader) ([]Feature, error) {
	var out []Feature
	for {
		f, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}
