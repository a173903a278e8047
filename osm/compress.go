package osm

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
)

// decompress peeks at the stream's magic bytes and, if it recognises a
// gzip or bzip2 header, wraps r in the matching transparent decompressor.
// Any other stream (including an already-uncompressed OSM XML or PBF
// stream) is returned unchanged. This is applied before format detection
// so that e.g. a gzipped PBF file is sniffed correctly underneath.
func decompress(r *bufio.Reader) (*bufio.Reader, error) {
	magic, err := r.Peek(3)
	if err != nil {
		// fewer than 3 bytes total; too short to be compressed, let the
		// caller's parser surface whatever is wrong.
		return r, nil
	}
	switch {
	case magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrMalformedFile, err)
		}
		return bufio.NewReader(gz), nil
	case magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h':
		return bufio.NewReader(bzip2.NewReader(r)), nil
	default:
		return r, nil
	}
}
