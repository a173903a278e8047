package livegraph

import "errors"

// ErrIO marks a failure talking to the tile cache directory or the tile
// fetcher's HTTP transport.
var ErrIO = errors.New("livegraph: io error")
