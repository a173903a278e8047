package osmgraph

import "errors"

// ErrInvalidPenalty is returned when a Profile returns a way penalty that
// is not finite or smaller than 1.0 — a contract violation in the profile
// itself, not a data problem, so building aborts rather than skipping.
var ErrInvalidPenalty = errors.New("osmgraph: profile returned an invalid way penalty")

// ErrMalformedRestriction marks a turn-restriction relation that could not
// be resolved into a node chain (missing/duplicate from/via/to members,
// disjoined route, or a reference to an unknown node/way). Such relations
// are skipped with a logged warning rather than aborting the build.
var ErrMalformedRestriction = errors.New("osmgraph: malformed turn restriction")
