package graph

import "errors"

// ErrNotFound is the NotFound error kind: a node lookup missed, or a
// nearest-node query was made against a graph with no nodes.
var ErrNotFound = errors.New("graph: node not found")
