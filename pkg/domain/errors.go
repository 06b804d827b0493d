package domain

import "errors"

// ErrDuplicateNodeID is returned in strict mode when two nodes share an identifier.
var ErrDuplicateNodeID = errors.New("duplicate node id")

// ErrUnknownNodeType is returned when a node carries a type tag outside NodeTypes.
var ErrUnknownNodeType = errors.New("unknown node type")

// ErrNoHandler is returned when an event matches no entry of the tree.
var ErrNoHandler = errors.New("no handler for event")

// ErrFlowNotFound is returned by loaders when the graph source does not exist.
var ErrFlowNotFound = errors.New("flow not found")
