package openpl

import "errors"

// ErrInvalidParam reports that a caller-supplied argument failed validation
// (null pointer, too-small mesh, non-multiple-of-3 index count, a cell larger
// than the domain, an out-of-range query index). The caller is expected to
// fix the argument and retry.
var ErrInvalidParam = errors.New("openpl: invalid parameter")

// ErrGeneric reports an internal invariant violation, or that no work was
// possible (no meshes registered at voxelise time, a degenerate lattice
// extent, an out-of-range index for a removal). Not retryable without
// changing state.
var ErrGeneric = errors.New("openpl: operation failed")
