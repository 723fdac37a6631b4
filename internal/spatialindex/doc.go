// Package spatialindex narrows overlap evaluation to polygon pairs whose
// bounding boxes can intersect.
//
// Two implementations satisfy Index: Grid, a uniform grid keyed by a pairing
// of cell coordinates, and RTree, backed by rtreego. Both filter their
// candidates with an exact inclusive box test, so they return identical
// results and neither omits a true candidate.
package spatialindex
