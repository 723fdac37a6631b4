// Package neighbors builds the neighbor relation of a clustering run.
//
// Two features are neighbors when their bounding boxes intersect, their
// timestamps are within the time window (or either is missing), and their
// overlap ratio is at or above the threshold. Candidates come from a
// spatialindex.Index so the overlap evaluator only sees pairs whose boxes can
// touch. Only pairs i < j are evaluated; the relation is symmetric.
package neighbors
