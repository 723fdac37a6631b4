// Package labeler turns a neighbor relation into cluster ids.
//
// It is DBSCAN-like connectivity without the core-point distinction: any two
// related features reach each other, so clusters are the connected
// components of the relation, filtered by a minimum size.
// Key types: Graph, Labels.
//
// No geometry or time handling lives here; the relation is the only input.
package labeler
