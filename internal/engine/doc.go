// Package engine runs one spatio-temporal clustering pass: it validates the
// parameters and input, prepares geometry, indexes bounding boxes, builds
// the neighbor relation and labels its connected components.
//
// A run is a pure function of its input and parameters. Labels, warnings
// and statistics other than durations are identical across repeated runs,
// worker counts and index kinds.
package engine
