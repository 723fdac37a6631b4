package labeler

import (
	"fmt"
)

// Noise is the label of features outside any large-enough component.
const Noise = -1

// Traversal states. Every feature ends LABELED (an id >= 0 or Noise).
const (
	unvisited = -3
	visited   = -2
)

// Graph is the read-only neighbor relation the labeler walks.
// *neighbors.Relation implements it.
type Graph interface {
	Len() int
	Neighbors(i int) []int
}

// PreconditionError describes a malformed Graph or parameter. Label panics
// with it: a bad relation is a caller bug, not a run-time condition.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "labeler precondition violated: " + e.Reason
}

func violated(format string, args ...any) {
	panic(&PreconditionError{Reason: fmt.Sprintf(format, args...)})
}

// Label assigns a cluster id to every feature of g.
//
// Features are seeded in id order. Each unvisited seed starts a breadth-first
// walk that collects its whole connected component. A component with at
// least minClusterSize members gets the next id (0, 1, ...); a smaller one is
// Noise. Ids therefore follow the lowest member id of each cluster.
func Label(g Graph, minClusterSize int) Labels {
	if minClusterSize < 1 {
		violated("min cluster size %d < 1", minClusterSize)
	}
	checkGraph(g)

	n := g.Len()
	labels := make(Labels, n)
	for i := range labels {
		labels[i] = unvisited
	}

	nextID := 0
	queue := make([]int, 0, 16)
	for seed := 0; seed < n; seed++ {
		if labels[seed] != unvisited {
			continue // Already labeled with an earlier component
		}

		queue = append(queue[:0], seed)
		labels[seed] = visited
		for head := 0; head < len(queue); head++ {
			for _, nb := range g.Neighbors(queue[head]) {
				if labels[nb] == unvisited {
					labels[nb] = visited
					queue = append(queue, nb)
				}
			}
		}

		id := Noise
		if len(queue) >= minClusterSize {
			id = nextID
			nextID++
		}
		for _, member := range queue {
			labels[member] = id
		}
	}

	return labels
}

// checkGraph panics unless every edge references a known id, is not a
// self-loop, and appears in both directions.
func checkGraph(g Graph) {
	n := g.Len()
	if n < 0 {
		violated("negative graph size %d", n)
	}

	directed := make(map[[2]int]struct{})
	for i := 0; i < n; i++ {
		for _, j := range g.Neighbors(i) {
			if j < 0 || j >= n {
				violated("feature %d has neighbor %d outside [0,%d)", i, j, n)
			}
			if j == i {
				violated("feature %d lists itself as a neighbor", i)
			}
			directed[[2]int{i, j}] = struct{}{}
		}
	}
	for e := range directed {
		if _, ok := directed[[2]int{e[1], e[0]}]; !ok {
			violated("edge %d->%d has no reverse edge", e[0], e[1])
		}
	}
}
