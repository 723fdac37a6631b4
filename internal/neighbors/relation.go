package neighbors

import (
	"fmt"
	"slices"
)

// Relation is the symmetric neighbor relation over feature ids. It is built
// once and read-only afterwards.
type Relation struct {
	adj   [][]int // ascending neighbor ids per feature
	edges int
}

// fromRows builds a Relation from per-feature rows holding only higher ids,
// each row already ascending. Rows are consumed in id order, so every
// adjacency list comes out ascending too.
func fromRows(rows [][]int) *Relation {
	r := &Relation{adj: make([][]int, len(rows))}
	for i, row := range rows {
		for _, j := range row {
			r.adj[i] = append(r.adj[i], j)
			r.adj[j] = append(r.adj[j], i)
			r.edges++
		}
	}
	return r
}

// NewRelation builds a Relation over n features from an explicit edge list.
// Duplicate edges collapse; self-loops and out-of-range ids are errors.
func NewRelation(n int, edges [][2]int) (*Relation, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative feature count %d", n)
	}
	rows := make([][]int, n)
	for _, e := range edges {
		i, j := e[0], e[1]
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("edge (%d,%d) references unknown feature (n=%d)", i, j, n)
		}
		if i == j {
			return nil, fmt.Errorf("self-loop on feature %d", i)
		}
		if i > j {
			i, j = j, i
		}
		rows[i] = append(rows[i], j)
	}
	for i := range rows {
		slices.Sort(rows[i])
		rows[i] = slices.Compact(rows[i])
	}
	return fromRows(rows), nil
}

// Len returns the number of features the relation covers.
func (r *Relation) Len() int { return len(r.adj) }

// Neighbors returns the ascending neighbor ids of feature i. The slice must
// not be modified.
func (r *Relation) Neighbors(i int) []int { return r.adj[i] }

// Degree returns the number of neighbors of feature i.
func (r *Relation) Degree(i int) int { return len(r.adj[i]) }

// NumEdges returns the number of undirected edges.
func (r *Relation) NumEdges() int { return r.edges }

// HasEdge reports whether i and j are neighbors.
func (r *Relation) HasEdge(i, j int) bool {
	if i < 0 || i >= len(r.adj) {
		return false
	}
	_, found := slices.BinarySearch(r.adj[i], j)
	return found
}

// Edges returns every undirected edge once as (low, high), ordered by low
// then high.
func (r *Relation) Edges() [][2]int {
	out := make([][2]int, 0, r.edges)
	for i, ns := range r.adj {
		for _, j := range ns {
			if j > i {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}
