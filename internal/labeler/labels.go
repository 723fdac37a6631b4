package labeler

// Labels holds one cluster id per feature: >= 0 for a cluster, Noise
// otherwise.
type Labels []int

// Clusters returns the number of distinct cluster ids.
func (l Labels) Clusters() int {
	maxID := Noise
	for _, id := range l {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Noise returns the number of features labeled Noise.
func (l Labels) Noise() int {
	count := 0
	for _, id := range l {
		if id == Noise {
			count++
		}
	}
	return count
}

// Members returns the ascending feature ids carrying label id.
func (l Labels) Members(id int) []int {
	var out []int
	for i, got := range l {
		if got == id {
			out = append(out, i)
		}
	}
	return out
}

// Sizes returns the member count of each cluster, indexed by cluster id.
func (l Labels) Sizes() []int {
	sizes := make([]int, l.Clusters())
	for _, id := range l {
		if id >= 0 {
			sizes[id]++
		}
	}
	return sizes
}
