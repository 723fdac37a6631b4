package labeler

// ClustererInterface abstracts the labeling step so the engine can be run
// with a different component strategy in tests.
type ClustererInterface interface {
	// Cluster labels every feature of g.
	Cluster(g Graph) Labels

	// GetMinClusterSize returns the current minimum cluster size.
	GetMinClusterSize() int

	// SetMinClusterSize updates the minimum cluster size.
	SetMinClusterSize(size int)
}

// ComponentLabeler implements ClustererInterface with Label.
type ComponentLabeler struct {
	minClusterSize int
}

// NewComponentLabeler creates a labeler with the given minimum cluster size.
func NewComponentLabeler(minClusterSize int) *ComponentLabeler {
	return &ComponentLabeler{minClusterSize: minClusterSize}
}

// Cluster labels every feature of g. It panics with *PreconditionError on a
// malformed graph.
func (c *ComponentLabeler) Cluster(g Graph) Labels {
	return Label(g, c.minClusterSize)
}

// GetMinClusterSize returns the current minimum cluster size.
func (c *ComponentLabeler) GetMinClusterSize() int {
	return c.minClusterSize
}

// SetMinClusterSize updates the minimum cluster size.
func (c *ComponentLabeler) SetMinClusterSize(size int) {
	c.minClusterSize = size
}

// Verify at compile time that *ComponentLabeler implements ClustererInterface.
var _ ClustererInterface = (*ComponentLabeler)(nil)
