// Package palette assigns display colors to cluster ids. An Assigner is an
// explicit per-run service: colors are stable for the lifetime of a run and
// re-drawn after Reset.
package palette

import (
	"math"
	"math/rand"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// NoiseColor is the fixed color of features outside every cluster.
const NoiseColor = "#9e9e9e"

// goldenRatio spreads consecutive ids around the hue circle.
const goldenRatio = 0.618033988749895

// Assigner maps cluster ids to hex colors. It is safe for concurrent use.
type Assigner struct {
	mu         sync.Mutex
	rng        *rand.Rand
	hueOffset  float64
	saturation float64
	value      float64
	colors     map[int]string
}

// NewAssigner creates an Assigner whose colors are drawn from seed.
func NewAssigner(seed int64) *Assigner {
	a := &Assigner{rng: rand.New(rand.NewSource(seed))}
	a.reset()
	return a
}

// Color returns the color of cluster id. Negative ids get NoiseColor. The
// same id always yields the same color until Reset.
func (a *Assigner) Color(id int) string {
	if id < 0 {
		return NoiseColor
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.colors[id]; ok {
		return c
	}
	hue := math.Mod(a.hueOffset+float64(id)*goldenRatio, 1) * 360
	c := colorful.Hsv(hue, a.saturation, a.value).Hex()
	a.colors[id] = c
	return c
}

// Colors returns the color of each label in order.
func (a *Assigner) Colors(labels []int) []string {
	out := make([]string, len(labels))
	for i, id := range labels {
		out[i] = a.Color(id)
	}
	return out
}

// Reset forgets every assignment and draws a new color scheme. Call it when
// a new run starts.
func (a *Assigner) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// Len returns the number of cluster ids assigned since the last Reset.
func (a *Assigner) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.colors)
}

func (a *Assigner) reset() {
	a.hueOffset = a.rng.Float64()
	a.saturation = 0.55 + 0.3*a.rng.Float64()
	a.value = 0.75 + 0.2*a.rng.Float64()
	a.colors = make(map[int]string)
}
