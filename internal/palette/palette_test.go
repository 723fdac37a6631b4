package palette

import (
	"sync"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssigner_StableWithinRun(t *testing.T) {
	a := NewAssigner(1)
	first := a.Color(3)
	_ = a.Color(0)
	assert.Equal(t, first, a.Color(3))
	assert.Equal(t, 2, a.Len())

	_, err := colorful.Hex(first)
	require.NoError(t, err)
}

func TestAssigner_OrderIndependent(t *testing.T) {
	a, b := NewAssigner(9), NewAssigner(9)
	up := []string{a.Color(0), a.Color(1), a.Color(2)}
	down := []string{b.Color(2), b.Color(1), b.Color(0)}
	assert.Equal(t, up, []string{down[2], down[1], down[0]})
}

func TestAssigner_DistinctNeighbors(t *testing.T) {
	a := NewAssigner(4)
	seen := make(map[string]bool)
	for id := 0; id < 20; id++ {
		c := a.Color(id)
		assert.False(t, seen[c], "id %d reuses color %s", id, c)
		seen[c] = true
	}
}

func TestAssigner_Noise(t *testing.T) {
	a := NewAssigner(2)
	assert.Equal(t, NoiseColor, a.Color(-1))
	assert.Zero(t, a.Len())
	assert.Equal(t, []string{NoiseColor, a.Color(0), NoiseColor}, a.Colors([]int{-1, 0, -1}))
}

func TestAssigner_Reset(t *testing.T) {
	a := NewAssigner(5)
	before := a.Colors([]int{0, 1, 2})
	a.Reset()
	assert.Zero(t, a.Len())
	after := a.Colors([]int{0, 1, 2})
	assert.NotEqual(t, before, after)

	// The same seed replays the same sequence of schemes.
	b := NewAssigner(5)
	assert.Equal(t, before, b.Colors([]int{0, 1, 2}))
	b.Reset()
	assert.Equal(t, after, b.Colors([]int{0, 1, 2}))
}

func TestAssigner_Concurrent(t *testing.T) {
	a := NewAssigner(7)
	want := a.Color(11)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := 0; id < 50; id++ {
				_ = a.Color(id)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, want, a.Color(11))
	assert.Equal(t, 50, a.Len())
}
