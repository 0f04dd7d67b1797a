package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connAt(t ConnectionType, x, y float32) *Connection {
	c := &Connection{Type: t, block: &Block{ID: NewBlockID(), Type: "test"}}
	c.SetPosition(V2{X: x, Y: y})
	return c
}

func TestYSortedListStaysSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	list := YSortedList{typ: ConnPrevious}

	var conns []*Connection
	for range 200 {
		c := connAt(ConnPrevious, rng.Float32()*1000, rng.Float32()*1000)
		list.add(c)
		conns = append(conns, c)
		require.True(t, list.IsSorted())
	}
	assert.Equal(t, 200, list.Len())

	// Duplicate y values must not confuse lookup.
	dup := connAt(ConnPrevious, 5, conns[0].Position().Y)
	list.add(dup)
	assert.True(t, list.Contains(dup))
	assert.True(t, list.Contains(conns[0]))

	rng.Shuffle(len(conns), func(i, j int) { conns[i], conns[j] = conns[j], conns[i] })
	for _, c := range conns[:100] {
		list.remove(c)
		require.True(t, list.IsSorted())
		assert.False(t, list.Contains(c))
	}
	assert.Equal(t, 101, list.Len())
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	list := YSortedList{typ: ConnNext}
	list.add(connAt(ConnNext, 0, 10))
	list.remove(connAt(ConnNext, 0, 10))
	assert.Equal(t, 1, list.Len())
}

// TestNeighboursAgainstBruteForce checks the windowed scan against a dumb
// full scan over many random layouts.
func TestNeighboursAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for range 20 {
		list := YSortedList{typ: ConnPrevious}
		var all []*Connection
		for range 150 {
			c := connAt(ConnPrevious, rng.Float32()*200, rng.Float32()*200)
			list.add(c)
			all = append(all, c)
		}

		target := connAt(ConnNext, rng.Float32()*200, rng.Float32()*200)
		radius := 10 + rng.Float32()*40

		var got []*Connection
		list.getNeighbours(target, radius, &got)

		want := make(map[*Connection]bool)
		for _, c := range all {
			dx := c.Position().X - target.Position().X
			dy := c.Position().Y - target.Position().Y
			if -radius <= dx && dx <= radius && -radius <= dy && dy <= radius {
				want[c] = true
			}
		}

		require.Len(t, got, len(want))
		for _, c := range got {
			assert.True(t, want[c])
		}
	}
}

func TestSearchForClosestAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for range 20 {
		list := YSortedList{typ: ConnOutput}
		var all []*Connection
		for range 100 {
			c := connAt(ConnOutput, rng.Float32()*100, rng.Float32()*100)
			list.add(c)
			all = append(all, c)
		}

		target := connAt(ConnInput, rng.Float32()*100, rng.Float32()*100)
		radius := float32(25)

		got := list.SearchForClosest(target, radius)

		bestDist := float64(radius)
		var want *Connection
		for _, c := range all {
			dx := float64(c.Position().X - target.Position().X)
			dy := float64(c.Position().Y - target.Position().Y)
			d := math.Sqrt(dx*dx + dy*dy)
			if d <= bestDist && (want == nil || d < bestDist) {
				want = c
				bestDist = d
			}
		}

		if want == nil {
			assert.Nil(t, got)
		} else {
			require.NotNil(t, got)
			// Distances may tie; only the distance itself is guaranteed.
			gdx := float64(got.Position().X - target.Position().X)
			gdy := float64(got.Position().Y - target.Position().Y)
			assert.InDelta(t, bestDist, math.Sqrt(gdx*gdx+gdy*gdy), 1e-4)
		}
	}
}

func TestSearchForClosestEmptyAndOutOfRange(t *testing.T) {
	list := YSortedList{typ: ConnOutput}
	target := connAt(ConnInput, 0, 0)
	assert.Nil(t, list.SearchForClosest(target, 50))

	list.add(connAt(ConnOutput, 0, 100))
	assert.Nil(t, list.SearchForClosest(target, 50))
}

func TestManagerMoveTo(t *testing.T) {
	m := NewConnectionManager()
	c := connAt(ConnPrevious, 0, 50)
	m.Add(c)

	m.MoveTo(c, V2{X: 10, Y: 80}, V2{X: 0, Y: 5})
	assert.Equal(t, V2{X: 10, Y: 85}, c.Position())
	assert.True(t, m.ListFor(ConnPrevious).Contains(c))
	assert.True(t, m.ListFor(ConnPrevious).IsSorted())

	// In drag mode, the index is not updated, only the position.
	c.SetDragMode(true)
	m.Remove(c)
	m.MoveTo(c, V2{X: 0, Y: 0}, V2{})
	assert.Equal(t, V2{}, c.Position())
	assert.False(t, m.ListFor(ConnPrevious).Contains(c))
}

func TestIsConnectionAllowed(t *testing.T) {
	m := NewConnectionManager()

	parent := func() *Block {
		def := BlockDefinition{Type: "test_stmt", HasPrevious: true, HasNext: true}
		b, err := def.Build()
		require.NoError(t, err)
		return b
	}

	a, b, c := parent(), parent(), parent()
	a.Next.SetPosition(V2{X: 0, Y: 0})
	b.Previous.SetPosition(V2{X: 0, Y: 5})
	c.Previous.SetPosition(V2{X: 0, Y: 8})

	assert.True(t, m.IsConnectionAllowed(a.Next, b.Previous, 20, false))

	t.Run("distance", func(t *testing.T) {
		assert.False(t, m.IsConnectionAllowed(a.Next, b.Previous, 3, false))
	})

	t.Run("occupied candidate", func(t *testing.T) {
		require.NoError(t, c.Next.Connect(b.Previous))
		defer c.Next.Disconnect()
		assert.False(t, m.IsConnectionAllowed(a.Next, b.Previous, 20, false))
	})

	t.Run("incompatible", func(t *testing.T) {
		assert.False(t, m.IsConnectionAllowed(a.Next, c.Next, 20, false))
	})

	t.Run("shadow parent", func(t *testing.T) {
		shadowParent, realChild := parent(), parent()
		shadowParent.MarkShadow()
		shadowParent.Next.SetPosition(V2{X: 0, Y: 0})
		realChild.Previous.SetPosition(V2{X: 0, Y: 2})

		// A shadow block may not become the parent of a real block...
		assert.False(t, m.IsConnectionAllowed(realChild.Previous, shadowParent.Next, 20, false))
		assert.False(t, m.IsConnectionAllowed(shadowParent.Next, realChild.Previous, 20, false))
		// ...unless the caller is deliberately replacing a shadow default.
		assert.True(t, m.IsConnectionAllowed(realChild.Previous, shadowParent.Next, 20, true))

		// A real parent over a shadow child is always fine.
		shadowChild := parent()
		shadowChild.MarkShadow()
		shadowChild.Previous.SetPosition(V2{X: 0, Y: 2})
		assert.True(t, m.IsConnectionAllowed(a.Next, shadowChild.Previous, 20, false))

		// So is shadow over shadow, even at distance zero.
		shadowChild.Previous.SetPosition(V2{X: 0, Y: 0})
		assert.True(t, m.IsConnectionAllowed(shadowParent.Next, shadowChild.Previous, 20, false))
	})
}

func TestClosestAllowed(t *testing.T) {
	m := NewConnectionManager()

	stmt := func(y float32) *Block {
		def := BlockDefinition{Type: "test_stmt", HasPrevious: true, HasNext: true}
		b, err := def.Build()
		require.NoError(t, err)
		b.Previous.SetPosition(V2{X: 0, Y: y})
		b.Next.SetPosition(V2{X: 0, Y: y + 10})
		m.Add(b.Previous)
		m.Add(b.Next)
		return b
	}

	far := stmt(100)
	near := stmt(30)
	_ = far

	moving := connAt(ConnNext, 0, 25)
	got := m.ClosestAllowed(moving, 50, false)
	require.NotNil(t, got)
	assert.Same(t, near.Previous, got)

	assert.Nil(t, m.ClosestAllowed(moving, 2, false))
}
