package scroll

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBound(t *testing.T) {
	tests := []struct {
		total, capacity, want int
	}{
		{0, 8, 0},
		{8, 8, 0},
		{9, 8, 1},
		{20, 8, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bound(tt.total, tt.capacity), "Bound(%d, %d)", tt.total, tt.capacity)
	}
}

func TestUpStopsAtTop(t *testing.T) {
	var s State
	assert.False(t, s.Up())
	assert.Equal(t, 0, s.Position())

	s.position = 2
	assert.True(t, s.Up())
	assert.True(t, s.Up())
	assert.False(t, s.Up())
	assert.Equal(t, 0, s.Position())
}

func TestDownStopsAtBottom(t *testing.T) {
	var s State
	for i := 0; i < 5; i++ {
		s.Down(10, 8)
	}
	assert.Equal(t, 2, s.Position())
	assert.False(t, s.Down(10, 8))
}

func TestDownWhenContentFits(t *testing.T) {
	var s State
	assert.False(t, s.Down(3, 8))
	assert.Equal(t, 0, s.Position())
}

func TestTopAndBottomAreIdempotent(t *testing.T) {
	var s State

	assert.True(t, s.Bottom(20, 8))
	assert.Equal(t, 12, s.Position())
	assert.False(t, s.Bottom(20, 8))
	assert.Equal(t, 12, s.Position())

	assert.True(t, s.Top())
	assert.Equal(t, 0, s.Position())
	assert.False(t, s.Top())
	assert.Equal(t, 0, s.Position())
}

func TestFollowLatest(t *testing.T) {
	var s State

	// Ten single-line messages on an eight-line display.
	for total := 1; total <= 10; total++ {
		s.FollowLatest(total, 8)
		if total <= 8 {
			assert.Equal(t, 0, s.Position(), "after %d messages", total)
		}
	}
	assert.Equal(t, 2, s.Position())
}

func TestFollowLatestAfterScrollingUp(t *testing.T) {
	var s State
	s.FollowLatest(20, 8)
	s.Top()

	s.FollowLatest(21, 8)
	assert.Equal(t, 13, s.Position())
}

func TestClamp(t *testing.T) {
	s := State{position: 9}
	assert.True(t, s.Clamp(10, 8))
	assert.Equal(t, 2, s.Position())
	assert.False(t, s.Clamp(10, 8))
}

func TestInvariantHoldsForRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var s State
	total, capacity := 0, 8

	for i := 0; i < 5000; i++ {
		switch rng.Intn(6) {
		case 0:
			s.Up()
		case 1:
			s.Down(total, capacity)
		case 2:
			s.Top()
		case 3:
			s.Bottom(total, capacity)
		case 4:
			total += rng.Intn(3) + 1
			s.FollowLatest(total, capacity)
		case 5:
			capacity = rng.Intn(12) + 1
			s.Clamp(total, capacity)
		}

		p := s.Position()
		if p < 0 || p > Bound(total, capacity) {
			t.Fatalf("step %d: position %d outside [0, %d] (total=%d capacity=%d)",
				i, p, Bound(total, capacity), total, capacity)
		}
	}
}
