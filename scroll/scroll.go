// Package scroll tracks the first visible line of a paginated log.
//
// Every operation keeps the position inside [0, max(0, total-capacity)], where
// total is the wrapped line count of the log and capacity the number of lines
// the display shows at once. Requests past either end are clamped, never
// rejected.
package scroll

// State is a scroll offset in wrapped lines. The zero value is at the top.
type State struct {
	position int
}

// Bound returns the largest valid position for the given sizes.
func Bound(total, capacity int) int {
	if total > capacity {
		return total - capacity
	}
	return 0
}

// Position returns the index of the first visible line.
func (s *State) Position() int {
	return s.position
}

// Up moves one line towards the top.
func (s *State) Up() bool {
	if s.position == 0 {
		return false
	}
	s.position--
	return true
}

// Down moves one line towards the bottom.
func (s *State) Down(total, capacity int) bool {
	if s.position >= Bound(total, capacity) {
		return s.Clamp(total, capacity)
	}
	s.position++
	return true
}

// Top jumps to the first line.
func (s *State) Top() bool {
	return s.set(0)
}

// Bottom jumps to the last page.
func (s *State) Bottom(total, capacity int) bool {
	return s.set(Bound(total, capacity))
}

// FollowLatest moves to the last page when the log overflows the display so
// the newest entry is visible; a log that fits leaves the position alone.
func (s *State) FollowLatest(total, capacity int) bool {
	if total > capacity {
		return s.set(total - capacity)
	}
	return s.Clamp(total, capacity)
}

// Clamp pulls the position back inside the valid range.
func (s *State) Clamp(total, capacity int) bool {
	if b := Bound(total, capacity); s.position > b {
		return s.set(b)
	}
	return false
}

func (s *State) set(p int) bool {
	if s.position == p {
		return false
	}
	s.position = p
	return true
}
