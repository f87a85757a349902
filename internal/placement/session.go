package placement

import (
	"github.com/1broseidon/wlshell/internal/desktop"
)

// DefaultMemoLimit bounds the number of memoized cells kept by a session.
const DefaultMemoLimit = 256

// Session is the placement state owned by the compositor: the window
// counter, the ordinal given to each placed window, and the memo of cells
// per ordinal. It is only used from the event loop goroutine.
type Session struct {
	counter  int
	ordinals map[desktop.SurfaceID]int
	memo     map[int]Cell
	order    []int
	limit    int
}

// NewSession returns an empty session. A limit of zero keeps every cell.
func NewSession(limit int) *Session {
	if limit < 0 {
		limit = 0
	}
	return &Session{
		ordinals: make(map[desktop.SurfaceID]int),
		memo:     make(map[int]Cell),
		limit:    limit,
	}
}

// Ordinal returns the ordinal of the window with the given surface id,
// assigning the next one the first time the window is seen.
func (s *Session) Ordinal(id desktop.SurfaceID) int {
	if n, ok := s.ordinals[id]; ok {
		return n
	}
	n := s.Next()
	s.ordinals[id] = n
	return n
}

// Lookup returns the ordinal of a window without assigning one.
func (s *Session) Lookup(id desktop.SurfaceID) (int, bool) {
	n, ok := s.ordinals[id]
	return n, ok
}

// Next advances the counter.
func (s *Session) Next() int {
	s.counter++
	return s.counter
}

// Forget drops the ordinal of a window that went away. Its slot number is
// not reused.
func (s *Session) Forget(id desktop.SurfaceID) {
	delete(s.ordinals, id)
}

// Count is the number of ordinals handed out so far.
func (s *Session) Count() int {
	return s.counter
}

// Tracked is the number of windows currently holding an ordinal.
func (s *Session) Tracked() int {
	return len(s.ordinals)
}

// Cell returns the memoized cell of ordinal, computing it on a miss.
func (s *Session) Cell(ordinal int) Cell {
	if c, ok := s.memo[ordinal]; ok {
		return c
	}
	c := CellFor(ordinal)
	s.memo[ordinal] = c
	s.order = append(s.order, ordinal)
	if s.limit > 0 && len(s.order) > s.limit {
		evict := s.order[0]
		s.order = s.order[1:]
		delete(s.memo, evict)
	}
	return c
}

// Memoized reports whether ordinal currently has a cached cell.
func (s *Session) Memoized(ordinal int) bool {
	_, ok := s.memo[ordinal]
	return ok
}

// Reset returns the session to its initial state.
func (s *Session) Reset() {
	s.counter = 0
	clear(s.ordinals)
	clear(s.memo)
	s.order = nil
}
