package headless

import (
	"slices"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// Client owns surfaces and receives blocker notifications.
type Client struct {
	name     string
	surfaces []*Surface
	cleared  int
	gone     bool
}

// Name returns the name the client was created with.
func (c *Client) Name() string {
	return c.name
}

// BlockerCleared re-evaluates every surface with parked commits.
func (c *Client) BlockerCleared() {
	c.cleared++
	for _, s := range slices.Clone(c.surfaces) {
		s.flush()
	}
}

// Cleared counts BlockerCleared notifications.
func (c *Client) Cleared() int {
	return c.cleared
}

type pendingState struct {
	buffer  desktop.BufferAssignment
	offset  geom.Point
	acquire desktop.AcquirePoint
}

type transaction struct {
	state    pendingState
	blockers []desktop.Blocker
}

// Surface is an in-memory wl_surface with double-buffered state and
// blocker-aware commit queueing.
type Surface struct {
	id       desktop.SurfaceID
	display  *Display
	client   *Client
	parent   *Surface
	children []*Surface
	sync     bool
	alive    bool
	data     desktop.DataMap

	pending  pendingState
	blockers []desktop.Blocker
	queue    []transaction

	buffer desktop.Buffer
	delta  *geom.Point

	preCommit []func(desktop.Surface)
	onDestroy []func()
	commits   int
}

func (s *Surface) ID() desktop.SurfaceID {
	return s.id
}

func (s *Surface) Alive() bool {
	return s.alive
}

func (s *Surface) Parent() desktop.Surface {
	if s.parent == nil {
		return nil
	}
	return s.parent
}

func (s *Surface) Children() []desktop.Surface {
	out := make([]desktop.Surface, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	return out
}

func (s *Surface) Client() desktop.Client {
	if s.client == nil || s.client.gone {
		return nil
	}
	return s.client
}

func (s *Surface) SyncSubsurface() bool {
	return s.parent != nil && s.sync
}

func (s *Surface) Data() *desktop.DataMap {
	return &s.data
}

func (s *Surface) PendingBuffer() desktop.BufferAssignment {
	return s.pending.buffer
}

func (s *Surface) PendingAcquirePoint() (desktop.AcquirePoint, bool) {
	return s.pending.acquire, s.pending.acquire != nil
}

func (s *Surface) TakeBufferDelta() (geom.Point, bool) {
	if s.delta == nil {
		return geom.Point{}, false
	}
	d := *s.delta
	s.delta = nil
	return d, true
}

func (s *Surface) AddBlocker(b desktop.Blocker) {
	s.blockers = append(s.blockers, b)
}

func (s *Surface) AddPreCommitHook(hook func(desktop.Surface)) {
	s.preCommit = append(s.preCommit, hook)
}

func (s *Surface) OnDestroy(fn func()) {
	s.onDestroy = append(s.onDestroy, fn)
}

// Attach sets a new pending buffer with the given buffer-origin offset.
func (s *Surface) Attach(buf desktop.Buffer, dx, dy int) {
	s.pending.buffer = desktop.BufferAssignment{Kind: desktop.BufferNew, Buffer: buf}
	s.pending.offset = geom.Pt(dx, dy)
}

// Detach removes the buffer on the next commit.
func (s *Surface) Detach() {
	s.pending.buffer = desktop.BufferAssignment{Kind: desktop.BufferRemoved}
}

// SetAcquirePoint attaches an explicit-sync acquire point to the pending
// state.
func (s *Surface) SetAcquirePoint(p desktop.AcquirePoint) {
	s.pending.acquire = p
}

// Buffer returns the current buffer, or nil.
func (s *Surface) Buffer() desktop.Buffer {
	return s.buffer
}

// Commits counts commits delivered to the handler.
func (s *Surface) Commits() int {
	return s.commits
}

// Parked reports how many commits are waiting on blockers.
func (s *Surface) Parked() int {
	return len(s.queue)
}

// Commit runs the pre-commit hooks and then either applies the pending
// state or parks it behind the blockers the hooks attached.
func (s *Surface) Commit() {
	if !s.alive {
		return
	}
	for _, hook := range s.preCommit {
		hook(s)
	}
	s.queue = append(s.queue, transaction{state: s.pending, blockers: s.blockers})
	s.pending = pendingState{}
	s.blockers = nil
	s.flush()
}

func (s *Surface) flush() {
	for s.alive && len(s.queue) > 0 {
		head := s.queue[0]
		for _, b := range head.blockers {
			if !b.Released() {
				return
			}
		}
		s.queue = s.queue[1:]
		s.apply(head.state)
	}
}

func (s *Surface) apply(st pendingState) {
	switch st.buffer.Kind {
	case desktop.BufferNew:
		s.buffer = st.buffer.Buffer
	case desktop.BufferRemoved:
		s.buffer = nil
	}
	if !st.offset.IsZero() {
		acc := st.offset
		if s.delta != nil {
			acc = acc.Add(*s.delta)
		}
		s.delta = &acc
	}
	s.commits++
	if s.display != nil && s.display.handler != nil {
		s.display.handler.Commit(s)
	}
}

// Destroy tears the surface down. Destroy hooks run once; parked commits
// are dropped.
func (s *Surface) Destroy() {
	if !s.alive {
		return
	}
	s.alive = false
	s.queue = nil
	for _, fn := range s.onDestroy {
		fn()
	}
	s.onDestroy = nil
	if s.parent != nil {
		s.parent.children = slices.DeleteFunc(s.parent.children, func(c *Surface) bool { return c == s })
	}
	if s.client != nil {
		s.client.surfaces = slices.DeleteFunc(s.client.surfaces, func(c *Surface) bool { return c == s })
	}
}
