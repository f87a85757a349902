// Package desktop declares the collaborator surface the shell consumes from
// the underlying compositor toolkit: surfaces and their trees, windows,
// popups, layer maps, the output/window space, buffers with readiness
// blockers, and the run loop.
package desktop

import (
	"github.com/1broseidon/wlshell/internal/geom"
)

// SurfaceID identifies a client surface for the lifetime of the surface.
type SurfaceID uint32

// BufferKind describes what a commit does with the attached buffer.
type BufferKind int

const (
	BufferUnchanged BufferKind = iota
	BufferRemoved
	BufferNew
)

// Buffer is a client buffer as far as the shell cares about it.
type Buffer interface {
	Size() geom.Size
}

// BufferAssignment is the pending buffer state of a surface.
type BufferAssignment struct {
	Kind   BufferKind
	Buffer Buffer
}

// Interest selects which fd readiness a source waits for.
type Interest int

const (
	InterestRead Interest = iota
	InterestWrite
)

func (i Interest) String() string {
	switch i {
	case InterestRead:
		return "read"
	case InterestWrite:
		return "write"
	default:
		return "unknown"
	}
}

// ReadinessSource is a file descriptor the run loop can wait on.
type ReadinessSource interface {
	Fd() int
	Interest() Interest
}

// Blocker holds back a surface commit until Released reports true.
type Blocker interface {
	Released() bool
}

// Dmabuf is a shareable hardware buffer whose contents become ready
// asynchronously.
type Dmabuf interface {
	Buffer
	GenerateBlocker(interest Interest) (Blocker, ReadinessSource, error)
}

// AcquirePoint is an explicit-synchronization point attached to a pending
// buffer.
type AcquirePoint interface {
	GenerateBlocker() (Blocker, ReadinessSource, error)
}

// Client is the per-client compositor state.
type Client interface {
	// BlockerCleared tells the client state that one of its blockers was
	// released so pending commits can be re-evaluated.
	BlockerCleared()
}

// Surface is a client-owned drawable.
type Surface interface {
	ID() SurfaceID
	Alive() bool
	// Parent returns the subsurface parent, or nil for a root surface.
	Parent() Surface
	Children() []Surface
	// Client returns the owning client, or nil once it disconnected.
	Client() Client
	SyncSubsurface() bool
	Data() *DataMap

	PendingBuffer() BufferAssignment
	PendingAcquirePoint() (AcquirePoint, bool)
	// TakeBufferDelta returns and clears the buffer-origin delta accumulated
	// by committed state since the last call.
	TakeBufferDelta() (geom.Point, bool)

	AddBlocker(b Blocker)
	AddPreCommitHook(hook func(Surface))
	OnDestroy(fn func())
}

// Token identifies a source registered with a Loop.
type Token uint64

// Loop is the single-threaded run loop. Callbacks registered through
// InsertSource run at most once; Remove guarantees a pending callback never
// runs.
type Loop interface {
	InsertSource(src ReadinessSource, cb func()) (Token, error)
	Remove(tok Token)
}

// Root walks up the parent chain of s.
func Root(s Surface) Surface {
	root := s
	for {
		parent := root.Parent()
		if parent == nil {
			return root
		}
		root = parent
	}
}

// WithSurfaceTree calls fn for s and every descendant, parents first.
func WithSurfaceTree(s Surface, fn func(Surface)) {
	fn(s)
	for _, child := range s.Children() {
		WithSurfaceTree(child, fn)
	}
}
