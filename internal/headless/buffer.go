package headless

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

var (
	// ErrNoFence is returned when a buffer has nothing to wait for.
	ErrNoFence = errors.New("buffer has no pending fence")
	// ErrUnsupportedInterest is returned for readiness other than read.
	ErrUnsupportedInterest = errors.New("unsupported fence interest")
)

// Buffer is a plain shared-memory style buffer.
type Buffer struct {
	size geom.Size
}

// NewBuffer returns a buffer of the given size.
func NewBuffer(size geom.Size) *Buffer {
	return &Buffer{size: size}
}

func (b *Buffer) Size() geom.Size {
	return b.size
}

// Fence is a pipe whose read end becomes readable once signalled. It stands
// in for dmabuf implicit fences and syncobj timeline points.
type Fence struct {
	r int
	w int
}

// NewFence creates an unsignalled fence.
func NewFence() (*Fence, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("failed to create fence pipe: %w", err)
	}
	return &Fence{r: fds[0], w: fds[1]}, nil
}

// Signal marks the fence ready.
func (f *Fence) Signal() error {
	if _, err := unix.Write(f.w, []byte{1}); err != nil {
		return fmt.Errorf("failed to signal fence: %w", err)
	}
	return nil
}

// Signalled reports whether Signal has been called, without blocking.
func (f *Fence) Signalled() bool {
	fds := []unix.PollFd{{Fd: int32(f.r), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	return err == nil && n > 0 && fds[0].Revents&unix.POLLIN != 0
}

func (f *Fence) Fd() int {
	return f.r
}

func (f *Fence) Interest() desktop.Interest {
	return desktop.InterestRead
}

// Close releases both ends of the pipe.
func (f *Fence) Close() error {
	return errors.Join(unix.Close(f.r), unix.Close(f.w))
}

type fenceBlocker struct {
	fence *Fence
}

func (b fenceBlocker) Released() bool {
	return b.fence.Signalled()
}

// Dmabuf is a hardware buffer whose import completes when its fence is
// signalled. A nil fence means the buffer is ready immediately.
type Dmabuf struct {
	Buffer
	fence *Fence
}

// NewDmabuf returns a dmabuf guarded by fence.
func NewDmabuf(size geom.Size, fence *Fence) *Dmabuf {
	return &Dmabuf{Buffer: Buffer{size: size}, fence: fence}
}

func (d *Dmabuf) GenerateBlocker(interest desktop.Interest) (desktop.Blocker, desktop.ReadinessSource, error) {
	if interest != desktop.InterestRead {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedInterest, interest)
	}
	if d.fence == nil {
		return nil, nil, ErrNoFence
	}
	return fenceBlocker{fence: d.fence}, d.fence, nil
}

// SyncPoint is an explicit-sync acquire point.
type SyncPoint struct {
	fence *Fence
}

// NewSyncPoint returns an acquire point released by fence.
func NewSyncPoint(fence *Fence) *SyncPoint {
	return &SyncPoint{fence: fence}
}

func (p *SyncPoint) GenerateBlocker() (desktop.Blocker, desktop.ReadinessSource, error) {
	if p.fence == nil {
		return nil, nil, ErrNoFence
	}
	return fenceBlocker{fence: p.fence}, p.fence, nil
}
