// Package eventloop is the single-threaded run loop the shell executes on.
// Readiness sources are one-shot: a callback fires at most once and a
// removed source never fires. Other goroutines hand work to the loop with
// Post or Call.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/wlshell/internal/desktop"
)

// ErrClosed is returned once the loop has been closed.
var ErrClosed = errors.New("event loop closed")

type source struct {
	fd       int
	interest desktop.Interest
	cb       func()
}

// Loop multiplexes fd readiness and posted functions onto one goroutine.
type Loop struct {
	sources map[desktop.Token]*source
	next    desktop.Token

	mu     sync.Mutex
	posted []func()
	closed bool

	wakeR int
	wakeW int
}

// New creates a loop with its wake pipe.
func New() (*Loop, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("failed to create wake pipe: %w", err)
	}
	return &Loop{
		sources: make(map[desktop.Token]*source),
		wakeR:   fds[0],
		wakeW:   fds[1],
	}, nil
}

// InsertSource registers a one-shot callback for when src becomes ready.
// Must be called on the loop goroutine.
func (l *Loop) InsertSource(src desktop.ReadinessSource, cb func()) (desktop.Token, error) {
	if l.isClosed() {
		return 0, ErrClosed
	}
	if src == nil || src.Fd() < 0 {
		return 0, errors.New("invalid readiness source")
	}
	l.next++
	l.sources[l.next] = &source{fd: src.Fd(), interest: src.Interest(), cb: cb}
	return l.next, nil
}

// Remove drops a source. Its callback will not run.
func (l *Loop) Remove(tok desktop.Token) {
	delete(l.sources, tok)
}

// Pending reports how many sources are registered.
func (l *Loop) Pending() int {
	return len(l.sources)
}

// Post queues fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.wake()
	return nil
}

// Call runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) wake() {
	// A full pipe already guarantees a wakeup.
	_, _ = unix.Write(l.wakeW, []byte{0})
}

func (l *Loop) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(l.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Dispatch waits up to timeout for readiness, then runs posted functions
// and the callbacks of ready sources. A negative timeout waits forever.
func (l *Loop) Dispatch(timeout time.Duration) error {
	if l.isClosed() {
		return ErrClosed
	}

	toks := make([]desktop.Token, 0, len(l.sources))
	fds := make([]unix.PollFd, 0, len(l.sources)+1)
	fds = append(fds, unix.PollFd{Fd: int32(l.wakeR), Events: unix.POLLIN})
	for tok, src := range l.sources {
		events := int16(unix.POLLIN)
		if src.interest == desktop.InterestWrite {
			events = unix.POLLOUT
		}
		toks = append(toks, tok)
		fds = append(fds, unix.PollFd{Fd: int32(src.fd), Events: events})
	}

	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}
	if _, err := unix.Poll(fds, ms); err != nil && !errors.Is(err, unix.EINTR) {
		return fmt.Errorf("poll failed: %w", err)
	}

	if fds[0].Revents != 0 {
		l.drainWake()
	}
	l.runPosted()

	for i, tok := range toks {
		if fds[i+1].Revents == 0 {
			continue
		}
		// An earlier callback may have removed this source.
		src, ok := l.sources[tok]
		if !ok {
			continue
		}
		delete(l.sources, tok)
		src.cb()
	}
	return nil
}

func (l *Loop) runPosted() {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
}

// Run dispatches until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, l.wake)
	defer stop()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := l.Dispatch(-1); err != nil {
			return err
		}
	}
}

// Close releases the wake pipe. Pending sources and posted functions are
// dropped.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.posted = nil
	l.mu.Unlock()
	clear(l.sources)
	return errors.Join(unix.Close(l.wakeR), unix.Close(l.wakeW))
}
