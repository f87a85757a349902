package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/1broseidon/wlshell/internal/desktop"
)

type pipeSource struct {
	r, w int
}

func newPipe(t *testing.T) *pipeSource {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return &pipeSource{r: fds[0], w: fds[1]}
}

func (p *pipeSource) Fd() int                    { return p.r }
func (p *pipeSource) Interest() desktop.Interest { return desktop.InterestRead }

func (p *pipeSource) signal(t *testing.T) {
	t.Helper()
	_, err := unix.Write(p.w, []byte{1})
	require.NoError(t, err)
}

func newLoop(t *testing.T) *Loop {
	t.Helper()
	l, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSourceFiresOnce(t *testing.T) {
	l := newLoop(t)
	p := newPipe(t)

	calls := 0
	_, err := l.InsertSource(p, func() { calls++ })
	require.NoError(t, err)

	require.NoError(t, l.Dispatch(0))
	assert.Equal(t, 0, calls, "unready source must not fire")

	p.signal(t)
	require.NoError(t, l.Dispatch(time.Second))
	require.NoError(t, l.Dispatch(0))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, l.Pending())
}

func TestRemovedSourceNeverFires(t *testing.T) {
	l := newLoop(t)
	p := newPipe(t)

	fired := false
	tok, err := l.InsertSource(p, func() { fired = true })
	require.NoError(t, err)
	p.signal(t)
	l.Remove(tok)

	require.NoError(t, l.Dispatch(0))
	assert.False(t, fired)
}

func TestCallbackMayRemoveOtherSource(t *testing.T) {
	l := newLoop(t)
	a, b := newPipe(t), newPipe(t)

	var tokA, tokB desktop.Token
	fired := 0
	var err error
	tokA, err = l.InsertSource(a, func() { fired++; l.Remove(tokB) })
	require.NoError(t, err)
	tokB, err = l.InsertSource(b, func() { fired++; l.Remove(tokA) })
	require.NoError(t, err)

	a.signal(t)
	b.signal(t)
	require.NoError(t, l.Dispatch(time.Second))
	assert.Equal(t, 1, fired)
}

func TestPostFromOtherGoroutine(t *testing.T) {
	l := newLoop(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ran := false
	require.NoError(t, l.Call(ctx, func() { ran = true }))
	assert.True(t, ran)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClosedLoop(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.ErrorIs(t, l.Post(func() {}), ErrClosed)
	assert.ErrorIs(t, l.Dispatch(0), ErrClosed)
	_, err = l.InsertSource(newPipe(t), func() {})
	assert.ErrorIs(t, err, ErrClosed)
}
