package shell

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/wlshell/internal/desktop"
)

// continuation resumes a parked commit once its readiness source fires.
// It runs at most once and never after the surface was destroyed.
type continuation struct {
	shell   *Shell
	surface desktop.Surface
	token   desktop.Token
	done    bool
}

func (c *continuation) fire() {
	if c.done {
		return
	}
	c.done = true
	c.shell.dropContinuation(c)
	if client := c.surface.Client(); client != nil {
		client.BlockerCleared()
	}
}

// preCommit parks commits of new dmabufs until they are ready. Explicit
// sync is preferred; otherwise the buffer's implicit fence is awaited. If
// neither can be set up the commit goes through unblocked.
func (sh *Shell) preCommit(s desktop.Surface) {
	pending := s.PendingBuffer()
	if pending.Kind != desktop.BufferNew {
		return
	}
	dmabuf, ok := pending.Buffer.(desktop.Dmabuf)
	if !ok {
		return
	}

	if point, ok := s.PendingAcquirePoint(); ok {
		blocker, src, err := point.GenerateBlocker()
		if err != nil {
			sh.logger.Debug("acquire point blocker unavailable", "surface", s.ID(), "error", err)
		} else if err := sh.block(s, blocker, src); err != nil {
			sh.logger.Warn("acquire point not awaited", "surface", s.ID(), "error", err)
		} else {
			return
		}
	}

	blocker, src, err := dmabuf.GenerateBlocker(desktop.InterestRead)
	if err != nil {
		sh.logger.Debug("dmabuf blocker unavailable", "surface", s.ID(), "error", err)
		return
	}
	if err := sh.block(s, blocker, src); err != nil {
		sh.logger.Warn("committing without blocker", "surface", s.ID(), "error", err)
	}
}

func (sh *Shell) block(s desktop.Surface, b desktop.Blocker, src desktop.ReadinessSource) error {
	if sh.loop == nil {
		return errors.New("no event loop")
	}
	c := &continuation{shell: sh, surface: s}
	tok, err := sh.loop.InsertSource(src, c.fire)
	if err != nil {
		return fmt.Errorf("failed to register readiness source: %w", err)
	}
	c.token = tok
	sh.blockers[s.ID()] = append(sh.blockers[s.ID()], c)
	s.AddBlocker(b)
	return nil
}

func (sh *Shell) dropContinuation(c *continuation) {
	id := c.surface.ID()
	rest := slices.DeleteFunc(sh.blockers[id], func(x *continuation) bool { return x == c })
	if len(rest) == 0 {
		delete(sh.blockers, id)
		return
	}
	sh.blockers[id] = rest
}

func (sh *Shell) cancelBlockers(id desktop.SurfaceID) {
	for _, c := range sh.blockers[id] {
		c.done = true
		sh.loop.Remove(c.token)
	}
	delete(sh.blockers, id)
}
