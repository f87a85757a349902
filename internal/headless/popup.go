package headless

import (
	"errors"

	"github.com/1broseidon/wlshell/internal/desktop"
)

// ErrNotConfigurable is returned when a popup cannot be configured, e.g.
// because its parent is gone.
var ErrNotConfigurable = errors.New("popup is not configurable")

// Popup is an xdg or input-method popup.
type Popup struct {
	kind       desktop.PopupKind
	surface    *Surface
	parent     *Surface
	sent       bool
	configures int
	refuse     bool
}

func (p *Popup) Kind() desktop.PopupKind {
	return p.kind
}

func (p *Popup) Surface() desktop.Surface {
	return p.surface
}

func (p *Popup) Parent() desktop.Surface {
	if p.parent == nil {
		return nil
	}
	return p.parent
}

func (p *Popup) InitialConfigureSent() bool {
	return p.sent
}

func (p *Popup) SendConfigure() error {
	if p.refuse || p.parent == nil || !p.parent.Alive() {
		return ErrNotConfigurable
	}
	p.sent = true
	p.configures++
	return nil
}

// Configures counts successful configures.
func (p *Popup) Configures() int {
	return p.configures
}

// Refuse makes every later SendConfigure fail, simulating a broken
// protocol layer.
func (p *Popup) Refuse() {
	p.refuse = true
}

// PopupManager tracks popups by surface.
type PopupManager struct {
	popups  map[desktop.SurfaceID]*Popup
	commits map[desktop.SurfaceID]int
}

// NewPopupManager returns an empty manager.
func NewPopupManager() *PopupManager {
	return &PopupManager{
		popups:  make(map[desktop.SurfaceID]*Popup),
		commits: make(map[desktop.SurfaceID]int),
	}
}

func (m *PopupManager) track(p *Popup) {
	m.popups[p.surface.id] = p
}

func (m *PopupManager) Commit(s desktop.Surface) {
	m.commits[s.ID()]++
}

// Commits returns how many commits were delivered for s.
func (m *PopupManager) Commits(s desktop.Surface) int {
	return m.commits[s.ID()]
}

func (m *PopupManager) FindPopup(s desktop.Surface) (desktop.Popup, bool) {
	p, ok := m.popups[s.ID()]
	if !ok || !p.surface.Alive() {
		return nil, false
	}
	return p, true
}
