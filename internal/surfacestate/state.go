// Package surfacestate attaches the shell's auxiliary state to client
// surfaces: cached geometry, the resize handshake, the per-role initial
// configure flags and the resolved role binding.
package surfacestate

import (
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// Role is the shell role a surface was resolved to.
type Role int

const (
	RoleNone Role = iota
	RoleToplevel
	RolePopup
	RoleLayer
	roleCount
)

var roleNames = [...]string{"none", "toplevel", "popup", "layer"}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// ResizeState tracks an interactive resize waiting for the client to commit
// the requested size.
type ResizeState struct {
	waiting bool
	size    geom.Size
}

// NotResizing is the idle resize state.
func NotResizing() ResizeState {
	return ResizeState{}
}

// WaitingForCommit records a requested size the client has not committed yet.
func WaitingForCommit(size geom.Size) ResizeState {
	return ResizeState{waiting: true, size: size}
}

// Waiting returns the requested size while a resize is pending.
func (r ResizeState) Waiting() (geom.Size, bool) {
	return r.size, r.waiting
}

func (r ResizeState) String() string {
	if !r.waiting {
		return "NotResizing"
	}
	return "WaitingForCommit(" + r.size.String() + ")"
}

// Binding is the cached result of role resolution. Only one of the handle
// fields is set, matching Role.
type Binding struct {
	Role   Role
	Window desktop.Window
	Popup  desktop.Popup
	Layer  desktop.LayerSurface
	Output desktop.Output
}

// State is the per-surface auxiliary state.
type State struct {
	Geometry *geom.Rectangle
	Resize   ResizeState

	configured [roleCount]bool
	binding    Binding
}

// GetOrInit returns the state attached to s. The first time s is seen its
// whole subtree receives default state.
func GetOrInit(s desktop.Surface) *State {
	if st, ok := desktop.Get[State](s.Data()); ok {
		return st
	}
	desktop.WithSurfaceTree(s, func(child desktop.Surface) {
		desktop.InsertIfMissing(child.Data(), func() *State { return &State{} })
	})
	st, _ := desktop.Get[State](s.Data())
	return st
}

// Lookup returns the state of s without initializing it.
func Lookup(s desktop.Surface) (*State, bool) {
	return desktop.Get[State](s.Data())
}

// ConfigureSent reports whether the initial configure for role was sent.
func (st *State) ConfigureSent(role Role) bool {
	if role <= RoleNone || role >= roleCount {
		return false
	}
	return st.configured[role]
}

// MarkConfigureSent sets the flag for role. It returns true only for the
// false to true transition.
func (st *State) MarkConfigureSent(role Role) bool {
	if role <= RoleNone || role >= roleCount || st.configured[role] {
		return false
	}
	st.configured[role] = true
	return true
}

// BeginResize moves the state to WaitingForCommit(size).
func (st *State) BeginResize(size geom.Size) {
	st.Resize = WaitingForCommit(size)
}

// FinishResize resets a pending resize. The commit that triggered the call
// is taken as proof the client applied the request, whatever size it
// actually committed. It reports whether a resize was pending.
func (st *State) FinishResize() bool {
	if _, ok := st.Resize.Waiting(); !ok {
		return false
	}
	st.Resize = NotResizing()
	return true
}

// Binding returns the cached role binding.
func (st *State) Binding() Binding {
	return st.binding
}

// Bind caches a resolved role.
func (st *State) Bind(b Binding) {
	st.binding = b
}

// Unbind drops a stale binding.
func (st *State) Unbind() {
	st.binding = Binding{}
}
