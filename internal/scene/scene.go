// Package scene models the 3D overlay composed by the visualization
// engine: a tree of renderable objects (polylines, markers, beam
// primitives, labels) plus the scene lights.
//
// Ownership: all mutation happens on the host's frame loop goroutine.
// The package carries no locks; concurrent readers consume immutable
// snapshots (see snapshot.go) published by the host.
package scene

// Object is any renderable node in the overlay tree.
type Object interface {
	// ObjectName identifies the node in snapshots and logs.
	ObjectName() string

	snap() ObjectSnapshot
}

// Group is an ordered container of objects. The engine's overlay root is
// a Group attached to the host's scene root.
type Group struct {
	Name     string
	children []Object
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name}
}

// ObjectName implements Object.
func (g *Group) ObjectName() string { return g.Name }

// Add appends a child. Nil children are ignored.
func (g *Group) Add(obj Object) {
	if obj == nil {
		return
	}
	g.children = append(g.children, obj)
}

// Remove detaches the first occurrence of obj. Detaching an absent
// object is a no-op.
func (g *Group) Remove(obj Object) {
	for i, c := range g.children {
		if c == obj {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return
		}
	}
}

// Clear detaches all children.
func (g *Group) Clear() {
	g.children = nil
}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// Children returns the direct children in order.
func (g *Group) Children() []Object { return g.children }
