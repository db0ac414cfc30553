// Package scene defines the interactive node type that participates in hit
// testing and event dispatch. Nodes carry a non-owning parent reference so
// event bubbling is a plain loop up the chain.
package scene

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"

	"pick3d/internal/spatial"
)

// PointerMode controls whether a node participates in hit testing when no
// listener is registered for it.
type PointerMode int

const (
	// PointerAuto makes the node a hit target only while something listens
	// for a relevant event type on it or an ancestor.
	PointerAuto PointerMode = iota
	// PointerAlways makes the node a hit target even with no listeners.
	// A node that wants to occlude objects behind it without reacting sets
	// this and registers nothing.
	PointerAlways
	// PointerNever excludes the node from target selection entirely.
	PointerNever
)

// BoundsProvider supplies a node's current bounding sphere. Returning false
// means the node has no bounds right now and drops out of the spatial index
// on the next flush.
type BoundsProvider interface {
	BoundingSphere() (spatial.Sphere, bool)
}

// Intersecter is implemented by geometry that supports exact ray intersection.
// Nodes without it are excluded from exact-hit resolution even when their
// bounding sphere is in the index.
type Intersecter interface {
	IntersectRay(ray rl.Ray) (distance float32, point rl.Vector3, ok bool)
}

var nextUID atomic.Uint64

type Node struct {
	UID  uint64
	Name string
	Tags []string

	Parent   *Node
	Children []*Node

	Position rl.Vector3

	Pointer  PointerMode
	Bounds   BoundsProvider
	Geometry Intersecter

	// Bias breaks exact distance ties between coincident surfaces; lower
	// values win. Zero by default.
	Bias float32

	// Destroyed marks a node removed from its surface. Pending index puts
	// for destroyed nodes downgrade to removals.
	Destroyed bool
}

func NewNode(name string) *Node {
	return &Node{
		UID:  nextUID.Add(1),
		Name: name,
	}
}

func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// WorldPosition walks the parent chain summing positions. Nodes here carry
// translation only; rotation and scale belong to the rendering layer.
func (n *Node) WorldPosition() rl.Vector3 {
	if n.Parent == nil {
		return n.Position
	}
	return rl.Vector3Add(n.Parent.WorldPosition(), n.Position)
}
