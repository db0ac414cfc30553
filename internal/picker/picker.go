// Package picker resolves rays to exact, ordered hits against scene geometry,
// using the spatial index as a pre-filter.
package picker

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"

	"pick3d/internal/scene"
	"pick3d/internal/spatial"
)

// Hit is one exact ray/geometry intersection. Bias breaks exact distance
// ties deterministically; lower sorts first.
type Hit struct {
	UID      uint64
	Node     *scene.Node
	Distance float32
	Bias     float32
	Point    rl.Vector3
}

// Picker turns rays into sorted hit lists. Lookup resolves candidate ids from
// the index to live nodes; ids that resolve to nothing are skipped silently.
type Picker struct {
	Index  *spatial.Index
	Lookup func(uint64) *scene.Node
}

// PickRay queries the index for candidates and exact-intersects each
// candidate's geometry. Only the closest exact hit per node is kept. Results
// are ordered ascending by (distance, bias), independent of traversal order;
// full ties keep a stable order across repeated calls with the same input.
func (p *Picker) PickRay(ray rl.Ray) []Hit {
	var hits []Hit
	p.Index.QueryRay(ray, func(_ spatial.Sphere, id uint64) bool {
		n := p.Lookup(id)
		if n == nil || n.Destroyed || n.Geometry == nil {
			return true
		}
		if d, point, ok := n.Geometry.IntersectRay(ray); ok {
			hits = append(hits, Hit{UID: id, Node: n, Distance: d, Bias: n.Bias, Point: point})
		}
		return true
	})
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Bias < hits[j].Bias
	})
	return hits
}

// PickScreen converts a screen-space point inside viewport to a world ray
// through the camera and delegates to PickRay.
func (p *Picker) PickScreen(x, y float32, viewport rl.Rectangle, cam rl.Camera3D) []Hit {
	return p.PickRay(ScreenRay(x, y, viewport, cam))
}
