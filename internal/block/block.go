// Package block builds the per-step Barnes-Hut octree over the live stars.
//
// A Block is built once per step by the driver and is read-only afterwards:
// it has no exported mutators, so it can be shared by every worker for the
// duration of the parallel update.
package block

import (
	"math"

	"github.com/san-kum/galaxysim/internal/vec"
)

// MaxDepth bounds the tree height. Bodies that still share a cell at this
// depth are merged into one aggregate leaf.
const MaxDepth = 48

// Source is the population a Block is built from.
type Source interface {
	Len() int
	Body(i int) (pos vec.Vec3, mass float64)
}

// Params controls the simulated volume and the force law.
type Params struct {
	// Area is the half-edge of the root cube, in meters.
	Area float64
	// Softening is the Plummer softening length, in meters.
	Softening float64
}

type node struct {
	center vec.Vec3
	half   float64

	mass   float64
	moment vec.Vec3 // Σ m·p until finalize, then center of mass
	count  int

	leaf  bool
	body  int32
	child [8]int32
}

type Block struct {
	nodes  []node
	bodies []vec.Vec3
	masses []float64
	soft2  float64
	skip   int
}

// Build creates the octree for src. The root cube is centered on the
// center of mass of src with half-edge p.Area.
func Build(src Source, p Params) *Block {
	n := src.Len()
	b := &Block{
		nodes:  make([]node, 0, 2*n+1),
		bodies: make([]vec.Vec3, n),
		masses: make([]float64, n),
		soft2:  p.Softening * p.Softening,
	}

	var moment vec.Vec3
	total := 0.0
	for i := 0; i < n; i++ {
		pos, m := src.Body(i)
		b.bodies[i] = pos
		b.masses[i] = m
		moment = moment.AddScaled(pos, m)
		total += m
	}

	var center vec.Vec3
	if total > 0 {
		center = moment.Scale(1 / total)
	}
	b.newNode(center, p.Area)

	for i := 0; i < n; i++ {
		if !b.nodes[0].contains(b.bodies[i]) || b.masses[i] <= 0 {
			b.skip++
			continue
		}
		b.insert(int32(i))
	}

	for i := range b.nodes {
		nd := &b.nodes[i]
		if nd.mass > 0 {
			nd.moment = nd.moment.Scale(1 / nd.mass)
		}
	}
	if b.nodes[0].mass == 0 {
		b.nodes[0].moment = center
	}
	return b
}

func (b *Block) newNode(center vec.Vec3, half float64) int32 {
	b.nodes = append(b.nodes, node{
		center: center,
		half:   half,
		leaf:   true,
		body:   -1,
		child:  [8]int32{-1, -1, -1, -1, -1, -1, -1, -1},
	})
	return int32(len(b.nodes) - 1)
}

func (b *Block) insert(i int32) {
	pos, m := b.bodies[i], b.masses[i]
	idx := int32(0)

	for depth := 0; ; depth++ {
		nd := &b.nodes[idx]

		if nd.leaf {
			if nd.count == 0 {
				nd.body = i
				nd.count = 1
				nd.mass = m
				nd.moment = pos.Scale(m)
				return
			}
			if depth >= MaxDepth {
				nd.body = -1
				nd.count++
				nd.mass += m
				nd.moment = nd.moment.AddScaled(pos, m)
				return
			}
			old := nd.body
			nd.leaf = false
			nd.body = -1
			b.pushDown(idx, old)
			nd = &b.nodes[idx]
		}

		nd.count++
		nd.mass += m
		nd.moment = nd.moment.AddScaled(pos, m)
		idx = b.childFor(idx, pos)
	}
}

// pushDown moves the single body of a leaf that just became internal into
// a fresh child. The parent's aggregates already include it.
func (b *Block) pushDown(idx, body int32) {
	pos, m := b.bodies[body], b.masses[body]
	c := b.childFor(idx, pos)
	child := &b.nodes[c]
	child.body = body
	child.count = 1
	child.mass = m
	child.moment = pos.Scale(m)
}

func (b *Block) childFor(idx int32, pos vec.Vec3) int32 {
	nd := b.nodes[idx]
	oct := octant(nd.center, pos)
	if c := nd.child[oct]; c >= 0 {
		return c
	}
	q := nd.half / 2
	off := vec.Vec3{X: -q, Y: -q, Z: -q}
	if oct&1 != 0 {
		off.X = q
	}
	if oct&2 != 0 {
		off.Y = q
	}
	if oct&4 != 0 {
		off.Z = q
	}
	c := b.newNode(nd.center.Add(off), q)
	b.nodes[idx].child[oct] = c
	return c
}

func octant(center, p vec.Vec3) int {
	o := 0
	if p.X >= center.X {
		o |= 1
	}
	if p.Y >= center.Y {
		o |= 2
	}
	if p.Z >= center.Z {
		o |= 4
	}
	return o
}

func (n *node) contains(p vec.Vec3) bool {
	return math.Abs(p.X-n.center.X) < n.half &&
		math.Abs(p.Y-n.center.Y) < n.half &&
		math.Abs(p.Z-n.center.Z) < n.half
}

// encloses is contains with closed faces, so a point on a cell boundary
// never has that cell collapsed into an aggregate around it.
func (n *node) encloses(p vec.Vec3) bool {
	return math.Abs(p.X-n.center.X) <= n.half &&
		math.Abs(p.Y-n.center.Y) <= n.half &&
		math.Abs(p.Z-n.center.Z) <= n.half
}

// Contains reports whether pos lies inside the simulated volume.
func (b *Block) Contains(pos vec.Vec3) bool {
	return b.nodes[0].contains(pos)
}

// MassCenter is the center of mass of every body in the tree.
func (b *Block) MassCenter() vec.Vec3 { return b.nodes[0].moment }

// Center is the geometric center of the simulated volume.
func (b *Block) Center() vec.Vec3 { return b.nodes[0].center }

func (b *Block) Mass() float64 { return b.nodes[0].mass }
func (b *Block) Count() int    { return b.nodes[0].count }
func (b *Block) Nodes() int    { return len(b.nodes) }

// Skipped is the number of source bodies left out of the tree because they
// were outside the root cube or massless.
func (b *Block) Skipped() int { return b.skip }
