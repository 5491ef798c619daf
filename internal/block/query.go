package block

import (
	"math"

	"github.com/san-kum/galaxysim/internal/units"
	"github.com/san-kum/galaxysim/internal/vec"
)

// Probe reports how a single query traversed the tree.
type Probe struct {
	Visited    int
	Aggregated int
	Leaves     int
	MaxDepth   int
}

type query struct {
	pos       vec.Vec3
	precision float64
	acc       vec.Vec3
	density   float64
	probe     *Probe
}

// Accel returns the gravitational acceleration at pos and the local
// density estimate. A cell that does not contain pos and whose
// edge-to-distance ratio is below precision is used as a single point
// mass at its center of mass. precision 0 gives the exact pairwise sum.
func (b *Block) Accel(pos vec.Vec3, precision float64) (vec.Vec3, float64) {
	q := query{pos: pos, precision: precision}
	b.visit(&q, 0, 0)
	return q.acc, q.density
}

// Probe runs the same traversal as Accel and returns its statistics.
func (b *Block) Probe(pos vec.Vec3, precision float64) Probe {
	var p Probe
	q := query{pos: pos, precision: precision, probe: &p}
	b.visit(&q, 0, 0)
	return p
}

func (b *Block) visit(q *query, idx int32, depth int) {
	nd := &b.nodes[idx]
	if nd.mass == 0 {
		return
	}
	if q.probe != nil {
		q.probe.Visited++
		if depth > q.probe.MaxDepth {
			q.probe.MaxDepth = depth
		}
	}

	d := nd.moment.Sub(q.pos)
	dist2 := d.Norm2()

	if nd.leaf {
		if dist2 == 0 {
			return
		}
		if q.probe != nil {
			q.probe.Leaves++
		}
		q.add(d, dist2, nd.mass, b.soft2)
		return
	}

	size := 2 * nd.half
	if !nd.encloses(q.pos) && size*size < q.precision*q.precision*dist2 {
		if q.probe != nil {
			q.probe.Aggregated++
		}
		q.add(d, dist2, nd.mass, b.soft2)
		return
	}

	for _, c := range nd.child {
		if c >= 0 {
			b.visit(q, c, depth+1)
		}
	}
}

func (q *query) add(d vec.Vec3, dist2, mass, soft2 float64) {
	r2 := dist2 + soft2
	inv := 1 / math.Sqrt(r2)
	inv3 := inv * inv * inv
	q.acc = q.acc.AddScaled(d, units.G*mass*inv3)
	q.density += mass * inv3
}

// Direct computes the same quantities as Accel by summing over every body
// in the tree individually. It is O(n) per call and meant for reference
// checks on small populations.
func (b *Block) Direct(pos vec.Vec3) (vec.Vec3, float64) {
	q := query{pos: pos}
	for i, p := range b.bodies {
		if b.masses[i] <= 0 || !b.nodes[0].contains(p) {
			continue
		}
		d := p.Sub(pos)
		dist2 := d.Norm2()
		if dist2 == 0 {
			continue
		}
		q.add(d, dist2, b.masses[i], b.soft2)
	}
	return q.acc, q.density
}
