package star

import "github.com/san-kum/galaxysim/internal/vec"

// Range is a half-open index view [Start, End) into a Container.
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

// Container owns every star of a run. The live stars are always the
// prefix [0, live); storage past it is kept so no step reallocates.
type Container struct {
	stars []Star
	live  int
}

func NewContainer(stars []Star) *Container {
	return &Container{stars: stars, live: len(stars)}
}

func (c *Container) Cap() int       { return len(c.stars) }
func (c *Container) LiveCount() int { return c.live }

// LiveRange is the index view of the live prefix.
func (c *Container) LiveRange() Range { return Range{0, c.live} }

// Live returns the live stars. The slice aliases the container.
func (c *Container) Live() []Star { return c.stars[:c.live] }

// Slice returns the stars in r. r must lie within the live range.
func (c *Container) Slice(r Range) []Star { return c.stars[r.Start:r.End] }

// All returns the full backing storage, dead stars included.
func (c *Container) All() []Star { return c.stars }

// Compact moves dead stars past the live boundary and returns how many
// died since the last call.
func (c *Container) Compact() int {
	prev := c.live
	c.live = Partition(c.stars[:c.live])
	return prev - c.live
}

// Partition reorders stars in place so that every alive star precedes
// every dead one, and returns the number of alive stars. Order among
// survivors is not preserved.
func Partition(stars []Star) int {
	i, j := 0, len(stars)
	for {
		for i < j && stars[i].Alive {
			i++
		}
		for i < j && !stars[j-1].Alive {
			j--
		}
		if i >= j {
			return i
		}
		stars[i], stars[j-1] = stars[j-1], stars[i]
		i++
		j--
	}
}

// LiveSource adapts the live stars to block.Source.
type LiveSource []Star

func (s LiveSource) Len() int { return len(s) }

func (s LiveSource) Body(i int) (vec.Vec3, float64) {
	return s[i].Pos, s[i].Mass
}
