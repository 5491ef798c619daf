package star

import (
	"testing"

	"github.com/san-kum/galaxysim/internal/vec"
)

func makeStars(alive ...bool) []Star {
	stars := make([]Star, len(alive))
	for i, a := range alive {
		stars[i] = New(vec.New(float64(i), 0, 0), vec.Vec3{}, float64(i+1))
		stars[i].Alive = a
	}
	return stars
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		alive []bool
		want  int
	}{
		{"empty", nil, 0},
		{"all alive", []bool{true, true, true}, 3},
		{"all dead", []bool{false, false}, 0},
		{"mixed", []bool{false, true, false, true, true, false}, 3},
		{"dead first", []bool{false, true}, 1},
		{"dead last", []bool{true, false}, 1},
	}

	for _, tt := range tests {
		stars := makeStars(tt.alive...)
		masses := map[float64]bool{}
		for _, s := range stars {
			masses[s.Mass] = s.Alive
		}

		got := Partition(stars)
		if got != tt.want {
			t.Errorf("%s: expected boundary %d, got %d", tt.name, tt.want, got)
		}
		for i, s := range stars {
			if (i < got) != s.Alive {
				t.Errorf("%s: star %d alive=%v on wrong side of %d", tt.name, i, s.Alive, got)
			}
			if masses[s.Mass] != s.Alive {
				t.Errorf("%s: star with mass %f changed state", tt.name, s.Mass)
			}
			delete(masses, s.Mass)
		}
		if len(masses) != 0 {
			t.Errorf("%s: stars lost or duplicated", tt.name)
		}
	}
}

func TestCompact(t *testing.T) {
	c := NewContainer(makeStars(true, false, true, false, true))
	if c.LiveCount() != 5 {
		t.Fatalf("expected 5 live, got %d", c.LiveCount())
	}

	died := c.Compact()
	if died != 2 {
		t.Errorf("expected 2 deaths, got %d", died)
	}
	if c.LiveCount() != 3 || c.LiveRange() != (Range{0, 3}) {
		t.Errorf("expected live range [0,3), got %v", c.LiveRange())
	}
	if c.Cap() != 5 || len(c.All()) != 5 {
		t.Error("storage must be retained after compaction")
	}
	for _, s := range c.Live() {
		if !s.Alive {
			t.Error("live range contains a dead star")
		}
	}
}

func TestCompactIdempotent(t *testing.T) {
	c := NewContainer(makeStars(true, false, true, true, false))
	c.Compact()

	before := append([]Star(nil), c.Live()...)
	boundary := c.LiveCount()

	if died := c.Compact(); died != 0 {
		t.Errorf("expected no deaths on second pass, got %d", died)
	}
	if c.LiveCount() != boundary {
		t.Errorf("boundary moved from %d to %d", boundary, c.LiveCount())
	}
	for i, s := range c.Live() {
		if s.Mass != before[i].Mass {
			t.Errorf("star %d moved during idempotent compaction", i)
		}
	}
}

func TestSliceAndSource(t *testing.T) {
	c := NewContainer(makeStars(true, true, true, true))
	part := c.Slice(Range{1, 3})
	if len(part) != 2 || part[0].Mass != 2 {
		t.Errorf("unexpected slice %v", part)
	}
	part[0].Mass = 42
	if c.Live()[1].Mass != 42 {
		t.Error("slice should alias container storage")
	}

	src := LiveSource(c.Live())
	if src.Len() != 4 {
		t.Errorf("expected 4 bodies, got %d", src.Len())
	}
	pos, m := src.Body(2)
	if pos != vec.New(2, 0, 0) || m != 3 {
		t.Errorf("unexpected body %v %f", pos, m)
	}
}
