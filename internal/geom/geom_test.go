package geom

import (
	"math/rand"
	"testing"
)

func randRect(rnd *rand.Rand) Rect {
	// Include empty and off-panel rects on purpose.
	return R(rnd.Intn(900)-50, rnd.Intn(600)-50, rnd.Intn(120)-10, rnd.Intn(120)-10)
}

func TestDirtyRegionNeverLosesCoverage(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		var d DirtyRegion
		n := 1 + rnd.Intn(20)
		rects := make([]Rect, 0, n)
		for i := 0; i < n; i++ {
			r := randRect(rnd)
			rects = append(rects, r)
			d.Add(r)
		}
		bound := d.Bounds()
		for _, r := range rects {
			if !bound.ContainsRect(r) {
				t.Fatalf("trial %d: bound %v does not contain %v", trial, bound, r)
			}
		}
	}
}

func TestMarkAllIdempotent(t *testing.T) {
	panel := R(0, 0, 800, 480)

	var once, twice DirtyRegion
	once.Add(R(10, 10, 5, 5))
	twice.Add(R(10, 10, 5, 5))

	once.MarkAll(panel)
	twice.MarkAll(panel)
	twice.MarkAll(panel)

	if once.Bounds() != twice.Bounds() {
		t.Fatalf("MarkAll twice = %v, once = %v", twice.Bounds(), once.Bounds())
	}
	if once.Bounds() != panel {
		t.Errorf("MarkAll bound = %v, want %v", once.Bounds(), panel)
	}
}

func TestTakeClears(t *testing.T) {
	var d DirtyRegion
	if !d.Empty() {
		t.Fatal("zero DirtyRegion should be empty")
	}
	d.Add(R(1, 2, 3, 4))
	d.Add(Rect{X: 500, Y: 500})
	if got := d.Take(); got != R(1, 2, 3, 4) {
		t.Errorf("Take = %v", got)
	}
	if !d.Empty() {
		t.Error("region not cleared by Take")
	}
}

func TestUnionAlgebra(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		a, b, c := randRect(rnd), randRect(rnd), randRect(rnd)
		if Union(a, b) != Union(b, a) {
			t.Fatalf("not commutative: %v %v", a, b)
		}
		if Union(Union(a, b), c) != Union(a, Union(b, c)) {
			t.Fatalf("not associative: %v %v %v", a, b, c)
		}
	}
}

func TestClampNeverNegative(t *testing.T) {
	bounds := R(0, 0, 100, 50)
	cases := []Rect{
		R(-20, -20, 10, 10),
		R(90, 40, 50, 50),
		R(200, 10, 5, 5),
		R(10, 10, 0, 30),
	}
	for _, r := range cases {
		got := r.Clamp(bounds)
		if got.W < 0 || got.H < 0 {
			t.Errorf("Clamp(%v) = %v has negative size", r, got)
		}
		if !bounds.ContainsRect(got) {
			t.Errorf("Clamp(%v) = %v escapes bounds", r, got)
		}
	}
	if got := R(90, 40, 50, 50).Clamp(bounds); got != R(90, 40, 10, 10) {
		t.Errorf("partial overlap clamp = %v", got)
	}
}

func TestContains(t *testing.T) {
	r := R(10, 10, 5, 5)
	if !r.Contains(Point{10, 10}) || !r.Contains(Point{14, 14}) {
		t.Error("inner corners not contained")
	}
	if r.Contains(Point{15, 10}) || r.Contains(Point{9, 12}) {
		t.Error("outside points contained")
	}
	if (Rect{X: 3, Y: 3}).Contains(Point{3, 3}) {
		t.Error("empty rect contains a point")
	}
	if R(0, 0, -4, 2) != (Rect{}) {
		t.Error("negative width not normalized")
	}
}

func TestZonesPartition(t *testing.T) {
	z := NewZones(R(0, 0, 800, 480), 40, 24)
	if z.Status != R(0, 0, 800, 40) {
		t.Errorf("status = %v", z.Status)
	}
	if z.Content != R(0, 40, 800, 416) {
		t.Errorf("content = %v", z.Content)
	}
	if z.Footer != R(0, 456, 800, 24) {
		t.Errorf("footer = %v", z.Footer)
	}

	var d DirtyRegion
	z.Mark(&d, ZoneStatus)
	if d.Bounds() != z.Status {
		t.Errorf("marked status = %v", d.Bounds())
	}
	z.Mark(&d, ZoneFooter)
	if d.Bounds() != z.Bounds {
		t.Errorf("status+footer bound = %v, want whole panel", d.Bounds())
	}
}
