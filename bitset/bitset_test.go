package bitset

import "testing"

func TestSet1DBasic(t *testing.T) {
	s := NewSet1D(70)
	s.Insert(0)
	s.Insert(31)
	s.Insert(32)
	s.Insert(69)
	for _, i := range []int{0, 31, 32, 69} {
		if !s.Contains(i) {
			t.Errorf("expected bit %d set", i)
		}
	}
	if s.Contains(1) {
		t.Errorf("bit 1 should not be set")
	}
	s.Remove(31)
	if s.Contains(31) {
		t.Errorf("bit 31 should have been removed")
	}
}

func TestSet1DOnes(t *testing.T) {
	s := NewSet1D(40)
	want := []int{0, 5, 31, 32, 39}
	for _, i := range want {
		s.Insert(i)
	}
	var got []int
	it := s.Ones()
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, i)
	}
	if len(got) != len(want) {
		t.Fatalf("Ones() produced %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ones()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSet1DSetOps(t *testing.T) {
	a := NewSet1D(64)
	b := NewSet1D(64)
	a.Insert(1)
	a.Insert(2)
	b.Insert(2)
	b.Insert(3)

	union := NewSet1D(64)
	union.CopyFrom(&a)
	union.UnionWith(&b)
	for _, i := range []int{1, 2, 3} {
		if !union.Contains(i) {
			t.Errorf("union missing %d", i)
		}
	}

	inter := NewSet1D(64)
	inter.CopyFrom(&a)
	inter.IntersectWith(&b)
	if !inter.Contains(2) || inter.Contains(1) || inter.Contains(3) {
		t.Errorf("intersect wrong: %v", inter)
	}

	diff := NewSet1D(64)
	diff.CopyFrom(&a)
	diff.DifferenceWith(&b)
	if !diff.Contains(1) || diff.Contains(2) {
		t.Errorf("difference wrong")
	}

	if !inter.IsSubset(&a) {
		t.Errorf("intersect should be subset of a")
	}
}

func TestSet2DRowsShareStorage(t *testing.T) {
	g := NewSet2D(3, 40)
	g.Insert(1, 35)
	row := g.Row(1)
	if !row.Contains(35) {
		t.Errorf("row view should see inserted bit")
	}
	if !g.Contains(1, 35) {
		t.Errorf("grid should see bit set via row view")
	}
	if g.Contains(0, 35) {
		t.Errorf("other rows must be unaffected")
	}
}

func TestSet3DPlaneAndRow(t *testing.T) {
	cube := NewSet3D(2, 3, 40)
	row := cube.Row(1, 2)
	row.Insert(10)
	if !cube.Row(1, 2).Contains(10) {
		t.Errorf("cube should observe mutation through row view")
	}
	if cube.Row(0, 2).Contains(10) {
		t.Errorf("other planes must be unaffected")
	}
}

func TestCompactDistance(t *testing.T) {
	cube := NewSet3D(1, 3, 32)
	cube.Row(0, 0).Insert(5)
	cube.Row(0, 1).Insert(5)
	cube.Row(0, 2).Insert(5)
	cube.CompactDistance(0, 0, 3)
	if cube.Row(0, 1).Contains(5) {
		t.Errorf("state 5 should have been compacted out of fuzz=1")
	}
	if cube.Row(0, 2).Contains(5) {
		t.Errorf("state 5 should have been compacted out of fuzz=2")
	}
	if !cube.Row(0, 0).Contains(5) {
		t.Errorf("state 5 must remain at its minimal fuzz=0")
	}
}
