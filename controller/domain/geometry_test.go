package domain

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

const eps = 1e-9

func TestIntersect_Crossing(t *testing.T) {
	p, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 4, Y: 4}, Point{X: 0, Y: 4}, Point{X: 4, Y: 0})
	if !ok {
		t.Fatal("expected intersection")
	}
	if math.Abs(p.X-2) > eps || math.Abs(p.Y-2) > eps {
		t.Errorf("point = %+v, want {2, 2}", p)
	}
}

func TestIntersect_OffAxisCrossing(t *testing.T) {
	// y = x/2 と x = 3 の交点は (3, 1.5)
	p, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 10, Y: 5}, Point{X: 3, Y: -10}, Point{X: 3, Y: 10})
	if !ok {
		t.Fatal("expected intersection")
	}
	if math.Abs(p.X-3) > eps || math.Abs(p.Y-1.5) > eps {
		t.Errorf("point = %+v, want {3, 1.5}", p)
	}
}

func TestIntersect_OutsideParameterRange(t *testing.T) {
	// 直線としては (5, 5) で交わるが、a は (0,0)-(1,1) で届かない
	if p, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 1, Y: 1}, Point{X: 0, Y: 10}, Point{X: 10, Y: 0}); ok {
		t.Errorf("unexpected intersection at %+v", p)
	}
	// b 側のパラメータが範囲外
	if p, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 10, Y: 10}, Point{X: 0, Y: 10}, Point{X: 1, Y: 9}); ok {
		t.Errorf("unexpected intersection at %+v", p)
	}
}

func TestIntersect_ParallelAndCollinear(t *testing.T) {
	if _, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 0, Y: 1}, Point{X: 1, Y: 1}); ok {
		t.Error("parallel segments must not intersect")
	}
	if _, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 2, Y: 0}, Point{X: 1, Y: 0}, Point{X: 3, Y: 0}); ok {
		t.Error("collinear overlapping segments must not report a single intersection")
	}
}

func TestIntersect_ZeroLength(t *testing.T) {
	if _, ok := Intersect(Point{X: 1, Y: 1}, Point{X: 1, Y: 1}, Point{X: 0, Y: 0}, Point{X: 2, Y: 2}); ok {
		t.Error("zero-length segment must not intersect")
	}
}

func TestIntersect_Endpoint(t *testing.T) {
	p, ok := Intersect(Point{X: 0, Y: 0}, Point{X: 2, Y: 0}, Point{X: 2, Y: -1}, Point{X: 2, Y: 1})
	if !ok {
		t.Fatal("touching at the endpoint should intersect")
	}
	if math.Abs(p.X-2) > eps || math.Abs(p.Y) > eps {
		t.Errorf("point = %+v, want {2, 0}", p)
	}
}

func TestPretest_RejectsSeparated(t *testing.T) {
	cases := []struct {
		name           string
		a1, a2, b1, b2 Point
	}{
		{"left", Point{X: 0, Y: 0}, Point{X: 1, Y: 1}, Point{X: 2, Y: 0}, Point{X: 3, Y: 1}},
		{"right", Point{X: 5, Y: 0}, Point{X: 6, Y: 1}, Point{X: 2, Y: 0}, Point{X: 3, Y: 1}},
		{"below", Point{X: 0, Y: 0}, Point{X: 1, Y: 1}, Point{X: 0, Y: 5}, Point{X: 1, Y: 6}},
		{"above", Point{X: 0, Y: 9}, Point{X: 1, Y: 8}, Point{X: 0, Y: 5}, Point{X: 1, Y: 6}},
	}
	for _, tc := range cases {
		if Pretest(tc.a1, tc.a2, tc.b1, tc.b2) {
			t.Errorf("%s: Pretest = true, want false", tc.name)
		}
	}
	if !Pretest(Point{X: 0, Y: 0}, Point{X: 4, Y: 4}, Point{X: 0, Y: 4}, Point{X: 4, Y: 0}) {
		t.Error("overlapping boxes must pass the pretest")
	}
}

func genPoint(t *rapid.T, label string) Point {
	return Point{
		X: rapid.Float64Range(-100, 100).Draw(t, label+".x"),
		Y: rapid.Float64Range(-100, 100).Draw(t, label+".y"),
	}
}

// Pretest が棄却した組は Intersect でも交差しないこと
func TestPretest_NoFalseNegatives(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a1, a2 := genPoint(t, "a1"), genPoint(t, "a2")
		b1, b2 := genPoint(t, "b1"), genPoint(t, "b2")
		_, hit := Intersect(a1, a2, b1, b2)
		if hit && !Pretest(a1, a2, b1, b2) {
			t.Fatalf("pretest rejected an intersecting pair: %+v %+v / %+v %+v", a1, a2, b1, b2)
		}
	})
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		got := NormalizeAngle(tc.in)
		if math.Abs(got-tc.want) > eps {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAngle_Range(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		theta := rapid.Float64Range(-1000, 1000).Draw(t, "theta")
		got := NormalizeAngle(theta)
		if got <= -math.Pi || got > math.Pi {
			t.Fatalf("NormalizeAngle(%v) = %v, outside (-π, π]", theta, got)
		}
		if d := math.Remainder(got-theta, 2*math.Pi); math.Abs(d) > 1e-6 {
			t.Fatalf("NormalizeAngle(%v) = %v is not congruent", theta, got)
		}
	})
}
