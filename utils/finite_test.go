package utils

import (
	"math"
	"testing"

	"machinethread/controller/domain"
)

func TestFinitePoint(t *testing.T) {
	if !FinitePoint(domain.Point{X: 1, Y: -2}) {
		t.Error("finite point reported as non-finite")
	}
	if FinitePoint(domain.Point{X: math.NaN(), Y: 0}) || FinitePoint(domain.Point{X: 0, Y: math.Inf(-1)}) {
		t.Error("non-finite point reported as finite")
	}
}

func TestFinitePose(t *testing.T) {
	p := domain.Pose{Name: "foe", X: 1, Y: 2, Theta: 0.5, Aim: -0.5, Size: 1}
	if !FinitePose(p) {
		t.Error("finite pose reported as non-finite")
	}
	p.Aim = math.NaN()
	if FinitePose(p) {
		t.Error("pose with NaN aim reported as finite")
	}
	p.Aim = 0
	p.Size = math.Inf(1)
	if FinitePose(p) {
		t.Error("pose with infinite size reported as finite")
	}
}
