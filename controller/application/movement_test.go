package application

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"machinethread/controller/domain"
)

func TestAdvance(t *testing.T) {
	cases := []struct {
		name  string
		walls []domain.Segment
		pose  domain.Pose
		wantX float64
		wantY float64
	}{
		{
			name:  "free forward",
			walls: []domain.Segment{verticalWall(10)},
			pose:  domain.Pose{Name: "me", MoveSpeed: 1},
			wantX: domain.MoveStep,
		},
		{
			name:  "half speed upward",
			walls: []domain.Segment{verticalWall(10)},
			pose:  domain.Pose{Name: "me", Theta: math.Pi / 2, MoveSpeed: 0.5},
			wantY: domain.MoveStep / 2,
		},
		{
			// 衝突用の辺は x = 0.1 にあり、移動量 0.2 より近い
			name:  "blocked by wall",
			walls: []domain.Segment{verticalWall(0.6)},
			pose:  domain.Pose{Name: "me", MoveSpeed: 1},
		},
		{
			name:  "wall beyond step",
			walls: []domain.Segment{verticalWall(0.75)},
			pose:  domain.Pose{Name: "me", MoveSpeed: 1},
			wantX: domain.MoveStep,
		},
		{
			name:  "blocked while reversing",
			walls: []domain.Segment{verticalWall(-0.6)},
			pose:  domain.Pose{Name: "me", MoveSpeed: -1},
		},
		{
			name:  "reverse away from wall",
			walls: []domain.Segment{verticalWall(0.6)},
			pose:  domain.Pose{Name: "me", MoveSpeed: -1},
			wantX: -domain.MoveStep,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Advance(tc.pose, NewCaster(tc.walls))
			assert.InDelta(t, tc.wantX, got.X, 1e-9)
			assert.InDelta(t, tc.wantY, got.Y, 1e-9)
		})
	}
}

func TestAdvance_IgnoresOwnHitbox(t *testing.T) {
	c := NewCaster([]domain.Segment{verticalWall(10)})
	pose := domain.Pose{Name: "me", Size: 1, MoveSpeed: 1}
	c.Update([]domain.Pose{pose})

	got := Advance(pose, c)
	assert.InDelta(t, domain.MoveStep, got.X, 1e-9)
}

func TestAdvance_WithoutCaster(t *testing.T) {
	got := Advance(domain.Pose{X: 1, Y: 1, MoveSpeed: 1}, nil)
	assert.InDelta(t, 1+domain.MoveStep, got.X, 1e-9)
	assert.InDelta(t, 1.0, got.Y, 1e-9)
}

func TestAdvance_AimFollowsTurn(t *testing.T) {
	got := Advance(domain.Pose{TurnSpeed: 1}, nil)
	assert.InDelta(t, domain.TurnStep, got.Theta, 1e-12)
	assert.InDelta(t, domain.TurnStep, got.Aim, 1e-12)

	got = Advance(domain.Pose{TurnSpeed: 0.5, AimSpeed: 1}, nil)
	assert.InDelta(t, domain.TurnStep/2, got.Theta, 1e-12)
	assert.InDelta(t, domain.AimStep+domain.TurnStep/2, got.Aim, 1e-12)
}

func TestAdvance_NormalizesAngles(t *testing.T) {
	got := Advance(domain.Pose{Theta: math.Pi - 0.01, Aim: -math.Pi + 0.01, TurnSpeed: 1, AimSpeed: -2}, nil)
	assert.InDelta(t, -math.Pi-0.01+domain.TurnStep, got.Theta, 1e-9)
	assert.Greater(t, got.Aim, -math.Pi)
	assert.LessOrEqual(t, got.Aim, math.Pi)
	assert.InDelta(t, math.Pi+0.01-2*domain.AimStep+domain.TurnStep, got.Aim, 1e-9)
}
