package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinethread/controller/domain"
)

func TestTracker_PredictsUntilForgotten(t *testing.T) {
	tr := NewTracker(WithForgetTicks(3))
	tr.Update([]domain.Pose{{Name: "foe", MoveSpeed: 1, TurnSpeed: 1, AimSpeed: 1}}, nil)

	tr.Update(nil, nil)
	e, ok := tr.Get("foe")
	require.True(t, ok)
	assert.Equal(t, 2, e.ForgetTicks)
	assert.InDelta(t, domain.MoveStep, e.X, 1e-9)
	assert.InDelta(t, domain.TurnStep, e.Theta, 1e-9)
	assert.InDelta(t, 0.99, e.MoveSpeed, 1e-12)
	assert.InDelta(t, 0.8, e.TurnSpeed, 1e-12)
	assert.InDelta(t, 0.8, e.AimSpeed, 1e-12)

	tr.Update(nil, nil)
	e, ok = tr.Get("foe")
	require.True(t, ok)
	assert.Equal(t, 1, e.ForgetTicks)
	assert.InDelta(t, 0.99*0.99, e.MoveSpeed, 1e-12)

	tr.Update(nil, nil)
	_, ok = tr.Get("foe")
	assert.False(t, ok)
	assert.Zero(t, tr.Len())
}

func TestTracker_ResightingResetsCountdown(t *testing.T) {
	tr := NewTracker(WithForgetTicks(3))
	tr.Update([]domain.Pose{{Name: "foe", MoveSpeed: 1}}, nil)
	tr.Update(nil, nil)
	tr.Update([]domain.Pose{{Name: "foe", X: 5, Y: 5}}, nil)

	e, ok := tr.Get("foe")
	require.True(t, ok)
	assert.Equal(t, 3, e.ForgetTicks)
	assert.Equal(t, domain.Pose{Name: "foe", X: 5, Y: 5}, e.Pose)
}

func TestTracker_RespawningEnemyIsDroppedWhenCountdownEnds(t *testing.T) {
	tr := NewTracker()
	tr.Update([]domain.Pose{{Name: "foe", X: 1, Respawn: 2, MoveSpeed: 1}}, nil)

	tr.Update(nil, nil)
	e, ok := tr.Get("foe")
	require.True(t, ok)
	assert.Equal(t, 1, e.Respawn)
	// リスポーン待ちの間は動かさない
	assert.Equal(t, 1.0, e.X)

	tr.Update(nil, nil)
	_, ok = tr.Get("foe")
	assert.False(t, ok)
}

func TestTracker_PredictionStopsAtWalls(t *testing.T) {
	c := NewCaster([]domain.Segment{verticalWall(0.6)})
	tr := NewTracker()
	tr.Update([]domain.Pose{{Name: "foe", MoveSpeed: 1}}, c)

	tr.Update(nil, c)
	e, ok := tr.Get("foe")
	require.True(t, ok)
	assert.Zero(t, e.X)
}

func TestTracker_EnemiesAreUniqueAndSorted(t *testing.T) {
	tr := NewTracker()
	tr.Update([]domain.Pose{{Name: "b"}, {Name: "a"}}, nil)
	tr.Update([]domain.Pose{{Name: "c"}, {Name: "a", X: 3}}, nil)

	enemies := tr.Enemies()
	require.Len(t, enemies, 3)
	assert.Equal(t, "a", enemies[0].Name)
	assert.Equal(t, 3.0, enemies[0].X)
	assert.Equal(t, "b", enemies[1].Name)
	assert.Equal(t, DefaultForgetTicks-1, enemies[1].ForgetTicks)
	assert.Equal(t, "c", enemies[2].Name)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(WithForgetTicks(0))
	tr.Update([]domain.Pose{{Name: "foe"}}, nil)
	e, _ := tr.Get("foe")
	assert.Equal(t, DefaultForgetTicks, e.ForgetTicks)

	tr.Reset()
	assert.Zero(t, tr.Len())
	assert.Empty(t, tr.Enemies())
}
