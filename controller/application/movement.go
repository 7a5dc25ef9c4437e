package application

import (
	"math"

	"machinethread/controller/domain"
)

// blockSlack は移動量の判定に加える余裕です。境界上での振動を避けます。
const blockSlack = 1.01

// Advance はシミュレータと同じ移動モデルで pose を1tick進めたものを返します。
// 進行方向に衝突用の線分があり、移動量より近ければその場に留まります（自分の当たり判定は除外）。
// 照準は旋回に引きずられて回るため、AimSpeed が0でも TurnSpeed ぶん動きます。
func Advance(pose domain.Pose, caster *Caster) domain.Pose {
	dx := math.Cos(pose.Theta) * pose.MoveSpeed * domain.MoveStep
	dy := math.Sin(pose.Theta) * pose.MoveSpeed * domain.MoveStep

	if caster != nil && (dx != 0 || dy != 0) {
		heading := pose.Theta
		if pose.MoveSpeed < 0 {
			heading -= math.Pi
		}
		hit := caster.Cast(pose.Position(), heading, pose.Name, CastCollision)
		if hit.Hit && hit.DistSq(pose.Position()) <= (dx*dx+dy*dy)*blockSlack {
			dx, dy = 0, 0
		}
	}

	next := pose
	next.X += dx
	next.Y += dy
	next.Theta = domain.NormalizeAngle(pose.Theta + pose.TurnSpeed*domain.TurnStep)
	next.Aim = domain.NormalizeAngle(pose.Aim + pose.AimSpeed*domain.AimStep + pose.TurnSpeed*domain.TurnStep)
	return next
}
