package utils

import (
	"math"

	"machinethread/controller/domain"
)

func FinitePoint(p domain.Point) bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// FinitePose はレイキャストと移動予測に使う値がすべて有限であれば true を返します。
// 速度意図は自機と追跡中の敵にしか入らないため見ません。
func FinitePose(p domain.Pose) bool {
	return FinitePoint(p.Position()) && isFinite(p.Theta) && isFinite(p.Aim) && isFinite(p.Size) && isFinite(p.Bloom)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
