package domain

import "math"

// シミュレータ側の1tickあたりの移動量です。
const (
	MoveStep = 0.2
	TurnStep = 90.0 / 30.0 * math.Pi / 180.0
	AimStep  = 1.5 * TurnStep
)

// Radians は度数法の角度をラジアンに変換します。
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// NormalizeAngle は角度を (-π, π] に正規化します。
func NormalizeAngle(theta float64) float64 {
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return 0
	}
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}
