package domain

// Pose はエージェント1体の状態です。
// MoveSpeed/TurnSpeed/AimSpeed は自機と追跡中の敵のみが持つ正規化済みの速度意図で、
// MoveStep/TurnStep/AimStep を掛けたものが1tickの変化量になります。
type Pose struct {
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Theta     float64 `json:"theta"`
	Aim       float64 `json:"aim"`
	Size      float64 `json:"size"`
	Bloom     float64 `json:"bloom"`
	Respawn   int     `json:"respawn"`
	MoveSpeed float64 `json:"movespeed"`
	TurnSpeed float64 `json:"turnspeed"`
	AimSpeed  float64 `json:"aimspeed"`
}

func (p Pose) Position() Point {
	return Point{X: p.X, Y: p.Y}
}

// IsRespawning はリスポーン待ちであれば true を返します。
func (p Pose) IsRespawning() bool {
	return p.Respawn > 0
}
