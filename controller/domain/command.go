package domain

// FireMode は射撃の種別です。ワイヤ上では shoot フィールドの 0/1/2 になります。
type FireMode uint8

const (
	FireNone    FireMode = 0
	FirePrimary FireMode = 1
	FireSplash  FireMode = 2
)

func (f FireMode) String() string {
	switch f {
	case FireNone:
		return "none"
	case FirePrimary:
		return "primary"
	case FireSplash:
		return "splash"
	default:
		return "unknown"
	}
}

// Command は1tickぶんの操作指示です。毎tick新しく作られ、保持されません。
type Command struct {
	Speed float64
	Turn  float64
	Aim   float64
	Fire  FireMode
}

// DefaultCommand はパイプライン開始時の既定値を返します。
func DefaultCommand() Command {
	return Command{Speed: 1, Turn: 0, Aim: 0, Fire: FireSplash}
}

// Clamped は speed/turn/aim を [-1, 1] に収めたコピーを返します。
func (c Command) Clamped() Command {
	return Command{
		Speed: clampUnit(c.Speed),
		Turn:  clampUnit(c.Turn),
		Aim:   clampUnit(c.Aim),
		Fire:  c.Fire,
	}
}

func clampUnit(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
