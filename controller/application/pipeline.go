package application

import (
	"math"

	"machinethread/controller/domain"
)

// PipelineConfig は判断パイプラインの閾値です。距離の閾値は特記がない限り距離の2乗です。
type PipelineConfig struct {
	AvoidAngle     float64 // 左右の探索レイの角度 (rad)
	AvoidThreshold float64 // これより近い障害物があれば回避する
	AvoidGain      float64 // turn = (dLeft - dRight) / AvoidGain

	ApproachSpeed float64 // 目標がいるときの前進速度
	TurnDeadZone  float64 // |turn| がこれ未満なら旋回しない
	MaxTurn       float64 // 目標追尾時の旋回の上限
	ScanAim       float64 // 目標がいないときの照準の回し方

	EvadeThreshold float64 // 正面がこれより近ければその場で旋回する
	ShortRange     float64 // 正面がこれより近ければ速射に切り替える
	LongRange      float64 // 正面がこれより遠ければ速射に切り替える

	MaxEngagementRange float64 // 射撃する最大距離（2乗ではない）
	MinBloomRange      float64 // 拡散判定に使う距離の下限（2乗ではない）
	CreepSpeed         float64 // 拡散が収まるまでの前進速度

	// LegacyXRanking は目標選択の距離を x 軸の差だけで測ります（dx*dx + dx*dx）。
	// 以前の挙動との互換用で、通常はユークリッド距離を使います。
	LegacyXRanking bool
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		AvoidAngle:     domain.Radians(20),
		AvoidThreshold: 100,
		AvoidGain:      30,

		ApproachSpeed: 0.4,
		TurnDeadZone:  1.5,
		MaxTurn:       0.75,
		ScanAim:       1,

		EvadeThreshold: 10,
		ShortRange:     10 * 10,
		LongRange:      20 * 20,

		MaxEngagementRange: 50,
		MinBloomRange:      5,
		CreepSpeed:         0.3,
	}
}

// Decision はパイプラインの出力です。Target は目標が見つからなければ nil です。
type Decision struct {
	Command domain.Command
	Target  *TrackedEnemy
}

// Pipeline は4段の規則でスナップショットから操作指示を作ります。
// 各段は前段までの提案を受け取り、任意のフィールドを上書きできます。
// どの段もエラーを返しません。レイが何にも当たらなければ「障害物なし・命中なし」として扱います。
type Pipeline struct {
	cfg PipelineConfig
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) Config() PipelineConfig {
	return p.cfg
}

// Decide は self と既知の敵から今回の操作指示を決めます。乱数は使いません。
func (p *Pipeline) Decide(self domain.Pose, enemies []TrackedEnemy, caster *Caster) Decision {
	d := Decision{Command: domain.DefaultCommand()}
	p.avoidObstacles(self, caster, &d)
	p.acquireTarget(self, enemies, &d)
	p.closeRangeSafety(self, caster, &d)
	p.verifyTarget(self, caster, &d)
	return d
}

// clearance は衝突用レイで測った障害物までの距離の2乗です。当たらなければレイ長の2乗を返します。
func clearance(self domain.Pose, theta float64, caster *Caster) float64 {
	hit := caster.Cast(self.Position(), theta, self.Name, CastCollision)
	if !hit.Hit {
		l := caster.RayLength()
		return l * l
	}
	return hit.DistSq(self.Position())
}

// 1. 障害物回避
func (p *Pipeline) avoidObstacles(self domain.Pose, caster *Caster, d *Decision) {
	dLeft := clearance(self, self.Theta+p.cfg.AvoidAngle, caster)
	dRight := clearance(self, self.Theta-p.cfg.AvoidAngle, caster)
	if dLeft < p.cfg.AvoidThreshold || dRight < p.cfg.AvoidThreshold {
		d.Command.Turn = (dLeft - dRight) / p.cfg.AvoidGain
	}
}

// 2. 目標の選択と追尾
func (p *Pipeline) acquireTarget(self domain.Pose, enemies []TrackedEnemy, d *Decision) {
	var target *TrackedEnemy
	best := 0.0
	for i := range enemies {
		e := &enemies[i]
		if e.IsRespawning() || e.Name == self.Name {
			continue
		}
		dx := e.X - self.X
		dy := e.Y - self.Y
		if p.cfg.LegacyXRanking {
			dy = dx
		}
		dist := dx*dx + dy*dy
		if target == nil || dist < best {
			target = e
			best = dist
		}
	}

	if target == nil {
		d.Command.Aim = p.cfg.ScanAim
		return
	}
	t := *target
	d.Target = &t

	bearing := math.Atan2(target.Y-self.Y, target.X-self.X)

	turn := domain.NormalizeAngle(bearing-self.Theta) / (domain.TurnStep * 2)
	if math.Abs(turn) < p.cfg.TurnDeadZone {
		turn = 0
	}
	d.Command.Turn = clamp(turn, -p.cfg.MaxTurn, p.cfg.MaxTurn)

	aim := domain.NormalizeAngle(bearing-self.Aim) / domain.AimStep
	d.Command.Aim = clamp(aim, -1, 1)
	d.Command.Speed = p.cfg.ApproachSpeed
}

// 3. 至近距離の安全確保と武器の選択
func (p *Pipeline) closeRangeSafety(self domain.Pose, caster *Caster, d *Decision) {
	ahead := clearance(self, self.Theta, caster)
	if ahead < p.cfg.EvadeThreshold {
		d.Command.Turn = 1
	}
	if d.Command.Fire == domain.FireSplash && (ahead < p.cfg.ShortRange || ahead > p.cfg.LongRange) {
		d.Command.Fire = domain.FirePrimary
	}
}

// 4. 射線の確認
func (p *Pipeline) verifyTarget(self domain.Pose, caster *Caster, d *Decision) {
	hit := caster.Cast(self.Position(), self.Aim, self.Name, CastVision)
	rng := caster.RayLength()
	if hit.Hit {
		rng = math.Sqrt(hit.DistSq(self.Position()))
	}
	_, onAgent := hit.Agent()

	if d.Target == nil || !onAgent || rng > p.cfg.MaxEngagementRange {
		d.Command.Fire = domain.FireNone
	} else {
		d.Command.Speed = 0
		d.Command.Turn = 0
		d.Command.Aim = 0
	}

	// 拡散が目標の見かけの半幅より大きければ撃たずに待つ
	l := math.Max(p.cfg.MinBloomRange, rng)
	if self.Bloom > math.Asin(0.5/l) {
		if d.Target == nil {
			d.Command.Speed = 0
		} else {
			d.Command.Speed = p.cfg.CreepSpeed
		}
		d.Command.Fire = domain.FireNone
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
