package application

import (
	"sort"

	"machinethread/controller/domain"
)

const (
	// DefaultForgetTicks は見えなくなった敵の予測を保持する tick 数です。
	DefaultForgetTicks = 150

	turnDecay = 0.8
	aimDecay  = 0.8
	moveDecay = 0.99
)

// TrackedEnemy は追跡中の敵です。
type TrackedEnemy struct {
	domain.Pose
	ForgetTicks int
}

// Tracker はスナップショットに現れなかった敵の位置を推測航法で保持します。
// 判断ループからのみ使われる前提で、ロックは持ちません。
type Tracker struct {
	forgetTicks int
	enemies     map[string]*TrackedEnemy
}

type TrackerOption func(*Tracker)

// WithForgetTicks は予測を保持する tick 数を変更します。
func WithForgetTicks(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.forgetTicks = n
		}
	}
}

func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		forgetTicks: DefaultForgetTicks,
		enemies:     make(map[string]*TrackedEnemy),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update は1tick進めます。
// 今回見えなかった敵は忘却カウンタを減らして1tick先を予測し、速度意図を減衰させます。
// リスポーン待ちの敵はカウンタが0になった時点で破棄します（次のスナップショットに現れるため）。
// 最後に今回見えた敵を観測値で上書きし、カウンタを満タンに戻します。
func (t *Tracker) Update(seen []domain.Pose, caster *Caster) {
	present := make(map[string]struct{}, len(seen))
	for _, p := range seen {
		present[p.Name] = struct{}{}
	}

	var expired []string
	for name, e := range t.enemies {
		if _, ok := present[name]; ok {
			continue
		}

		e.ForgetTicks--
		remove := e.ForgetTicks <= 0

		if !remove {
			if e.IsRespawning() {
				e.Respawn--
				if e.Respawn == 0 {
					remove = true
				}
			} else {
				e.Pose = Advance(e.Pose, caster)
			}
		}

		e.TurnSpeed *= turnDecay
		e.AimSpeed *= aimDecay
		e.MoveSpeed *= moveDecay

		if remove {
			expired = append(expired, name)
		}
	}
	for _, name := range expired {
		delete(t.enemies, name)
	}

	for _, p := range seen {
		t.enemies[p.Name] = &TrackedEnemy{Pose: p, ForgetTicks: t.forgetTicks}
	}
}

// Enemies は追跡中の敵を名前順に返します。
func (t *Tracker) Enemies() []TrackedEnemy {
	out := make([]TrackedEnemy, 0, len(t.enemies))
	for _, e := range t.enemies {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *Tracker) Get(name string) (TrackedEnemy, bool) {
	e, ok := t.enemies[name]
	if !ok {
		return TrackedEnemy{}, false
	}
	return *e, true
}

func (t *Tracker) Len() int {
	return len(t.enemies)
}

// Reset は全ての追跡を破棄します。壁が変わった（試合が変わった）ときに使います。
func (t *Tracker) Reset() {
	clear(t.enemies)
}
