package application

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"machinethread/controller/domain"
	"machinethread/utils"
)

var ErrInvalidPose = errors.New("player pose has non-finite values")

// PilotConfig は Pilot の設定です。
type PilotConfig struct {
	Name        string // ログに出すコントローラ名
	Pipeline    PipelineConfig
	ForgetTicks int
	LinearScan  bool
}

func DefaultPilotConfig() PilotConfig {
	return PilotConfig{
		Pipeline:    DefaultPipelineConfig(),
		ForgetTicks: DefaultForgetTicks,
	}
}

// Pilot はスナップショットごとにシーン・敵の追跡・判断パイプラインを回す Application です。
// Handle は判断ループからのみ呼ばれます。
type Pilot struct {
	cfg      PilotConfig
	pipeline *Pipeline
	tracker  *Tracker
	caster   *Caster
}

var _ domain.Application = (*Pilot)(nil)

func NewPilot(cfg PilotConfig) *Pilot {
	return &Pilot{
		cfg:      cfg,
		pipeline: NewPipeline(cfg.Pipeline),
		tracker:  NewTracker(WithForgetTicks(cfg.ForgetTicks)),
	}
}

func (p *Pilot) Handle(ctx context.Context, msg *domain.Message) (*domain.Command, error) {
	switch {
	case msg.GameState != nil:
		return p.handleGameState(ctx, msg.GameState)
	case msg.Lobby != nil:
		slog.InfoContext(ctx, "waiting in lobby", "controller", p.cfg.Name, "timeout", msg.Lobby.Timeout)
		return nil, nil
	default:
		return nil, nil
	}
}

func (p *Pilot) handleGameState(ctx context.Context, gs *domain.GameState) (*domain.Command, error) {
	self := gs.Player
	if !utils.FinitePose(self) {
		return nil, ErrInvalidPose
	}

	p.ensureCaster(ctx, p.finiteWalls(ctx, gs.Walls))

	enemies := make([]domain.Pose, 0, len(gs.Players))
	for _, e := range gs.Players {
		if e.Name == self.Name {
			continue
		}
		if !utils.FinitePose(e) {
			slog.WarnContext(ctx, "skipping enemy with non-finite pose", "controller", p.cfg.Name, "enemy", e.Name)
			continue
		}
		enemies = append(enemies, e)
	}

	p.caster.Update(enemies)
	p.tracker.Update(enemies, p.caster)

	d := p.pipeline.Decide(self, p.tracker.Enemies(), p.caster)
	target := ""
	if d.Target != nil {
		target = d.Target.Name
	}
	slog.DebugContext(ctx, "decision",
		"controller", p.cfg.Name,
		"speed", d.Command.Speed,
		"turn", d.Command.Turn,
		"aim", d.Command.Aim,
		"fire", d.Command.Fire.String(),
		"target", target,
		"tracked", p.tracker.Len(),
		"remaining_ticks", gs.RemainingTicks,
	)
	return &d.Command, nil
}

// ensureCaster は壁が届くたびにそれを正とし、変わっていればシーンを作り直します。
// 壁のないスナップショットでは直前のシーンを使い続けます。
func (p *Pilot) ensureCaster(ctx context.Context, walls []domain.Segment) {
	if p.caster != nil && (len(walls) == 0 || slices.Equal(p.caster.Walls(), walls)) {
		return
	}
	if p.caster != nil {
		// 別の試合のマップに切り替わったので、古い予測は捨てる
		p.tracker.Reset()
	}
	var opts []CasterOption
	if p.cfg.LinearScan {
		opts = append(opts, WithLinearScan())
	}
	p.caster = NewCaster(walls, opts...)
	slog.InfoContext(ctx, "scene rebuilt", "controller", p.cfg.Name, "walls", len(walls), "extent", p.caster.Extent())
}

// finiteWalls は端点が有限でない壁を取り除きます。すべて有限なら walls をそのまま返します。
func (p *Pilot) finiteWalls(ctx context.Context, walls []domain.Segment) []domain.Segment {
	for i, w := range walls {
		if utils.FinitePoint(w.A) && utils.FinitePoint(w.B) {
			continue
		}
		out := append([]domain.Segment(nil), walls[:i]...)
		for _, w := range walls[i:] {
			if utils.FinitePoint(w.A) && utils.FinitePoint(w.B) {
				out = append(out, w)
			}
		}
		slog.WarnContext(ctx, "dropping walls with non-finite endpoints", "controller", p.cfg.Name, "dropped", len(walls)-len(out))
		return out
	}
	return walls
}
