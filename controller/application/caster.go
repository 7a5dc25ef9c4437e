package application

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"machinethread/controller/domain"
)

// CastMode はレイキャストに使う線分集合の種類です。
type CastMode uint8

const (
	// CastVision は太らせていない壁とエージェントの当たり判定を使います。射線の確認用です。
	CastVision CastMode = iota
	// CastCollision は厚み1の矩形に広げた壁とエージェントの当たり判定を使います。移動と回避用です。
	CastCollision
)

func (m CastMode) String() string {
	if m == CastCollision {
		return "collision"
	}
	return "vision"
}

// HitOwner はレイが当たった線分の持ち主です。WallHit か AgentHit のどちらかです。
type HitOwner interface {
	isHitOwner()
}

// WallHit は静的な壁への命中です。
type WallHit struct{}

// AgentHit はエージェントの当たり判定への命中です。
type AgentHit struct {
	Name string
}

func (WallHit) isHitOwner()  {}
func (AgentHit) isHitOwner() {}

// RayHit はレイキャストの結果です。Hit が false のとき Point と Owner は意味を持ちません。
type RayHit struct {
	Point domain.Point
	Hit   bool
	Owner HitOwner
}

// DistSq は origin から命中点までの距離の2乗です。命中がなければ +Inf を返します。
func (h RayHit) DistSq(origin domain.Point) float64 {
	if !h.Hit {
		return math.Inf(1)
	}
	return origin.DistSq(h.Point)
}

// Agent は命中先がエージェントであればその名前を返します。
func (h RayHit) Agent() (string, bool) {
	if !h.Hit {
		return "", false
	}
	a, ok := h.Owner.(AgentHit)
	return a.Name, ok
}

type line struct {
	seg   domain.Segment
	owner HitOwner
	order int
}

// indexedLine は R-tree に載せる静的な線分です。
type indexedLine struct {
	line
	rect rtreego.Rect
}

func (l *indexedLine) Bounds() rtreego.Rect {
	return l.rect
}

// R-tree の矩形は境界で接するだけでは交差と見なされないため、少し広げて登録・検索する
const boundsPadding = 1e-6

// maxExtent は Extent の上限です。レイ長の2乗が float64 に収まる大きさにしています。
const maxExtent = 1e150

// Caster は静的な壁と毎tick更新されるエージェントの当たり判定に対してレイキャストを行います。
// 判断ループからのみ使われる前提で、ロックは持ちません。
type Caster struct {
	walls  []domain.Segment
	extent float64

	vision    []line
	collision []line

	visionIndex    *rtreego.Rtree
	collisionIndex *rtreego.Rtree
	linear         bool

	agents []line
}

type CasterOption func(*Caster)

// WithLinearScan は R-tree を使わずに全ての静的線分を走査します。
func WithLinearScan() CasterOption {
	return func(c *Caster) {
		c.linear = true
	}
}

// NewCaster は壁から視線用と衝突用の静的な線分集合を作ります。
func NewCaster(walls []domain.Segment, opts ...CasterOption) *Caster {
	c := &Caster{
		walls: append([]domain.Segment(nil), walls...),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i, w := range c.walls {
		c.vision = append(c.vision, line{seg: w, owner: WallHit{}, order: i})
		for _, edge := range thickenWall(w) {
			c.collision = append(c.collision, line{seg: edge, owner: WallHit{}, order: len(c.collision)})
		}
		c.extent = math.Max(c.extent, 2*math.Abs(w.A.X))
		c.extent = math.Max(c.extent, 2*math.Abs(w.A.Y))
		c.extent = math.Max(c.extent, 2*math.Abs(w.B.X))
		c.extent = math.Max(c.extent, 2*math.Abs(w.B.Y))
	}
	// 距離の2乗が有限に収まるようにする
	if !(c.extent <= maxExtent) {
		c.extent = maxExtent
	}

	if !c.linear {
		c.visionIndex = buildIndex(c.vision)
		c.collisionIndex = buildIndex(c.collision)
	}
	return c
}

// thickenWall は壁を中点中心・長さ+1・厚さ1の矩形の4辺に広げます。
func thickenWall(w domain.Segment) [4]domain.Segment {
	dx := w.A.X - w.B.X
	dy := w.A.Y - w.B.Y
	mx := (w.A.X + w.B.X) / 2
	my := (w.A.Y + w.B.Y) / 2
	length := math.Sqrt(dx*dx+dy*dy) + 1
	theta := math.Atan2(dy, dx)
	return rectEdges(mx, my, length, 1, theta)
}

func rectEdges(x, y, width, height, theta float64) [4]domain.Segment {
	dxWidth := math.Cos(theta) * width
	dyWidth := math.Sin(theta) * width
	dxHeight := math.Sin(theta) * height
	dyHeight := math.Cos(theta) * height

	ul := domain.Point{X: x + dxWidth/2 - dxHeight/2, Y: y + dyHeight/2 + dyWidth/2}
	ur := domain.Point{X: x - dxWidth/2 - dxHeight/2, Y: y + dyHeight/2 - dyWidth/2}
	bl := domain.Point{X: x + dxWidth/2 + dxHeight/2, Y: y - dyHeight/2 + dyWidth/2}
	br := domain.Point{X: x - dxWidth/2 + dxHeight/2, Y: y - dyHeight/2 - dyWidth/2}

	return [4]domain.Segment{
		{A: ul, B: ur},
		{A: ur, B: br},
		{A: br, B: bl},
		{A: bl, B: ul},
	}
}

func buildIndex(lines []line) *rtreego.Rtree {
	spatials := make([]rtreego.Spatial, 0, len(lines))
	for _, l := range lines {
		rect, err := segmentBounds(l.seg.A, l.seg.B)
		if err != nil {
			// 座標が有限でない壁は索引に載らない
			continue
		}
		spatials = append(spatials, &indexedLine{line: l, rect: rect})
	}
	return rtreego.NewTree(2, 25, 50, spatials...)
}

func segmentBounds(a, b domain.Point) (rtreego.Rect, error) {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return rtreego.NewRect(
		rtreego.Point{minX - boundsPadding, minY - boundsPadding},
		[]float64{maxX - minX + 2*boundsPadding, maxY - minY + 2*boundsPadding},
	)
}

// Walls は構築に使った壁を返します。
func (c *Caster) Walls() []domain.Segment {
	return c.walls
}

// Extent は壁の端点座標の絶対値の最大の2倍です。レイの長さはこの1.5倍になります。
func (c *Caster) Extent() float64 {
	return c.extent
}

// RayLength はキャストするレイの長さです。
func (c *Caster) RayLength() float64 {
	return c.extent * 1.5
}

// Update は現在見えているエージェントの当たり判定を差し替えます。
// 各エージェントについて一辺 Size の軸平行な正方形の対角線2本を、名前付きで両方の集合に加えます。
func (c *Caster) Update(agents []domain.Pose) {
	c.agents = c.agents[:0]
	for _, p := range agents {
		half := p.Size / 2
		x3, y3 := p.X-half, p.Y-half
		x4, y4 := p.X+half, p.Y+half
		owner := AgentHit{Name: p.Name}
		c.agents = append(c.agents,
			line{seg: domain.Segment{A: domain.Point{X: x3, Y: y3}, B: domain.Point{X: x4, Y: y4}}, owner: owner, order: len(c.agents)},
			line{seg: domain.Segment{A: domain.Point{X: x3, Y: y4}, B: domain.Point{X: x4, Y: y3}}, owner: owner, order: len(c.agents) + 1},
		)
	}
}

// Cast は origin から theta 方向に最も近い命中を返します。
// exclude と同じ名前のエージェントの当たり判定は無視します（空文字なら何も除外しません）。
func (c *Caster) Cast(origin domain.Point, theta float64, exclude string, mode CastMode) RayHit {
	length := c.RayLength()
	end := origin.Add(domain.Point{X: math.Cos(theta) * length, Y: math.Sin(theta) * length})

	var best RayHit
	bestDist := math.Inf(1)
	consider := func(l line) {
		if a, ok := l.owner.(AgentHit); ok && exclude != "" && a.Name == exclude {
			return
		}
		if !domain.Pretest(origin, end, l.seg.A, l.seg.B) {
			return
		}
		p, ok := domain.Intersect(origin, end, l.seg.A, l.seg.B)
		if !ok {
			return
		}
		if d := origin.DistSq(p); d < bestDist {
			bestDist = d
			best = RayHit{Point: p, Hit: true, Owner: l.owner}
		}
	}

	for _, l := range c.staticCandidates(origin, end, mode) {
		consider(l)
	}
	for _, l := range c.agents {
		consider(l)
	}
	return best
}

func (c *Caster) staticCandidates(origin, end domain.Point, mode CastMode) []line {
	lines, index := c.vision, c.visionIndex
	if mode == CastCollision {
		lines, index = c.collision, c.collisionIndex
	}
	if c.linear || index == nil {
		return lines
	}

	bb, err := segmentBounds(origin, end)
	if err != nil {
		return lines
	}
	found := index.SearchIntersect(bb)
	out := make([]line, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*indexedLine).line)
	}
	// 全走査と同じ順序で評価して、同距離の命中の選び方を揃える
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}
