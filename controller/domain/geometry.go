package domain

// Point は平面上の座標です。単位はシミュレーションのマップ座標に従います。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point     { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Perp() Point           { return Point{X: -p.Y, Y: p.X} }

// DistSq は2点間の距離の2乗です。
func (p Point) DistSq(q Point) float64 {
	d := p.Sub(q)
	return d.Dot(d)
}

// Segment は2点を結ぶ線分です。静的な壁として扱われ、試合中は変化しません。
type Segment struct {
	A, B Point
}

// Pretest は2線分のバウンディングボックスが明らかに離れている場合に false を返します。
// 厳密判定の前段で使う安価な棄却テストで、Intersect が交点を返す組を棄却することはありません。
func Pretest(a1, a2, b1, b2 Point) bool {
	if a1.X < b1.X && a2.X < b1.X && a1.X < b2.X && a2.X < b2.X {
		return false
	}
	if a1.X > b1.X && a2.X > b1.X && a1.X > b2.X && a2.X > b2.X {
		return false
	}
	if a1.Y < b1.Y && a2.Y < b1.Y && a1.Y < b2.Y && a2.Y < b2.Y {
		return false
	}
	if a1.Y > b1.Y && a2.Y > b1.Y && a1.Y > b2.Y && a2.Y > b2.Y {
		return false
	}
	return true
}

// Intersect は線分 a1-a2 と b1-b2 の交点を返します。
// 平行・同一直線上（分母が0）の場合や、どちらかのパラメータが [0,1] を外れる場合は false です。
func Intersect(a1, a2, b1, b2 Point) (Point, bool) {
	da := a2.Sub(a1)
	db := b2.Sub(b1)
	dp := a1.Sub(b1)
	dap := da.Perp()
	dbp := db.Perp()

	denom := dap.Dot(db)
	denom2 := dbp.Dot(da)
	if denom == 0 || denom2 == 0 {
		return Point{}, false
	}

	s := dap.Dot(dp) / denom             // b 上のパラメータ
	s2 := dbp.Dot(dp.Scale(-1)) / denom2 // a 上のパラメータ
	if s < 0 || s > 1 || s2 < 0 || s2 > 1 {
		return Point{}, false
	}
	return b1.Add(db.Scale(s)), true
}
