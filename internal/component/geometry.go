package component

import "math"

// Vec2 is a point or offset in world space.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2    { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Norm() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) Within(lo, hi Vec2) bool { return v.X >= lo.X && v.X <= hi.X && v.Y >= lo.Y && v.Y <= hi.Y }
