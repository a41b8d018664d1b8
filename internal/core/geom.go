// Package core provides fundamental types and utilities for the arcade platform.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "math"

// Vec2 is an immutable 2D point or vector in playfield units.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for constructing a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// Rect represents an axis-aligned bounding box used for collision detection.
type Rect struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 {
	return r.X + r.W/2
}

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 {
	return r.Y + r.H/2
}

// Circle is a circular collision shape.
type Circle struct {
	C Vec2
	R float64
}

// CircleCircle reports whether two circles overlap.
// Touching circles (distance equal to the radius sum) do not collide.
func CircleCircle(a, b Circle) bool {
	return Dist(a.C, b.C) < a.R+b.R
}

// CircleRect reports whether a circle moving with velocity vel has struck the
// horizontal face of r. The circle's centre must lie within the rect's
// horizontal span, its extent must overlap the rect vertically, and vel must
// point toward the rect's centre line. The last condition keeps a body that
// was just reflected from registering again while it still overlaps.
func CircleRect(c Circle, vel Vec2, r Rect) bool {
	if c.C.X < r.X || c.C.X > r.Right() {
		return false
	}
	if c.C.Y+c.R <= r.Y || c.C.Y-c.R >= r.Bottom() {
		return false
	}
	return vel.Y*(r.CenterY()-c.C.Y) > 0
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
