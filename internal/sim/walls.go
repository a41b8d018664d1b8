package sim

import "github.com/vovakirdan/tilt-arcade/internal/core"

// Walls selects playfield edges.
type Walls uint8

const (
	WallLeft Walls = 1 << iota
	WallRight
	WallTop
	WallBottom

	WallSides = WallLeft | WallRight
)

// Reflect bounces a circle body off the selected edges of bounds and returns
// the edges it hit. A velocity component is only flipped while it points
// out of the playfield, so a ball still overlapping an edge after a bounce
// is not flipped back.
func Reflect(b *Body, bounds core.Rect, walls Walls) Walls {
	var hit Walls
	if walls&WallLeft != 0 && b.Pos.X-b.Radius < bounds.X && b.Vel.X < 0 {
		b.Vel.X = -b.Vel.X
		hit |= WallLeft
	}
	if walls&WallRight != 0 && b.Pos.X+b.Radius > bounds.Right() && b.Vel.X > 0 {
		b.Vel.X = -b.Vel.X
		hit |= WallRight
	}
	if walls&WallTop != 0 && b.Pos.Y-b.Radius < bounds.Y && b.Vel.Y < 0 {
		b.Vel.Y = -b.Vel.Y
		hit |= WallTop
	}
	if walls&WallBottom != 0 && b.Pos.Y+b.Radius > bounds.Bottom() && b.Vel.Y > 0 {
		b.Vel.Y = -b.Vel.Y
		hit |= WallBottom
	}
	return hit
}
