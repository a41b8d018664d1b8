package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// Color represents a foreground color for a canvas cell.
type Color uint8

// Palette used by the canvas.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// brickColors cycles per brick row.
var brickColors = []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorCyan, ColorBlue, ColorMagenta}

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2.0

// Cell is one character of the canvas.
type Cell struct {
	Rune  rune
	Color Color
}

// Canvas is a 2D cell buffer that a snapshot is rasterized into. The
// playfield is scaled to fit inside a border, keeping its aspect.
type Canvas struct {
	width  int
	height int
	cells  [][]Cell

	// Field layout in cells, border excluded.
	fieldX, fieldY int
	cols, rows     int
	scaleX, scaleY float64
}

// NewCanvas creates a blank canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// Resize changes the canvas dimensions and clears it.
func (c *Canvas) Resize(width, height int) {
	c.width = max(width, 0)
	c.height = max(height, 0)
	c.cells = make([][]Cell, c.height)
	for y := range c.cells {
		c.cells[y] = make([]Cell, c.width)
	}
	c.Clear()
}

// Clear fills the entire canvas with blank cells.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = Cell{Rune: ' '}
		}
	}
}

// Set places a rune at the given position.
// Out-of-bounds coordinates are silently ignored.
func (c *Canvas) Set(x, y int, r rune, color Color) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y][x] = Cell{Rune: r, Color: color}
}

// Get returns the cell at the given position, blank when out of bounds.
func (c *Canvas) Get(x, y int) Cell {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Cell{Rune: ' '}
	}
	return c.cells[y][x]
}

// DrawText writes a string horizontally starting at (x, y).
func (c *Canvas) DrawText(x, y int, text string, color Color) {
	i := 0
	for _, r := range text {
		c.Set(x+i, y, r, color)
		i++
	}
}

// DrawTextCentered draws text centered horizontally at the given y position.
func (c *Canvas) DrawTextCentered(y int, text string, color Color) {
	x := (c.width - len([]rune(text))) / 2
	c.DrawText(x, y, text, color)
}

// DrawBox draws a box outline with the top-left corner at (x, y).
func (c *Canvas) DrawBox(x, y, w, h int, color Color) {
	if w < 2 || h < 2 {
		return
	}
	right, bottom := x+w-1, y+h-1
	c.Set(x, y, '┌', color)
	c.Set(right, y, '┐', color)
	c.Set(x, bottom, '└', color)
	c.Set(right, bottom, '┘', color)
	for i := x + 1; i < right; i++ {
		c.Set(i, y, '─', color)
		c.Set(i, bottom, '─', color)
	}
	for j := y + 1; j < bottom; j++ {
		c.Set(x, j, '│', color)
		c.Set(right, j, '│', color)
	}
}

// fillBox fills a rectangle of cells.
func (c *Canvas) fillBox(x, y, w, h int, r rune, color Color) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			c.Set(i, j, r, color)
		}
	}
}

// Layout fits a playfield of the given size into the canvas, leaving
// reserved rows at the top for the HUD.
func (c *Canvas) Layout(fieldW, fieldH float64, reserved int) {
	availW := c.width - 2
	availH := c.height - reserved - 2
	if availW < 1 || availH < 1 || fieldW <= 0 || fieldH <= 0 {
		c.cols, c.rows = 0, 0
		return
	}

	cols := availW
	rows := int(float64(cols) * fieldH / fieldW / cellAspect)
	if rows > availH {
		rows = availH
		cols = int(float64(rows) * cellAspect * fieldW / fieldH)
	}
	c.cols, c.rows = max(cols, 1), max(rows, 1)
	c.scaleX = float64(c.cols) / fieldW
	c.scaleY = float64(c.rows) / fieldH
	c.fieldX = (c.width - c.cols) / 2
	c.fieldY = reserved + 1
	if c.fieldX < 1 {
		c.fieldX = 1
	}
}

// FieldX converts a terminal column to a playfield x coordinate. It
// reports false when the column is outside the playfield.
func (c *Canvas) FieldX(col int) (float64, bool) {
	if c.cols == 0 {
		return 0, false
	}
	i := col - c.fieldX
	if i < 0 || i >= c.cols {
		return 0, false
	}
	return (float64(i) + 0.5) / c.scaleX, true
}

// DrawSnapshot clears the canvas and rasterizes a snapshot into the
// playfield area, including the border and the game-over overlay.
func (c *Canvas) DrawSnapshot(snap sim.Snapshot, reserved int) {
	c.Clear()
	c.Layout(snap.Width, snap.Height, reserved)
	if c.cols == 0 {
		c.DrawTextCentered(c.height/2, "terminal too small", ColorGray)
		return
	}
	c.DrawBox(c.fieldX-1, c.fieldY-1, c.cols+2, c.rows+2, ColorGray)

	for _, b := range snap.Bricks {
		row := int(b.Pos.Y * c.scaleY)
		c.drawBody(b, '▒', brickColors[row%len(brickColors)])
	}
	for _, b := range snap.Obstacles {
		c.drawBody(b, '▓', ColorRed)
	}
	for _, b := range snap.Projectiles {
		c.drawBody(b, '│', ColorBrightYellow)
	}
	if snap.Opponent != nil {
		c.drawBody(*snap.Opponent, '▀', ColorMagenta)
	}
	if snap.Player != nil {
		glyph := '█'
		if snap.Player.Kind == sim.KindPaddle {
			glyph = '▄'
		}
		c.drawBody(*snap.Player, glyph, ColorBrightGreen)
	}
	if snap.Ball != nil {
		c.drawBody(*snap.Ball, '●', ColorBrightWhite)
	}

	if snap.GameOver() {
		c.drawGameOver(snap)
	}
}

// drawBody fills the cells a body covers. Bodies with an extent are drawn
// from their top-left corner; bare circles are drawn around their centre.
func (c *Canvas) drawBody(b sim.Body, r rune, color Color) {
	var x0, y0, x1, y1 float64
	if b.W > 0 && b.H > 0 {
		x0, y0 = b.Pos.X, b.Pos.Y
		x1, y1 = b.Pos.X+b.W, b.Pos.Y+b.H
	} else {
		x0, y0 = b.Pos.X-b.Radius, b.Pos.Y-b.Radius
		x1, y1 = b.Pos.X+b.Radius, b.Pos.Y+b.Radius
	}

	left := int(math.Floor(x0 * c.scaleX))
	top := int(math.Floor(y0 * c.scaleY))
	right := max(int(math.Ceil(x1*c.scaleX)), left+1)
	bottom := max(int(math.Ceil(y1*c.scaleY)), top+1)

	for j := max(top, 0); j < min(bottom, c.rows); j++ {
		for i := max(left, 0); i < min(right, c.cols); i++ {
			c.Set(c.fieldX+i, c.fieldY+j, r, color)
		}
	}
}

func (c *Canvas) drawGameOver(snap sim.Snapshot) {
	title := "GAME OVER"
	detail := fmt.Sprintf("score %d", snap.Score)
	if snap.Opponent != nil {
		title = "CPU WINS"
		if snap.PlayerWon() {
			title = "YOU WIN"
		}
		detail = fmt.Sprintf("%d : %d", snap.Score, snap.OpponentScore)
	}
	lines := []string{title, detail, "r/enter to restart"}

	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	w += 4
	h := len(lines) + 2
	x := c.fieldX + (c.cols-w)/2
	y := c.fieldY + (c.rows-h)/2

	c.fillBox(x, y, w, h, ' ', ColorDefault)
	c.DrawBox(x, y, w, h, ColorBrightYellow)
	for i, l := range lines {
		color := ColorBrightWhite
		if i == 0 {
			color = ColorBrightYellow
		}
		c.DrawText(x+(w-len([]rune(l)))/2, y+1+i, l, color)
	}
}

// String converts the canvas to plain text, one line per row.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.width*c.height + c.height)

	for y := 0; y < c.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < c.width; x++ {
			sb.WriteRune(c.cells[y][x].Rune)
		}
	}
	return sb.String()
}

// Row returns the specified row as plain text.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.height {
		return strings.Repeat(" ", c.width)
	}
	var sb strings.Builder
	for _, cell := range c.cells[y] {
		sb.WriteRune(cell.Rune)
	}
	return sb.String()
}
