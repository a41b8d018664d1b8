package tui

import (
	"fmt"

	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// hudScore formats the score side of the HUD line.
func hudScore(snap sim.Snapshot) string {
	switch {
	case snap.Opponent != nil:
		return fmt.Sprintf("YOU %d : %d CPU", snap.Score, snap.OpponentScore)
	case len(snap.Bricks) > 0:
		return fmt.Sprintf("BRICKS %d", len(snap.Bricks))
	default:
		return fmt.Sprintf("SCORE %d", snap.Score)
	}
}

// hudSensor formats the sensor diagnostics side of the HUD line.
func hudSensor(state motion.SensorState) string {
	if !state.Enabled {
		return fmt.Sprintf("tilt off [%s, %s]", state.Tier, state.Permission)
	}
	return fmt.Sprintf("tilt %+.2f %+.2f [%s, %s]", state.TiltX, state.TiltY, state.Tier, state.Permission)
}

// drawHUD writes the HUD line into the top row of the canvas.
func drawHUD(c *Canvas, snap sim.Snapshot, state motion.SensorState, replay bool) {
	left := hudScore(snap)
	right := hudSensor(state)
	if replay {
		right = fmt.Sprintf("replay frame %d", snap.Frame)
	}
	c.DrawText(1, 0, left, ColorBrightWhite)
	c.DrawText(c.Width()-len([]rune(right))-1, 0, right, ColorGray)
}
