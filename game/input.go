package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/moodbiome/mood"
)

// maxCategoryKeys is how many categories the number keys can select.
const maxCategoryKeys = 9

// handleInput processes keyboard and pointer input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	if rl.IsKeyPressed(rl.KeyD) {
		g.debugMode = !g.debugMode
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Number keys select categories in table order
	n := min(g.sim.Table().Len(), maxCategoryKeys)
	for i := 0; i < n; i++ {
		if rl.IsKeyPressed(int32(rl.KeyOne) + int32(i)) {
			g.sim.SelectCategoryID(mood.ID(i))
		}
	}

	g.handlePointer()
}

// handlePointer forwards pointer motion and clicks outside the button bar.
func (g *Game) handlePointer() {
	pos := rl.GetMousePosition()
	if g.overButtons(pos) {
		g.lastMouse = pos
		return
	}

	if pos != g.lastMouse {
		g.sim.OnPointerMove(pos.X, pos.Y)
		g.lastMouse = pos
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.sim.OnPointerClick(pos.X, pos.Y)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.sim.OnResize(w, h)

	rl.UnloadRenderTexture(g.trail)
	g.trail = rl.LoadRenderTexture(int32(w), int32(h))
}
