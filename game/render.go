package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/moodbiome/config"
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// trailFade is the alpha of the black wash drawn over the trail target each
// frame. Lower values leave longer trails.
const trailFade = 8

// Category button bar layout.
const (
	buttonWidth  = 96
	buttonHeight = 30
	buttonGap    = 8
	buttonTop    = 12
)

// Draw renders the game.
func (g *Game) Draw() {
	g.sim.RecordFrame()
	g.drawTrail()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	// Render textures are stored upside down
	src := rl.Rectangle{Width: float32(g.trail.Texture.Width), Height: -float32(g.trail.Texture.Height)}
	rl.DrawTextureRec(g.trail.Texture, src, rl.Vector2{}, rl.White)

	g.drawParticles()
	g.drawHUD()
	g.drawCategoryButtons()
	g.drawPopups()

	if g.debugMode {
		g.drawDebugMenu()
	}

	rl.EndDrawing()
}

// drawTrail washes the trail target with translucent black and draws the
// current entities on top, so moving stars leave fading streaks.
func (g *Game) drawTrail() {
	rl.BeginTextureMode(g.trail)
	rl.DrawRectangle(0, 0, g.trail.Texture.Width, g.trail.Texture.Height, rl.Color{A: trailFade})
	g.drawEntities()
	rl.EndTextureMode()
}

// drawEntities renders every entity as a filled star in its category color,
// faded by remaining lifespan.
func (g *Game) drawEntities() {
	table := g.sim.Table()

	var outline [starVertices]vec2
	fan := make([]rl.Vector2, starVertices+2)

	for _, e := range g.frame.Entities {
		cat, ok := table.Get(e.Category)
		if !ok {
			continue
		}
		r := e.Size * cat.SizeFactor * drawScale(e.Age)
		if r <= 0 {
			continue
		}

		starOutline(&outline, e.X, e.Y, e.Heading, r)
		fan[0] = rl.Vector2{X: e.X, Y: e.Y}
		for i, v := range outline {
			fan[i+1] = rl.Vector2{X: v.X, Y: v.Y}
		}
		fan[starVertices+1] = fan[1]

		rl.DrawTriangleFan(fan, rl.Fade(cat.Color, e.Alpha))
	}
}

// drawParticles renders burst particles shrinking and fading with age.
func (g *Game) drawParticles() {
	for i := range g.particles.Particles {
		p := &g.particles.Particles[i]
		t := float32(p.Life) / float32(p.MaxLife)
		rl.DrawCircleV(rl.Vector2{X: p.X, Y: p.Y}, p.Size*0.5*t, rl.Fade(p.Color, t))
	}
}

// drawHUD renders population and metrics text.
func (g *Game) drawHUD() {
	m := g.frame.Metrics
	table := g.sim.Table()

	x := int32(10)
	y := int32(buttonTop + buttonHeight + 12)
	line := func(text string, c rl.Color) {
		rl.DrawText(text, x, y, 20, c)
		y += 24
	}

	line(fmt.Sprintf("Entities: %d", m.Population), rl.White)
	if m.Strategy == config.StrategyHealth {
		line(fmt.Sprintf("Health: %.0f", m.Health), healthColor(m.Health))
	} else {
		line(fmt.Sprintf("Stage: %d", m.Stage), rl.White)
		line(fmt.Sprintf("Goal: %s", m.Goal), rl.LightGray)
	}
	line(fmt.Sprintf("Balance: %.0f%%", m.Balance), rl.White)

	line(fmt.Sprintf("Dominant: %s", table.Name(m.Dominant)), categoryColor(table, m.Dominant))

	line(fmt.Sprintf("Speed: %dx  [</>]", g.stepsPerUpdate), rl.Gray)
	if g.paused {
		line("PAUSED", rl.Yellow)
	}
	if g.pilot != nil {
		line("AUTOPILOT", rl.SkyBlue)
	}
}

func healthColor(h float64) rl.Color {
	switch {
	case h >= 75:
		return rl.Green
	case h >= 50:
		return rl.Yellow
	case h >= 25:
		return rl.Orange
	default:
		return rl.Red
	}
}

// buttonRect returns the bounds of the i-th category button.
func buttonRect(i int) rl.Rectangle {
	return rl.Rectangle{
		X:      float32(10 + i*(buttonWidth+buttonGap)),
		Y:      buttonTop,
		Width:  buttonWidth,
		Height: buttonHeight,
	}
}

// overButtons reports whether a screen point is on the category bar.
func (g *Game) overButtons(p rl.Vector2) bool {
	for i := 0; i < g.sim.Table().Len(); i++ {
		if rl.CheckCollisionPointRec(p, buttonRect(i)) {
			return true
		}
	}
	return false
}

// drawCategoryButtons renders one button per category and applies clicks.
func (g *Game) drawCategoryButtons() {
	selected := g.sim.Selected()
	for _, cat := range g.sim.Table().All() {
		rect := buttonRect(int(cat.ID))
		label := fmt.Sprintf("%d %s", int(cat.ID)+1, cat.Name)
		if gui.Button(rect, label) {
			g.sim.SelectCategoryID(cat.ID)
		}
		rl.DrawRectangle(int32(rect.X), int32(rect.Y+rect.Height-4), int32(rect.Width), 4, cat.Color)
		if cat.ID == selected {
			rl.DrawRectangleLinesEx(rect, 2, rl.White)
		}
	}
}

// drawPopups renders active event messages centered near the top.
func (g *Game) drawPopups() {
	y := int32(g.screenHeight / 4)
	for _, p := range g.popups.Active(g.frames) {
		const size = 28
		w := rl.MeasureText(p.Message, size)
		x := int32(g.screenWidth/2) - w/2
		alpha := g.popups.Fade(p, g.frames)

		rl.DrawRectangle(x-12, y-8, w+24, size+16, rl.Fade(rl.Black, 0.7*alpha))
		rl.DrawText(p.Message, x, y, size, rl.Fade(rl.Gold, alpha))
		y += size + 24
	}
}

// categoryColor is the HUD color of a category id, gray for none.
func categoryColor(table *mood.Table, id mood.ID) rl.Color {
	if cat, ok := table.Get(id); ok {
		return cat.Color
	}
	return rl.Gray
}

// drawDebugMenu renders the performance panel.
func (g *Game) drawDebugMenu() {
	stats := g.sim.PerfStats()

	panelW := int32(230)
	panelH := int32(60 + 18*len(stats.PhaseAvg))
	panelX := int32(g.screenWidth) - panelW - 10
	panelY := int32(buttonTop)

	rl.DrawRectangle(panelX, panelY, panelW, panelH, rl.Color{A: 180})
	rl.DrawRectangleLines(panelX, panelY, panelW, panelH, rl.Yellow)
	rl.DrawText("PERF [D to close]", panelX+10, panelY+8, 14, rl.Yellow)
	rl.DrawText(fmt.Sprintf("Tick: %v  TPS: %.0f  FPS: %.0f", stats.AvgTickDuration, stats.TicksPerSecond, stats.FPS),
		panelX+10, panelY+30, 12, rl.White)

	y := panelY + 50
	for ph := range stats.PhaseAvg {
		rl.DrawText(fmt.Sprintf("%-10s %8v %5.1f%%", telemetry.Phase(ph), stats.PhaseAvg[ph], stats.PhasePct[ph]),
			panelX+10, y, 12, rl.LightGray)
		y += 18
	}
}
