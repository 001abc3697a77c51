package simulation

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/ui"
)

// whiteImage is the 1-value source texture for DrawTriangles; vertex
// colors multiply against it.
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

// influenceColor maps each dominant influence to its display color. The
// palette matters to nobody but the observer: it shows at a glance which
// rule is currently steering each boid.
func influenceColor(i behavior.Influence) color.RGBA {
	switch i {
	case behavior.Separation:
		return color.RGBA{R: 255, G: 255, B: 0, A: 255}
	case behavior.Alignment:
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	case behavior.Cohesion:
		return color.RGBA{R: 60, G: 120, B: 255, A: 255}
	case behavior.Avoidance:
		return color.RGBA{R: 255, G: 40, B: 40, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Game wires the flock to the ebiten loop: it feeds slider state into the
// config snapshot, turns the pointer into the predator, ticks the flock
// and draws the result.
type Game struct {
	flock *Flock
	cfg   Config

	panel *ui.Panel

	widgetTargetCount *ui.Slider
	widgetMaxSpeed    *ui.Slider
	widgetMaxForce    *ui.Slider
	widgetSepWeight   *ui.Slider
	widgetAlignWeight *ui.Slider
	widgetCohWeight   *ui.Slider
	widgetAvoidWeight *ui.Slider
	widgetNbrRadius   *ui.Slider
	widgetSepRadius   *ui.Slider
	widgetAvoidRadius *ui.Slider
	widgetPaused      *ui.Checkbox
	widgetShowRing    *ui.Checkbox

	// Timing instrumentation
	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // rolling average in ms
	drawAvg            float64
}

// GetNewGame builds the game around an existing flock and populates the
// control panel from the starting configuration.
func GetNewGame(flock *Flock, cfg Config) *Game {
	panel := ui.NewPanel(10, 10, 260, cfg.WorldHeight-20, "Configuration")

	panel.AddSection("Population")
	widgetTargetCount := panel.AddSlider("Boids", 0, 1000, float64(cfg.TargetCount))
	panel.EndSection()

	panel.AddSection("Physics")
	widgetMaxSpeed := panel.AddSlider("Max Speed", 0.5, 15, cfg.MaxSpeed)
	widgetMaxForce := panel.AddSlider("Max Force", 0, 2, cfg.MaxForce)
	panel.EndSection()

	panel.AddSection("Behavior Weights")
	widgetSepWeight := panel.AddSlider("Separation", 0, 5, cfg.SeparationWeight)
	widgetAlignWeight := panel.AddSlider("Alignment", 0, 5, cfg.AlignmentWeight)
	widgetCohWeight := panel.AddSlider("Cohesion", 0, 5, cfg.CohesionWeight)
	widgetAvoidWeight := panel.AddSlider("Avoidance", 0, 5, cfg.AvoidanceWeight)
	panel.EndSection()

	panel.AddSection("Perception Radii")
	widgetNbrRadius := panel.AddSlider("Neighbor Radius", 5, 200, cfg.NeighborRadius)
	widgetSepRadius := panel.AddSlider("Separation Radius", 2, 100, cfg.SeparationRadius)
	widgetAvoidRadius := panel.AddSlider("Avoidance Radius", 5, 300, cfg.AvoidanceRadius)
	panel.EndSection()

	panel.AddSection("Simulation")
	widgetPaused := panel.AddCheckbox("Pause", false)
	widgetShowRing := panel.AddCheckbox("Show Avoidance Ring", true)

	g := &Game{
		flock:             flock,
		cfg:               cfg,
		panel:             panel,
		widgetTargetCount: widgetTargetCount,
		widgetMaxSpeed:    widgetMaxSpeed,
		widgetMaxForce:    widgetMaxForce,
		widgetSepWeight:   widgetSepWeight,
		widgetAlignWeight: widgetAlignWeight,
		widgetCohWeight:   widgetCohWeight,
		widgetAvoidWeight: widgetAvoidWeight,
		widgetNbrRadius:   widgetNbrRadius,
		widgetSepRadius:   widgetSepRadius,
		widgetAvoidRadius: widgetAvoidRadius,
		widgetPaused:      widgetPaused,
		widgetShowRing:    widgetShowRing,
	}

	panel.AddButton("Reset", g.resetParams)
	panel.EndSection()

	return g
}

// resetParams snaps every slider back to the defaults.
func (g *Game) resetParams() {
	def := DefaultConfig()
	g.widgetTargetCount.Value = float64(def.TargetCount)
	g.widgetMaxSpeed.Value = def.MaxSpeed
	g.widgetMaxForce.Value = def.MaxForce
	g.widgetSepWeight.Value = def.SeparationWeight
	g.widgetAlignWeight.Value = def.AlignmentWeight
	g.widgetCohWeight.Value = def.CohesionWeight
	g.widgetAvoidWeight.Value = def.AvoidanceWeight
	g.widgetNbrRadius.Value = def.NeighborRadius
	g.widgetSepRadius.Value = def.SeparationRadius
	g.widgetAvoidRadius.Value = def.AvoidanceRadius
}

// sliderConfig assembles the config snapshot for the next tick from the
// current slider values. World dimensions and worker count are fixed at
// startup.
func (g *Game) sliderConfig() Config {
	cfg := g.cfg
	cfg.TargetCount = int(g.widgetTargetCount.Value)
	cfg.MaxSpeed = g.widgetMaxSpeed.Value
	cfg.MaxForce = g.widgetMaxForce.Value
	cfg.SeparationWeight = g.widgetSepWeight.Value
	cfg.AlignmentWeight = g.widgetAlignWeight.Value
	cfg.CohesionWeight = g.widgetCohWeight.Value
	cfg.AvoidanceWeight = g.widgetAvoidWeight.Value
	cfg.NeighborRadius = g.widgetNbrRadius.Value
	cfg.SeparationRadius = g.widgetSepRadius.Value
	cfg.AvoidanceRadius = g.widgetAvoidRadius.Value
	return cfg
}

// pointerPredator derives the predator from the mouse pointer: active
// whenever the pointer is inside the world and not over the panel.
func (g *Game) pointerPredator() Predator {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	if x < 0 || x >= g.cfg.WorldWidth || y < 0 || y >= g.cfg.WorldHeight {
		return Predator{}
	}
	if g.panel.Contains(x, y) {
		return Predator{}
	}
	return Predator{Pos: geometry.New(x, y), Active: true}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	g.flock.SetConfig(g.sliderConfig())

	if !g.widgetPaused.Value {
		// The flock integrates in units of ticks; ebiten drives Update at
		// a fixed TPS, so dt is one tick.
		g.flock.AdvanceTick(1.0, g.pointerPredator())
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	// World perimeter
	vector.StrokeRect(screen, 0, 0,
		float32(g.cfg.WorldWidth), float32(g.cfg.WorldHeight),
		2, color.RGBA{R: 200, G: 200, B: 60, A: 255}, true)

	for _, a := range g.flock.Agents() {
		drawBoid(screen, a)
	}

	if pred := g.pointerPredator(); pred.Active {
		clr := color.RGBA{R: 255, G: 40, B: 40, A: 255}
		vector.FillCircle(screen, float32(pred.Pos.X), float32(pred.Pos.Y), 5, clr, true)
		if g.widgetShowRing.Value {
			vector.StrokeCircle(screen,
				float32(pred.Pos.X), float32(pred.Pos.Y),
				float32(g.widgetAvoidRadius.Value),
				2, clr, true)
		}
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nBoids: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.flock.Len(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-150, 10)
}

func (g *Game) Layout(w, h int) (int, int) {
	return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight)
}

// drawBoid renders one agent as a small triangle pointing along its
// heading, tinted by its dominant influence.
func drawBoid(screen *ebiten.Image, a AgentView) {
	clr := influenceColor(a.Dominant)
	cr := float32(clr.R) / 255
	cg := float32(clr.G) / 255
	cb := float32(clr.B) / 255

	tipX := a.Pos.X + math.Cos(a.Heading)*6
	tipY := a.Pos.Y + math.Sin(a.Heading)*6
	rightX := a.Pos.X + math.Cos(a.Heading+2.5)*5
	rightY := a.Pos.Y + math.Sin(a.Heading+2.5)*5
	leftX := a.Pos.X + math.Cos(a.Heading-2.5)*5
	leftY := a.Pos.Y + math.Sin(a.Heading-2.5)*5

	vertices := []ebiten.Vertex{
		{
			DstX: float32(tipX),
			DstY: float32(tipY),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		},
		{
			DstX: float32(rightX),
			DstY: float32(rightY),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		},
		{
			DstX: float32(leftX),
			DstY: float32(leftY),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		},
	}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}
