package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"
)

// testConfig returns a config with every weight active, no force cap and
// a quiet, single-worker flock so tests stay deterministic by default.
func testConfig() Config {
	return Config{
		WorldWidth:       1000,
		WorldHeight:      800,
		SeparationWeight: 1,
		AlignmentWeight:  1,
		CohesionWeight:   1,
		AvoidanceWeight:  1,
		NeighborRadius:   50,
		SeparationRadius: 20,
		AvoidanceRadius:  75,
		MaxSpeed:         10,
		Workers:          1,
	}
}

// testFlock builds a flock seeded with the given agents. TargetCount is
// pinned to the agent count so reconciliation leaves the population alone.
func testFlock(cfg Config, agents []Agent) *Flock {
	cfg.TargetCount = len(agents)
	f := NewFlock(cfg,
		WithLogger(log.DiscardLogger),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	f.agents = agents
	return f
}

func TestAdvanceTick_NoNeighborsKeepsVelocity(t *testing.T) {
	cfg := testConfig()
	vel := geometry.New(2, 1)
	f := testFlock(cfg, []Agent{{Pos: geometry.New(500, 400), Vel: vel}})

	f.AdvanceTick(1, Predator{})

	a := f.agents[0]
	if !a.Vel.Eq(vel) {
		t.Errorf("lone agent velocity changed: %v -> %v", vel, a.Vel)
	}
	wantPos := geometry.New(502, 401)
	if !a.Pos.Eq(wantPos) {
		t.Errorf("lone agent position = %v; want %v", a.Pos, wantPos)
	}
	if a.Dominant != behavior.None {
		t.Errorf("lone agent dominant = %v; want none", a.Dominant)
	}
}

func TestAdvanceTick_SpeedNeverExceedsMaxSpeed(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSpeed = 3

	rng := rand.New(rand.NewPCG(7, 11))
	agents := make([]Agent, 60)
	for i := range agents {
		agents[i] = Agent{
			Pos: geometry.New(rng.Float64()*cfg.WorldWidth, rng.Float64()*cfg.WorldHeight),
			// Deliberately violate the speed limit at the start.
			Vel: geometry.New((rng.Float64()-0.5)*100, (rng.Float64()-0.5)*100),
		}
	}
	f := testFlock(cfg, agents)

	for tick := 0; tick < 5; tick++ {
		f.AdvanceTick(1, Predator{Pos: geometry.New(500, 400), Active: true})
		for i := range f.agents {
			if speed := f.agents[i].Vel.Len(); speed > cfg.MaxSpeed+geometry.Epsilon {
				t.Fatalf("tick %d agent %d speed %v exceeds max %v", tick, i, speed, cfg.MaxSpeed)
			}
		}
	}
}

func TestAdvanceTick_ToroidalWrap(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name string
		pos  geometry.Vector2D
		vel  geometry.Vector2D
		want geometry.Vector2D
	}{
		{"RightEdge", geometry.New(998, 400), geometry.New(5, 0), geometry.New(3, 400)},
		{"LeftEdge", geometry.New(2, 400), geometry.New(-5, 0), geometry.New(997, 400)},
		{"BottomEdge", geometry.New(500, 798), geometry.New(0, 5), geometry.New(500, 3)},
		{"TopEdge", geometry.New(500, 2), geometry.New(0, -5), geometry.New(500, 797)},
		{"ExactEdgeLandsAtZero", geometry.New(995, 400), geometry.New(5, 0), geometry.New(0, 400)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFlock(cfg, []Agent{{Pos: tt.pos, Vel: tt.vel}})
			f.AdvanceTick(1, Predator{})
			got := f.agents[0].Pos
			if !got.Eq(tt.want) {
				t.Errorf("wrapped position = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestAdvanceTick_PositionAlwaysInBounds(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewPCG(3, 5))
	agents := make([]Agent, 100)
	for i := range agents {
		agents[i] = Agent{
			Pos: geometry.New(rng.Float64()*cfg.WorldWidth, rng.Float64()*cfg.WorldHeight),
			Vel: geometry.New((rng.Float64()-0.5)*20, (rng.Float64()-0.5)*20),
		}
	}
	f := testFlock(cfg, agents)

	for tick := 0; tick < 20; tick++ {
		f.AdvanceTick(1, Predator{})
		for i := range f.agents {
			p := f.agents[i].Pos
			if p.X < 0 || p.X >= cfg.WorldWidth || p.Y < 0 || p.Y >= cfg.WorldHeight {
				t.Fatalf("tick %d agent %d out of bounds: %v", tick, i, p)
			}
		}
	}
}

func TestAdvanceTick_SeparationOnly(t *testing.T) {
	cfg := testConfig()
	cfg.AlignmentWeight = 0
	cfg.CohesionWeight = 0
	cfg.AvoidanceWeight = 0

	// Two stationary agents well inside each other's separation radius.
	f := testFlock(cfg, []Agent{
		{Pos: geometry.New(495, 400)},
		{Pos: geometry.New(505, 400)},
	})
	f.AdvanceTick(1, Predator{})

	left, right := f.agents[0], f.agents[1]
	if left.Vel.X >= 0 || left.Vel.Y != 0 {
		t.Errorf("left agent should accelerate along -X, got %v", left.Vel)
	}
	if right.Vel.X <= 0 || right.Vel.Y != 0 {
		t.Errorf("right agent should accelerate along +X, got %v", right.Vel)
	}
	if left.Dominant != behavior.Separation || right.Dominant != behavior.Separation {
		t.Errorf("dominant = %v/%v; want separation", left.Dominant, right.Dominant)
	}
}

func TestAdvanceTick_CohesionOnly(t *testing.T) {
	cfg := testConfig()
	cfg.SeparationWeight = 0
	cfg.AlignmentWeight = 0
	cfg.AvoidanceWeight = 0

	// Three stationary agents around a common centroid, all within the
	// neighbor radius of one another.
	positions := []geometry.Vector2D{
		geometry.New(490, 390),
		geometry.New(510, 390),
		geometry.New(500, 415),
	}
	var centroid geometry.Vector2D
	for _, p := range positions {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1.0 / 3.0)

	agents := make([]Agent, len(positions))
	for i, p := range positions {
		agents[i] = Agent{Pos: p}
	}
	f := testFlock(cfg, agents)
	f.AdvanceTick(1, Predator{})

	for i := range f.agents {
		toCentroid := centroid.Sub(positions[i])
		if f.agents[i].Vel.Dot(toCentroid) <= 0 {
			t.Errorf("agent %d velocity %v has no component toward pre-tick centroid", i, f.agents[i].Vel)
		}
		if f.agents[i].Dominant != behavior.Cohesion {
			t.Errorf("agent %d dominant = %v; want cohesion", i, f.agents[i].Dominant)
		}
	}
}

func TestAdvanceTick_AvoidancePrecedenceOnTie(t *testing.T) {
	cfg := testConfig()
	cfg.AlignmentWeight = 0
	cfg.CohesionWeight = 0
	cfg.SeparationRadius = 10
	cfg.NeighborRadius = 10
	cfg.AvoidanceRadius = 10

	// A neighbor 2 units right and the predator 2 units left produce
	// weighted separation and avoidance contributions of identical
	// magnitude. The tie must resolve to Avoidance.
	f := testFlock(cfg, []Agent{
		{Pos: geometry.New(50, 50)},
		{Pos: geometry.New(52, 50)},
	})
	f.AdvanceTick(1, Predator{Pos: geometry.New(48, 50), Active: true})

	if got := f.agents[0].Dominant; got != behavior.Avoidance {
		t.Errorf("dominant on tie = %v; want avoidance", got)
	}
}

func TestReconcilePopulation(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewPCG(13, 17))

	t.Run("SpawnsUpToTarget", func(t *testing.T) {
		agents := reconcilePopulation(nil, 40, rng, cfg)
		if len(agents) != 40 {
			t.Fatalf("live count = %d; want 40", len(agents))
		}
		for i := range agents {
			p := agents[i].Pos
			if p.X < 0 || p.X >= cfg.WorldWidth || p.Y < 0 || p.Y >= cfg.WorldHeight {
				t.Errorf("spawned agent %d out of bounds: %v", i, p)
			}
			if speed := agents[i].Vel.Len(); speed > cfg.MaxSpeed {
				t.Errorf("spawned agent %d speed %v exceeds max", i, speed)
			}
			if agents[i].Dominant != behavior.None {
				t.Errorf("spawned agent %d dominant = %v; want none", i, agents[i].Dominant)
			}
		}
	})

	t.Run("DespawnsDownToTarget", func(t *testing.T) {
		agents := reconcilePopulation(make([]Agent, 70), 25, rng, cfg)
		if len(agents) != 25 {
			t.Errorf("live count = %d; want 25", len(agents))
		}
	})

	t.Run("NegativeTargetFloorsAtZero", func(t *testing.T) {
		agents := reconcilePopulation(make([]Agent, 10), -5, rng, cfg)
		if len(agents) != 0 {
			t.Errorf("live count = %d; want 0", len(agents))
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		agents := reconcilePopulation(nil, 30, rng, cfg)
		first := len(agents)
		agents = reconcilePopulation(agents, 30, rng, cfg)
		if len(agents) != first || first != 30 {
			t.Errorf("second reconciliation changed count: %d -> %d", first, len(agents))
		}
	})
}

func TestFlock_PopulationReachesTargetEachTick(t *testing.T) {
	cfg := testConfig()
	cfg.TargetCount = 50
	f := NewFlock(cfg, WithLogger(log.DiscardLogger))

	f.AdvanceTick(1, Predator{})
	if f.Len() != 50 {
		t.Fatalf("live count after first tick = %d; want 50", f.Len())
	}

	f.AdvanceTick(1, Predator{})
	if f.Len() != 50 {
		t.Errorf("live count drifted to %d; want 50", f.Len())
	}
}

func TestFlock_SetConfigAppliesOnNextTick(t *testing.T) {
	cfg := testConfig()
	cfg.TargetCount = 20
	f := NewFlock(cfg, WithLogger(log.DiscardLogger))
	f.AdvanceTick(1, Predator{})

	next := cfg
	next.TargetCount = 35
	f.SetConfig(next)
	if f.Len() != 20 {
		t.Fatalf("SetConfig took effect before the next tick")
	}

	f.AdvanceTick(1, Predator{})
	if f.Len() != 35 {
		t.Errorf("live count = %d; want 35 after config change", f.Len())
	}
}

func TestFlock_SerialAndParallelPassesMatch(t *testing.T) {
	build := func(workers int) *Flock {
		cfg := testConfig()
		cfg.Workers = workers
		rng := rand.New(rand.NewPCG(21, 42))
		agents := make([]Agent, 150)
		for i := range agents {
			agents[i] = Agent{
				Pos: geometry.New(rng.Float64()*cfg.WorldWidth, rng.Float64()*cfg.WorldHeight),
				Vel: geometry.New((rng.Float64()-0.5)*8, (rng.Float64()-0.5)*8),
			}
		}
		return testFlock(cfg, agents)
	}

	serial := build(1)
	parallel := build(4)
	pred := Predator{Pos: geometry.New(500, 400), Active: true}

	for tick := 0; tick < 10; tick++ {
		serial.AdvanceTick(1, pred)
		parallel.AdvanceTick(1, pred)
	}

	for i := range serial.agents {
		if serial.agents[i] != parallel.agents[i] {
			t.Fatalf("agent %d diverged between serial and parallel pass:\n serial:   %+v\n parallel: %+v",
				i, serial.agents[i], parallel.agents[i])
		}
	}
}

func TestFlock_AgentsSnapshot(t *testing.T) {
	cfg := testConfig()
	f := testFlock(cfg, []Agent{
		{Pos: geometry.New(10, 20), Vel: geometry.New(0, 3), Dominant: behavior.Cohesion},
	})

	views := f.Agents()
	if len(views) != 1 {
		t.Fatalf("snapshot length = %d; want 1", len(views))
	}
	v := views[0]
	if !v.Pos.Eq(geometry.New(10, 20)) {
		t.Errorf("snapshot position = %v; want (10, 20)", v.Pos)
	}
	if math.Abs(v.Heading-math.Pi/2) > geometry.Epsilon {
		t.Errorf("heading = %v; want Pi/2 for velocity straight down the Y axis", v.Heading)
	}
	if v.Dominant != behavior.Cohesion {
		t.Errorf("snapshot dominant = %v; want cohesion", v.Dominant)
	}
}

func TestWrapPosition(t *testing.T) {
	tests := []struct {
		name string
		pos  geometry.Vector2D
		want geometry.Vector2D
	}{
		{"Inside", geometry.New(50, 60), geometry.New(50, 60)},
		{"PastRight", geometry.New(105, 60), geometry.New(5, 60)},
		{"PastLeft", geometry.New(-5, 60), geometry.New(95, 60)},
		{"PastBottom", geometry.New(50, 210), geometry.New(50, 10)},
		{"PastTop", geometry.New(50, -10), geometry.New(50, 190)},
		{"ExactlyAtEdge", geometry.New(100, 200), geometry.New(0, 0)},
		{"FarOut", geometry.New(305, -410), geometry.New(5, 190)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapPosition(tt.pos, 100, 200); !got.Eq(tt.want) {
				t.Errorf("wrapPosition(%v) = %v; want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func BenchmarkAdvanceTick(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	f := NewFlock(cfg,
		WithLogger(log.DiscardLogger),
		WithRand(rand.New(rand.NewPCG(1, 1))),
	)
	f.AdvanceTick(1, Predator{})

	pred := Predator{Pos: geometry.New(850, 475), Active: true}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.AdvanceTick(1, pred)
	}
}
