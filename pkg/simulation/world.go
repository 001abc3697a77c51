// Package simulation owns the flock: the dense agent collection, the
// predator, the per-tick steering pass and the population lifecycle.
package simulation

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"
)

// Flock is the authoritative simulation state. One tick is computed to
// completion before the next begins; the caller owns the tick cadence and
// supplies the predator position and any configuration change between
// ticks.
type Flock struct {
	cfg     Config
	pending *Config
	agents  []Agent
	index   neighborIndex
	rng     *rand.Rand
	logger  log.Logger

	// Telemetry, logged once per second the way the world actor used to
	// report its message rates.
	ticksSinceLog int
	lastLogTime   time.Time
}

// Option configures a Flock at construction time.
type Option func(*Flock)

// WithLogger replaces the default logger. Tests pass log.DiscardLogger.
func WithLogger(l log.Logger) Option {
	return func(f *Flock) { f.logger = l }
}

// WithIndexKind selects the neighbor query implementation. The default is
// the naive full scan, which is the reference semantics.
func WithIndexKind(kind IndexKind) Option {
	return func(f *Flock) { f.index = newNeighborIndex(kind) }
}

// WithRand replaces the random source used for spawning, so runs can be
// reproduced from a fixed seed.
func WithRand(rng *rand.Rand) Option {
	return func(f *Flock) { f.rng = rng }
}

// NewFlock creates an empty flock. Agents appear on the first AdvanceTick
// through population reconciliation.
func NewFlock(cfg Config, opts ...Option) *Flock {
	f := &Flock{
		cfg:         cfg.Sanitize(),
		index:       newNeighborIndex(IndexNaive),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:      log.DefaultLogger,
		lastLogTime: time.Now(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Len returns the live agent count.
func (f *Flock) Len() int {
	return len(f.agents)
}

// SetConfig replaces the parameter snapshot used by subsequent ticks. The
// replacement takes effect on the next AdvanceTick call, never mid-tick.
func (f *Flock) SetConfig(cfg Config) {
	cfg = cfg.Sanitize()
	f.pending = &cfg
}

// Config returns the snapshot the last tick ran with.
func (f *Flock) Config() Config {
	return f.cfg
}

// Agents returns a read-only render snapshot of the live agents.
func (f *Flock) Agents() []AgentView {
	views := make([]AgentView, len(f.agents))
	for i := range f.agents {
		views[i] = AgentView{
			Pos:      f.agents[i].Pos,
			Heading:  f.agents[i].Heading(),
			Dominant: f.agents[i].Dominant,
		}
	}
	return views
}

// agentUpdate is the buffered result of one agent's steering computation.
// Writes land here during the pass and are applied only after every worker
// has finished, so no agent ever observes another agent's in-progress
// update within the same tick.
type agentUpdate struct {
	vel      geometry.Vector2D
	pos      geometry.Vector2D
	dominant behavior.Influence
}

// AdvanceTick advances the whole flock by dt. Order within a tick:
// population reconciliation, neighbor index rebuild, steering pass over
// the frozen snapshot, buffered state application with boundary wrap.
func (f *Flock) AdvanceTick(dt float64, predator Predator) {
	if f.pending != nil {
		f.cfg = *f.pending
		f.pending = nil
	}

	before := len(f.agents)
	f.agents = reconcilePopulation(f.agents, f.cfg.TargetCount, f.rng, f.cfg)
	if delta := len(f.agents) - before; delta != 0 {
		f.logger.Debugf("population reconciled: %d -> %d agents", before, len(f.agents))
	}

	f.index.rebuild(f.agents, f.cfg.maxRadius())

	updates := make([]agentUpdate, len(f.agents))
	f.runSteeringPass(dt, predator, updates)

	for i := range f.agents {
		f.agents[i].Vel = updates[i].vel
		f.agents[i].Pos = wrapPosition(updates[i].pos, f.cfg.WorldWidth, f.cfg.WorldHeight)
		f.agents[i].Dominant = updates[i].dominant
	}

	f.logTelemetry()
}

// runSteeringPass computes every agent's update from the pre-tick
// snapshot. The pass is embarrassingly parallel: workers split the index
// range and each slot is written by exactly one worker.
func (f *Flock) runSteeringPass(dt float64, predator Predator, updates []agentUpdate) {
	workers := f.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := len(updates)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			updates[i] = f.stepAgent(i, dt, predator)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				updates[i] = f.stepAgent(i, dt, predator)
			}
		}(start, end)
	}
	wg.Wait()
}

// stepAgent runs the four steering rules for one agent and integrates the
// result. It only reads the frozen snapshot.
func (f *Flock) stepAgent(i int, dt float64, predator Predator) agentUpdate {
	me := &f.agents[i]

	// Each behavior queries its own radius against the full collection.
	sepPos := f.neighborPositions(me.Pos, f.cfg.SeparationRadius, i)
	nbrPos, nbrVels := f.neighborState(me.Pos, f.cfg.NeighborRadius, i)

	sep := behavior.Separate(me.Pos, sepPos)
	align := behavior.Align(me.Vel, nbrVels)
	coh := behavior.Cohere(me.Pos, nbrPos)
	var avoid geometry.Vector2D
	if predator.Active {
		avoid = behavior.Avoid(me.Pos, predator.Pos, f.cfg.AvoidanceRadius)
	}

	if f.cfg.MaxForce > 0 {
		sep = sep.ClampLen(f.cfg.MaxForce)
		align = align.ClampLen(f.cfg.MaxForce)
		coh = coh.ClampLen(f.cfg.MaxForce)
		avoid = avoid.ClampLen(f.cfg.MaxForce)
	}

	wSep := sep.Mul(f.cfg.SeparationWeight)
	wAlign := align.Mul(f.cfg.AlignmentWeight)
	wCoh := coh.Mul(f.cfg.CohesionWeight)
	wAvoid := avoid.Mul(f.cfg.AvoidanceWeight)

	accel := wSep.Add(wAlign).Add(wCoh).Add(wAvoid)
	vel := me.Vel.Add(accel).ClampLen(f.cfg.MaxSpeed)

	return agentUpdate{
		vel:      vel,
		pos:      me.Pos.Add(vel.Mul(dt)),
		dominant: behavior.Dominant(wSep, wAlign, wCoh, wAvoid),
	}
}

func (f *Flock) neighborPositions(center geometry.Vector2D, radius float64, exclude int) []geometry.Vector2D {
	idx := f.index.within(center, radius, exclude, nil)
	if len(idx) == 0 {
		return nil
	}
	pos := make([]geometry.Vector2D, len(idx))
	for k, i := range idx {
		pos[k] = f.agents[i].Pos
	}
	return pos
}

func (f *Flock) neighborState(center geometry.Vector2D, radius float64, exclude int) ([]geometry.Vector2D, []geometry.Vector2D) {
	idx := f.index.within(center, radius, exclude, nil)
	if len(idx) == 0 {
		return nil, nil
	}
	pos := make([]geometry.Vector2D, len(idx))
	vels := make([]geometry.Vector2D, len(idx))
	for k, i := range idx {
		pos[k] = f.agents[i].Pos
		vels[k] = f.agents[i].Vel
	}
	return pos, vels
}

// wrapPosition folds a position back into the toroidal world rectangle
// [0, width) x [0, height). An agent leaving one edge reappears at the
// opposite edge with the same offset.
func wrapPosition(p geometry.Vector2D, width, height float64) geometry.Vector2D {
	if width > 0 {
		p.X = math.Mod(p.X, width)
		if p.X < 0 {
			p.X += width
		}
	} else {
		p.X = 0
	}
	if height > 0 {
		p.Y = math.Mod(p.Y, height)
		if p.Y < 0 {
			p.Y += height
		}
	} else {
		p.Y = 0
	}
	return p
}

func (f *Flock) logTelemetry() {
	f.ticksSinceLog++
	if time.Since(f.lastLogTime) >= time.Second {
		f.logger.Infof("📊 TICK RATE: %d/sec | agents: %d", f.ticksSinceLog, len(f.agents))
		f.ticksSinceLog = 0
		f.lastLogTime = time.Now()
	}
}
