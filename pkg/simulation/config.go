package simulation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Config is the tunable parameter set read by the Flock. It is treated as
// an immutable snapshot for the duration of a tick: the UI owns a live
// copy and hands it over through SetConfig, which takes effect on the next
// AdvanceTick, never mid-tick.
type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Population
	TargetCount int `json:"targetCount"`

	// Behavior weights
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`
	AvoidanceWeight  float64 `json:"avoidanceWeight"`

	// Perception radii. Separation uses its own, smaller radius;
	// alignment and cohesion share the neighbor radius.
	NeighborRadius   float64 `json:"neighborRadius"`
	SeparationRadius float64 `json:"separationRadius"`
	AvoidanceRadius  float64 `json:"avoidanceRadius"`

	// Physics limits
	MaxSpeed float64 `json:"maxSpeed"`
	// MaxForce caps each behavior's desire vector before weighting.
	// Zero disables the cap.
	MaxForce float64 `json:"maxForce"`

	// Workers is the fan-out of the steering pass. Zero means one worker
	// per available CPU.
	Workers int `json:"workers"`
}

// DefaultConfig returns the parameter set the simulation starts with.
func DefaultConfig() Config {
	return Config{
		WorldWidth:       1700,
		WorldHeight:      950,
		TargetCount:      100,
		SeparationWeight: 1.0,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.0,
		AvoidanceWeight:  1.0,
		NeighborRadius:   50.0,
		SeparationRadius: 20.0,
		AvoidanceRadius:  75.0,
		MaxSpeed:         5.0,
		MaxForce:         0.5,
	}
}

// Sanitize clamps physically nonsensical values at the configuration
// boundary so the steering and integration code can assume a valid,
// non-negative snapshot. A negative target count floors at zero.
func (c Config) Sanitize() Config {
	clampPositive := func(v *float64) {
		if *v < 0 {
			*v = 0
		}
	}
	clampPositive(&c.WorldWidth)
	clampPositive(&c.WorldHeight)
	clampPositive(&c.SeparationWeight)
	clampPositive(&c.AlignmentWeight)
	clampPositive(&c.CohesionWeight)
	clampPositive(&c.AvoidanceWeight)
	clampPositive(&c.NeighborRadius)
	clampPositive(&c.SeparationRadius)
	clampPositive(&c.AvoidanceRadius)
	clampPositive(&c.MaxSpeed)
	clampPositive(&c.MaxForce)
	if c.TargetCount < 0 {
		c.TargetCount = 0
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	return c
}

// maxRadius returns the largest perception radius, used to size spatial
// index cells.
func (c Config) maxRadius() float64 {
	r := c.NeighborRadius
	if c.SeparationRadius > r {
		r = c.SeparationRadius
	}
	if c.AvoidanceRadius > r {
		r = c.AvoidanceRadius
	}
	return r
}

// LoadConfig loads configuration from a JSON file and validates it against
// the schema before unmarshalling.
func LoadConfig(configFile string, schemaFile string) (Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to compile schema: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return Config{}, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg.Sanitize(), nil
}
