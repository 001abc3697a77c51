package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/simulation"
)

func main() {
	var (
		configFile = flag.String("config", "boids.config.json", "path to the JSON configuration file")
		schemaFile = flag.String("schema", "boids.schema.json", "path to the JSON schema validating the configuration")
		indexName  = flag.String("index", "naive", "neighbor query implementation: naive, grid or rtree")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.New(log.InfoLevel, os.Stdout)
	if *debug {
		logger = log.New(log.DebugLevel, os.Stdout)
	}

	cfg, err := simulation.LoadConfig(*configFile, *schemaFile)
	if err != nil {
		logger.Warnf("config load failed (%v), using defaults", err)
		cfg = simulation.DefaultConfig()
	}

	kind := simulation.IndexNaive
	switch *indexName {
	case "grid":
		kind = simulation.IndexGrid
	case "rtree":
		kind = simulation.IndexRTree
	case "naive":
	default:
		logger.Warnf("unknown index %q, using naive scan", *indexName)
	}

	flock := simulation.NewFlock(cfg,
		simulation.WithLogger(logger),
		simulation.WithIndexKind(kind),
	)

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids: flocking with a pointer predator")

	if err := ebiten.RunGame(simulation.GetNewGame(flock, cfg)); err != nil {
		logger.Fatalf("game loop failed: %v", err)
	}
}
