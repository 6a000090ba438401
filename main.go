// Zebra simulates pedestrian-crossing traffic on a single stretch of
// road: vehicles and pedestrians arrive per configured Poisson streams,
// react to each other and to zebra/pelican crossings, and the kernel
// emits one JSON snapshot line per simulated tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"zebra/arrival"
	"zebra/config"
	"zebra/kernel"
	"zebra/snapshot"
	"zebra/timeq"
	"zebra/worldstate"
)

var (
	verbose    *bool
	outfile    *string
	configFile *string
	seed       *uint64
)

func init() {
	verbose = flag.Bool("verbose", false, "print progress to stderr while the simulation runs")
	outfile = flag.String("outfile", "sim_states.json", "path to write JSON-lines snapshots to")
	configFile = flag.String("config_file", "zebra.toml", "path to the TOML configuration file")
	seed = flag.Uint64("seed", 0, "RNG seed")
	flag.Parse()
}

func runApp() error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	r, err := cfg.BuildRoad()
	if err != nil {
		return err
	}

	out, err := os.Create(*outfile)
	if err != nil {
		return fmt.Errorf("zebra: open outfile: %w", err)
	}
	defer out.Close()

	rng := rand.New(rand.NewSource(int64(*seed)))
	start := timeq.Time(0)
	end := start.Add(timeq.NewDelta(cfg.Simulation.RunTime))

	pedArrivals := arrival.Generate(cfg.Simulation.PedestrianArrivalRate, start, end, rng, 0)
	vehArrivals := arrival.Generate(cfg.Simulation.VehicleArrivalRate, start, end, rng, arrival.MinVehicleSpacing)

	k := kernel.New(r, pedArrivals, vehArrivals, end, int64(*seed),
		cfg.MaxSpeed, cfg.MaxAcceleration, cfg.MaxDeceleration, cfg.Simulation.DirectionWeightUp)
	k.Verbose = *verbose

	group, ctx := errgroup.WithContext(context.Background())
	snapshots := make(chan snapshot.Snapshot)
	simDone := make(chan struct{})

	group.Go(func() error {
		defer close(snapshots)
		defer close(simDone)
		return k.Run(func(st *worldstate.State) error {
			select {
			case snapshots <- snapshot.FromState(st):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	writer := snapshot.NewWriter(out)
	group.Go(func() error {
		return writer.Drain(ctx.Done(), snapshots)
	})

	if *verbose {
		group.Go(func() error {
			for range channerics.NewTicker(simDone, time.Second) {
				fmt.Fprintf(os.Stderr, "zebra: t=%.3fs\n", k.Elapsed())
			}
			return nil
		})
	}

	return group.Wait()
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
