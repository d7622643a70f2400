// Armpick runs a headless pick-and-place batch against the built-in
// simulator and prints outcome events. Useful for smoke-testing the solver
// and sequencer without the dashboard.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/teslashibe/go-armpick/internal/log"
	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/sequence"
	"github.com/teslashibe/go-armpick/pkg/sim"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

func main() {
	count := flag.Int("count", 3, "Number of demo items to pick")
	speed := flag.Float64("speed", 4, "Playback speed multiplier (>= 1)")
	mode := flag.String("mode", "stack", "Placement mode: stack or row")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	if *count < 1 {
		fmt.Fprintln(os.Stderr, "count must be >= 1")
		os.Exit(1)
	}

	arm := sim.NewArm(kinematics.Neutral())

	// Demo items on an arc in front of the base.
	var targets []sequence.PickTarget
	for i := 0; i < *count; i++ {
		id := fmt.Sprintf("item-%d", i)
		angle := -0.5 + float64(i)*0.25
		arm.SetBody(id, spatial.Vec3{
			X: 0.48 * math.Cos(angle),
			Y: 0.48 * math.Sin(angle),
			Z: 0.02,
		})
		targets = append(targets, sequence.BodyTarget(id))
	}

	seq := sequence.New(arm, arm, arm, sequence.Options{
		Speed:    *speed,
		Mode:     sequence.ParseMode(*mode),
		DropZone: spatial.Vec3{X: -0.35, Y: -0.35, Z: 0.02},
	})

	if err := seq.Start(targets); err != nil {
		log.Error("start failed", "error", err)
		os.Exit(1)
	}

	const dt = 1.0 / 120.0
	const maxTicks = 10_000_000

	for tick := 0; tick < maxTicks; tick++ {
		out := seq.Update(dt)
		arm.Step(dt)

		switch out.Kind {
		case sequence.ItemCompleted:
			pos, _ := arm.BodyPosition(out.ItemID)
			fmt.Printf("placed %s at (%.3f, %.3f, %.3f)\n", out.ItemID, pos.X, pos.Y, pos.Z)
		case sequence.BatchFinished:
			fmt.Printf("batch finished: %d items placed\n", seq.Placed())
			return
		}
	}

	log.Error("batch did not finish", "ticks", maxTicks)
	os.Exit(1)
}
