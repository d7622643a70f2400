// Armserve runs the simulator, the pick-and-place sequencer and the web
// dashboard. The tick loop drives everything at a fixed rate; the dashboard
// controls it over HTTP and watches state over a websocket.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-armpick/internal/config"
	"github.com/teslashibe/go-armpick/internal/log"
	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/sequence"
	"github.com/teslashibe/go-armpick/pkg/sim"
	"github.com/teslashibe/go-armpick/pkg/spatial"
	"github.com/teslashibe/go-armpick/pkg/web"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config file")
	port := flag.String("port", "", "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Init("info")
		log.Error("bad configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	log.Init(cfg.LogLevel)

	arm := sim.NewArm(kinematics.Neutral())
	seq := sequence.New(arm, arm, arm, sequence.Options{
		Speed: cfg.Speed,
		Mode:  sequence.ParseMode(cfg.Mode),
		DropZone: spatial.Vec3{
			X: cfg.DropZone[0], Y: cfg.DropZone[1], Z: cfg.DropZone[2],
		},
	})

	// Control requests land on this channel so sequencer state is only
	// touched from the tick loop.
	type command struct {
		run     func() error
		errback chan error
	}
	commands := make(chan command, 8)
	do := func(fn func() error) error {
		cmd := command{run: fn, errback: make(chan error, 1)}
		commands <- cmd
		return <-cmd.errback
	}

	srv := web.NewServer(cfg.Port)
	srv.OnStart = func(targets []sequence.PickTarget) error {
		return do(func() error { return seq.Start(targets) })
	}
	srv.OnStop = func() {
		do(func() error { seq.Stop(); return nil })
	}
	srv.OnSpeed = func(v float64) error {
		return do(func() error { return seq.SetSpeed(v) })
	}
	srv.StartAsync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dt := 1.0 / cfg.TickRate
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	log.Info("armserve running", "port", cfg.Port, "tick_rate", cfg.TickRate, "mode", cfg.Mode)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			seq.Stop()
			srv.Shutdown()
			return

		case cmd := <-commands:
			cmd.errback <- cmd.run()

		case <-ticker.C:
			out := seq.Update(dt)
			arm.Step(dt)

			if out.Kind == sequence.ItemCompleted {
				log.Info("item placed", "id", out.ItemID, "placed", seq.Placed())
			}
			if out.Kind == sequence.BatchFinished {
				log.Info("batch finished", "placed", seq.Placed())
			}

			srv.PublishState(stateFrame(seq, arm))
		}
	}
}

// stateFrame snapshots the sequencer and simulator for the dashboard.
func stateFrame(seq *sequence.Sequencer, arm *sim.Arm) web.StateFrame {
	ind := seq.Indicator()
	return web.StateFrame{
		Running:   seq.Running(),
		Phase:     seq.CurrentPhase().String(),
		Placed:    seq.Placed(),
		Remaining: seq.Remaining(),
		Speed:     seq.Speed(),
		Joints:    arm.JointPositions(),
		Gripper:   arm.Gripper(),
		Indicator: [3]float64{ind.Pos.X, ind.Pos.Y, ind.Pos.Z},
	}
}
