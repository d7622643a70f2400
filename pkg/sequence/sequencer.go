package sequence

import (
	"errors"

	"github.com/teslashibe/go-armpick/internal/log"
	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// Sentinel errors for malformed invocations. Both leave the sequencer
// untouched.
var (
	ErrNoTargets  = errors.New("sequence: no pick targets")
	ErrNoDropZone = errors.New("sequence: drop zone not configured")
	ErrRunning    = errors.New("sequence: already running")
	ErrBadSpeed   = errors.New("sequence: speed multiplier must be >= 1")
)

// Mode selects the drop-zone placement policy.
type Mode int

const (
	// ModeStack places items on a 3x3 grid, adding a layer every 9 items.
	ModeStack Mode = iota
	// ModeRow places items along a single line.
	ModeRow
)

// String returns the config spelling of the mode.
func (m Mode) String() string {
	if m == ModeRow {
		return "row"
	}
	return "stack"
}

// durationFactor scales phase durations per mode.
func (m Mode) durationFactor() float64 {
	if m == ModeRow {
		return rowModeFactor
	}
	return 1.0
}

// ParseMode maps a config string to a Mode. Unknown strings mean stack.
func ParseMode(s string) Mode {
	if s == "row" {
		return ModeRow
	}
	return ModeStack
}

// OutcomeKind tags the result of one Update call.
type OutcomeKind int

const (
	// Continuing: the sequence is still in progress (or idle).
	Continuing OutcomeKind = iota
	// ItemCompleted: one pick-and-place cycle just finished.
	ItemCompleted
	// BatchFinished: the queue is exhausted and the arm is home.
	BatchFinished
)

// Outcome is the tagged event returned from Update. ItemID is set only for
// ItemCompleted.
type Outcome struct {
	Kind   OutcomeKind
	ItemID string
}

// Options configures a sequencer run.
type Options struct {
	// Speed fast-forwards playback; durations are divided by it.
	Speed float64
	// Mode is the placement policy.
	Mode Mode
	// DropZone is the world-space origin of the placement grid.
	DropZone spatial.Vec3
}

// Sequencer owns the pick-and-place state machine. It is the sole writer of
// actuator commands while running and is driven synchronously from an
// external tick loop; it has no internal concurrency.
type Sequencer struct {
	arm      JointReader
	act      Actuator
	locator  BodyLocator
	resolver *kinematics.Resolver

	speed    float64
	mode     Mode
	dropZone spatial.Vec3

	running   bool
	phase     Phase
	elapsed   float64
	progress  float64
	targets   []PickTarget
	targetIdx int
	placed    int
	pickPos   spatial.Vec3

	current      kinematics.JointVector
	startJoints  kinematics.JointVector
	targetJoints kinematics.JointVector
	gripper      float64

	startInd  spatial.Pose
	targetInd spatial.Pose
}

// New creates a sequencer. locator may be nil when only static point targets
// are used.
func New(arm JointReader, act Actuator, locator BodyLocator, opts Options) *Sequencer {
	speed := opts.Speed
	if speed < 1 {
		speed = 1
	}
	s := &Sequencer{
		arm:      arm,
		act:      act,
		locator:  locator,
		resolver: kinematics.NewResolver(),
		speed:    speed,
		mode:     opts.Mode,
		dropZone: opts.DropZone,
	}
	s.current = arm.JointPositions()
	s.startInd = kinematics.Forward(s.current)
	s.targetInd = s.startInd
	return s
}

// Start begins a run over the given queue. An empty queue is a no-op error;
// so is starting while already running.
func (s *Sequencer) Start(targets []PickTarget) error {
	if s.running {
		return ErrRunning
	}
	if len(targets) == 0 {
		return ErrNoTargets
	}
	if s.dropZone == (spatial.Vec3{}) {
		return ErrNoDropZone
	}

	s.targets = append([]PickTarget(nil), targets...)
	s.targetIdx = 0
	s.placed = 0
	s.running = true

	s.current = s.arm.JointPositions()
	s.gripper = GripperClosed
	s.targetInd = kinematics.Forward(s.current)

	s.enterPhase(PhaseMoveOverTarget)
	log.Info("sequence started", "targets", len(targets), "mode", s.mode.String())
	return nil
}

// Stop cancels the run immediately. In-flight interpolation is discarded;
// actuator channels simply stop being written.
func (s *Sequencer) Stop() {
	if s.running {
		log.Info("sequence stopped", "phase", s.phase.String(), "placed", s.placed)
	}
	s.running = false
}

// Reset stops the run and clears all queue and placement state.
func (s *Sequencer) Reset() {
	s.Stop()
	s.targets = nil
	s.targetIdx = 0
	s.placed = 0
	s.phase = PhaseMoveOverTarget
	s.elapsed = 0
	s.progress = 0
}

// Update advances the state machine by dt seconds and writes the actuator
// commands for this tick. It returns a tagged outcome; callers dispatch
// completion events themselves.
func (s *Sequencer) Update(dt float64) Outcome {
	if !s.running || dt <= 0 {
		return Outcome{Kind: Continuing}
	}

	s.elapsed += dt
	d := s.phaseDuration()
	p := s.elapsed / d
	if p > 1 {
		p = 1
	}
	s.progress = p

	s.current = blendJoints(s.startJoints, s.targetJoints, smoothstep(p))
	s.act.CommandJoints(s.current)
	s.act.CommandGripper(s.gripper)

	if s.elapsed < d {
		return Outcome{Kind: Continuing}
	}
	return s.advance()
}

// advance moves to the next phase on the same tick the current one elapses.
func (s *Sequencer) advance() Outcome {
	switch s.phase {
	case PhaseAdvanceOrReturnHome:
		// Home reached; the batch is done.
		s.running = false
		log.Info("sequence finished", "placed", s.placed)
		return Outcome{Kind: BatchFinished}

	case PhaseLiftAfterRelease:
		// One full cycle done for the current item.
		id := s.targets[s.targetIdx].ID
		s.placed++
		s.targetIdx++
		if s.targetIdx < len(s.targets) {
			s.enterPhase(PhaseMoveOverTarget)
		} else {
			s.enterPhase(PhaseAdvanceOrReturnHome)
		}
		return Outcome{Kind: ItemCompleted, ItemID: id}

	default:
		s.enterPhase(s.phase + 1)
		return Outcome{Kind: Continuing}
	}
}

// enterPhase prepares the next step: refreshes the live target position,
// computes the phase target pose, solves IK (or applies the preset) and
// resets the phase timer.
func (s *Sequencer) enterPhase(p Phase) {
	s.phase = p
	s.elapsed = 0
	s.progress = 0
	s.startJoints = s.current
	s.startInd = s.targetInd // end pose of the previous phase
	step := &program[p]
	s.gripper = step.gripper

	s.refreshPickPos()

	if step.preset != nil {
		s.targetJoints = step.preset()
		s.targetInd = kinematics.Forward(s.targetJoints)
		return
	}

	pose := step.target(s)
	s.targetInd = pose
	solved, ok := s.resolver.Solve(pose, s.current)
	if !ok {
		// Unreachable: hold position, keep the phase clock running.
		log.Warn("phase target unreachable, holding position",
			"phase", p.String(), "x", pose.Pos.X, "y", pose.Pos.Y, "z", pose.Pos.Z)
		s.targetJoints = s.startJoints
		return
	}
	s.targetJoints = solved
}

// refreshPickPos captures the current item's position. Live bodies are
// re-read from the physics state at the start of every phase.
func (s *Sequencer) refreshPickPos() {
	if s.targetIdx >= len(s.targets) {
		return
	}
	t := s.targets[s.targetIdx]
	if t.BodyID != "" && s.locator != nil {
		if pos, ok := s.locator.BodyPosition(t.BodyID); ok {
			s.pickPos = pos
			return
		}
		log.Warn("live target body not found", "body", t.BodyID)
	}
	s.pickPos = t.Pos
}

// phaseDuration is the effective duration of the current phase: the table's
// base value times the mode factor, divided by the speed multiplier. Stored
// durations are never mutated.
func (s *Sequencer) phaseDuration() float64 {
	return program[s.phase].base * s.mode.durationFactor() / s.speed
}

// dropPosition places the nth item in the drop zone.
func (s *Sequencer) dropPosition(n int) spatial.Vec3 {
	if s.mode == ModeRow {
		return s.dropZone.Add(spatial.Vec3{Y: float64(n) * gridPitch})
	}
	row, col, layer := StackSlot(n)
	return s.dropZone.Add(spatial.Vec3{
		X: float64(row) * gridPitch,
		Y: float64(col) * gridPitch,
		Z: float64(layer) * layerHeight,
	})
}

// indicatorAt blends the visual end-effector indicator at progress t using
// the current phase's interpolation policy. The indicator never feeds back
// into actuator commands.
func (s *Sequencer) indicatorAt(t float64) spatial.Pose {
	e := smoothstep(t)
	if program[s.phase].cylindrical {
		return blendPoseCylindrical(s.startInd, s.targetInd, e)
	}
	return blendPose(s.startInd, s.targetInd, e)
}

// Indicator returns the visual indicator pose for the current tick.
func (s *Sequencer) Indicator() spatial.Pose {
	return s.indicatorAt(s.progress)
}

// Running reports whether a sequence is in progress.
func (s *Sequencer) Running() bool { return s.running }

// CurrentPhase returns the active phase index.
func (s *Sequencer) CurrentPhase() Phase { return s.phase }

// Placed returns how many items have been placed so far.
func (s *Sequencer) Placed() int { return s.placed }

// Remaining returns how many items are still queued.
func (s *Sequencer) Remaining() int {
	if s.targetIdx >= len(s.targets) {
		return 0
	}
	return len(s.targets) - s.targetIdx
}

// CurrentJoints returns the joint command from the latest tick.
func (s *Sequencer) CurrentJoints() kinematics.JointVector { return s.current }

// Gripper returns the gripper command from the latest tick.
func (s *Sequencer) Gripper() float64 { return s.gripper }

// Speed returns the playback multiplier.
func (s *Sequencer) Speed() float64 { return s.speed }

// SetSpeed changes the playback multiplier for subsequent ticks.
func (s *Sequencer) SetSpeed(v float64) error {
	if v < 1 {
		return ErrBadSpeed
	}
	s.speed = v
	return nil
}
