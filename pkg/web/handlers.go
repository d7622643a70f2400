package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-armpick/pkg/hub"
	"github.com/teslashibe/go-armpick/pkg/sequence"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// TargetRequest describes one pick target submitted over the API. Either a
// live body id or a static point.
type TargetRequest struct {
	Body string  `json:"body,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

func (r TargetRequest) toTarget() sequence.PickTarget {
	if r.Body != "" {
		return sequence.BodyTarget(r.Body)
	}
	return sequence.PointTarget(spatial.Vec3{X: r.X, Y: r.Y, Z: r.Z})
}

// StartRequest optionally carries an inline target list; when empty the
// staged queue is used.
type StartRequest struct {
	Targets []TargetRequest `json:"targets"`
}

// SpeedRequest sets the playback multiplier.
type SpeedRequest struct {
	Speed float64 `json:"speed"`
}

// handleStatus returns the last published state frame.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return c.JSON(s.frame)
}

// handleListTargets returns the staged target queue.
func (s *Server) handleListTargets(c *fiber.Ctx) error {
	s.stagedMu.Lock()
	defer s.stagedMu.Unlock()
	ids := make([]string, 0, len(s.staged))
	for _, t := range s.staged {
		ids = append(ids, t.ID)
	}
	return c.JSON(fiber.Map{"count": len(ids), "ids": ids})
}

// handleAddTarget stages one target for the next start.
func (s *Server) handleAddTarget(c *fiber.Ctx) error {
	var req TargetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	t := req.toTarget()
	s.stagedMu.Lock()
	s.staged = append(s.staged, t)
	count := len(s.staged)
	s.stagedMu.Unlock()
	return c.JSON(fiber.Map{"id": t.ID, "staged": count})
}

// handleStart launches a batch over the inline or staged targets.
func (s *Server) handleStart(c *fiber.Ctx) error {
	if s.OnStart == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "start not configured",
		})
	}

	var req StartRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var targets []sequence.PickTarget
	if len(req.Targets) > 0 {
		for _, r := range req.Targets {
			targets = append(targets, r.toTarget())
		}
	} else {
		targets = s.drainStaged()
	}

	if err := s.OnStart(targets); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"started": len(targets)})
}

// handleStop cancels the active batch.
func (s *Server) handleStop(c *fiber.Ctx) error {
	if s.OnStop == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "stop not configured",
		})
	}
	s.OnStop()
	return c.JSON(fiber.Map{"stopped": true})
}

// handleSpeed updates the playback multiplier.
func (s *Server) handleSpeed(c *fiber.Ctx) error {
	if s.OnSpeed == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "speed not configured",
		})
	}
	var req SpeedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.OnSpeed(req.Speed); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"speed": req.Speed})
}

// handleStateWS streams state frames over a websocket. The latest frame is
// sent immediately so clients render without waiting a tick.
func (s *Server) handleStateWS(c *websocket.Conn) {
	s.frameMu.RLock()
	c.WriteJSON(s.frame)
	s.frameMu.RUnlock()

	client := hub.NewClient(s.stateHub, c)
	client.Run()
}
