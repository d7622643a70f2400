// Package web provides the real-time dashboard and control API for the arm.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-armpick/internal/log"
	"github.com/teslashibe/go-armpick/pkg/hub"
	"github.com/teslashibe/go-armpick/pkg/sequence"
)

// StateFrame is the per-tick state snapshot streamed to dashboard clients.
type StateFrame struct {
	Running   bool       `json:"running"`
	Phase     string     `json:"phase"`
	Placed    int        `json:"placed"`
	Remaining int        `json:"remaining"`
	Speed     float64    `json:"speed"`
	Joints    [7]float64 `json:"joints"`
	Gripper   float64    `json:"gripper"`
	Indicator [3]float64 `json:"indicator"`
}

// Server is the web dashboard server. Control actions are delegated through
// the callback fields; wire them before Start.
type Server struct {
	app  *fiber.App
	port string

	// Last published frame, served on /api/status.
	frame   StateFrame
	frameMu sync.RWMutex

	// Staged targets, queued over the API until the next start.
	staged   []sequence.PickTarget
	stagedMu sync.Mutex

	stateHub *hub.Hub

	OnStart func(targets []sequence.PickTarget) error
	OnStop  func()
	OnSpeed func(v float64) error
}

// NewServer creates the dashboard server and registers all routes.
func NewServer(port string) *Server {
	s := &Server{
		port:     port,
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Armpick Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/targets", s.handleListTargets)
	api.Post("/targets", s.handleAddTarget)
	api.Post("/start", s.handleStart)
	api.Post("/stop", s.handleStop)
	api.Post("/speed", s.handleSpeed)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start runs the hub and blocks serving HTTP.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	go s.stateHub.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync serves in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server failed", "error", err)
		}
	}()
}

// PublishState records the latest frame and streams it to all clients.
// Called once per tick from the control loop.
func (s *Server) PublishState(f StateFrame) {
	s.frameMu.Lock()
	s.frame = f
	s.frameMu.Unlock()
	s.stateHub.BroadcastJSON(f)
}

// drainStaged returns and clears the staged target queue.
func (s *Server) drainStaged() []sequence.PickTarget {
	s.stagedMu.Lock()
	defer s.stagedMu.Unlock()
	out := s.staged
	s.staged = nil
	return out
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
