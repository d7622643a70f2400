package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-armpick/pkg/sequence"
)

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestStatusReturnsLastFrame(t *testing.T) {
	s := NewServer("0")
	s.frameMu.Lock()
	s.frame = StateFrame{Running: true, Phase: "lift", Placed: 2, Speed: 1}
	s.frameMu.Unlock()

	req := httptest.NewRequest("GET", "/api/status", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var frame StateFrame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&frame))
	assert.True(t, frame.Running)
	assert.Equal(t, "lift", frame.Phase)
	assert.Equal(t, 2, frame.Placed)
}

func TestStageAndListTargets(t *testing.T) {
	s := NewServer("0")

	req := httptest.NewRequest("POST", "/api/targets", jsonBody(t, TargetRequest{X: 0.45, Y: 0.1, Z: 0.02}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/targets", nil)
	resp, err = s.app.Test(req)
	require.NoError(t, err)

	var out struct {
		Count int      `json:"count"`
		IDs   []string `json:"ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.IDs, 1)
	assert.NotEmpty(t, out.IDs[0])
}

func TestStartUsesStagedTargets(t *testing.T) {
	s := NewServer("0")
	var started []sequence.PickTarget
	s.OnStart = func(targets []sequence.PickTarget) error {
		started = targets
		return nil
	}

	req := httptest.NewRequest("POST", "/api/targets", jsonBody(t, TargetRequest{Body: "crate-1"}))
	req.Header.Set("Content-Type", "application/json")
	_, err := s.app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest("POST", "/api/start", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, started, 1)
	assert.Equal(t, "crate-1", started[0].ID)

	// The staged queue drains on start.
	req = httptest.NewRequest("POST", "/api/start", nil)
	_, err = s.app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, started)
}

func TestStartInlineTargets(t *testing.T) {
	s := NewServer("0")
	var started []sequence.PickTarget
	s.OnStart = func(targets []sequence.PickTarget) error {
		started = targets
		return nil
	}

	body := StartRequest{Targets: []TargetRequest{
		{X: 0.45, Y: 0.1, Z: 0.02},
		{Body: "crate-7"},
	}}
	req := httptest.NewRequest("POST", "/api/start", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, started, 2)
	assert.Equal(t, "crate-7", started[1].ID)
}

func TestStartConflict(t *testing.T) {
	s := NewServer("0")
	s.OnStart = func([]sequence.PickTarget) error {
		return errors.New("already running")
	}

	req := httptest.NewRequest("POST", "/api/start", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestStartUnconfigured(t *testing.T) {
	s := NewServer("0")
	req := httptest.NewRequest("POST", "/api/start", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestStop(t *testing.T) {
	s := NewServer("0")
	stopped := false
	s.OnStop = func() { stopped = true }

	req := httptest.NewRequest("POST", "/api/stop", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, stopped)
}

func TestSpeed(t *testing.T) {
	s := NewServer("0")
	var got float64
	s.OnSpeed = func(v float64) error {
		if v < 1 {
			return errors.New("speed multiplier must be >= 1")
		}
		got = v
		return nil
	}

	req := httptest.NewRequest("POST", "/api/speed", jsonBody(t, SpeedRequest{Speed: 2.5}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 2.5, got)

	req = httptest.NewRequest("POST", "/api/speed", jsonBody(t, SpeedRequest{Speed: 0.1}))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
