package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"grasswatch/internal/types"
)

// hubProbeTimeout caps the sensor hub reachability check inside the health
// endpoint so a hung hub cannot stall liveness probes.
const hubProbeTimeout = 2 * time.Second

// stateResponse is the payload of GET /v1/state.
type stateResponse struct {
	Moisture   float64           `json:"moisture"`
	DewPointC  float64           `json:"dew_point_c"`
	ObservedAt time.Time         `json:"observed_at"`
	Cycle      types.CycleStatus `json:"cycle"`
}

// HandleState returns the latest model result together with the cycle
// counters. Before the first successful cycle there is no state to serve.
func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	result, ok := s.source.Last()
	if !ok {
		Error(w, r, types.NewAppError(
			types.ErrCodeNotFoundState,
			"no estimation cycle has completed yet",
			nil,
		))
		return
	}

	JSON(w, r, http.StatusOK, APIResponse{Data: stateResponse{
		Moisture:   result.Moisture,
		DewPointC:  result.DewPointC,
		ObservedAt: result.ObservedAt,
		Cycle:      s.source.Status(),
	}})
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// HandleHealth probes the sensor hub and the freshness of the poll cycle.
// Returns 200 when both are healthy, 503 otherwise. The endpoint reports
// unhealthy until the first cycle succeeds, which doubles as a readiness
// signal during startup.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	components := map[string]componentStatus{
		"hub":   s.probeHub(r.Context()),
		"cycle": s.probeCycle(),
	}

	healthy := true
	for _, c := range components {
		if c.Status != "healthy" {
			healthy = false
		}
	}

	resp := healthResponse{Status: "healthy", Components: components}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	JSON(w, r, status, resp)
}

func (s *Server) probeHub(ctx context.Context) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, hubProbeTimeout)
	defer cancel()

	if err := s.hub.Ping(ctx); err != nil {
		return componentStatus{Status: "unhealthy", Message: err.Error()}
	}
	return componentStatus{Status: "healthy"}
}

func (s *Server) probeCycle() componentStatus {
	status := s.source.Status()
	if status.LastSuccess.IsZero() {
		return componentStatus{Status: "unhealthy", Message: "no successful cycle yet"}
	}

	age := s.clock.Now().Sub(status.LastSuccess)
	if age > s.poll.StaleAfter {
		return componentStatus{
			Status:  "unhealthy",
			Message: fmt.Sprintf("last successful cycle is %s old", age.Round(time.Second)),
		}
	}
	return componentStatus{Status: "healthy"}
}
