package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/floofbot/floofbridge/internal/provider"
	"github.com/floofbot/floofbridge/pkg/api"
)

// handleHealth returns the http.HandlerFunc for GET /health. When the
// provider supports probing, the check is live; a failed probe reports
// degraded with 503 and updates the backend gauge.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := api.HealthResponse{Status: "ok"}
		if g.llm != nil {
			resp.Model = g.llm.ModelName()
		}

		if hc, ok := g.llm.(provider.HealthChecker); ok {
			ctx, cancel := context.WithTimeout(r.Context(), g.config.HealthProbeTimeout)
			err := hc.HealthCheck(ctx)
			cancel()
			g.metrics.SetBackendUp(err == nil)
			if err != nil {
				resp.Status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// handleStatus returns the http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := api.StatusResponse{
			Status:        "ok",
			UptimeSeconds: int64(time.Since(g.startedAt) / time.Second),
		}
		if !g.metrics.BackendUp() {
			resp.Status = "degraded"
		}
		if g.llm != nil {
			resp.Model = g.llm.ModelName()
		}
		if g.threads != nil {
			resp.Threads = g.threads.Len()
		}
		if g.users != nil {
			resp.Users = g.users.Len()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
