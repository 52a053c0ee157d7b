package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Probe is one dependency checked by /healthz.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	probes  []Probe
	timeout time.Duration
}

func NewHealthchecker(probes ...Probe) healthchecker {
	return &healthcheckerImpl{probes: probes, timeout: 3 * time.Second}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.probes))
	for _, p := range h.probes {
		if err := p.Check(ctx); err != nil {
			slog.Error("healthcheck failed", "probe", p.Name, "error", err)
			checks[p.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[p.Name] = "ok"
	}

	body := map[string]any{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	WriteJSON(w, status, body)
}

func registerHealthcheck(mux *http.ServeMux, probes []Probe) {
	healthchecker := NewHealthchecker(probes...)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
