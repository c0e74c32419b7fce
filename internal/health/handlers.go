package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger probes one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	DB      Pinger
	Redis   Pinger
	Timeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	status := map[string]string{
		"db":    h.probe(ctx, h.DB),
		"redis": h.probe(ctx, h.Redis),
	}
	w.Header().Set("Content-Type", "application/json")
	if status["db"] != "ok" || status["redis"] != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.Timeout
}
