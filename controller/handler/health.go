package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"machinethread/controller/domain"
)

// DefaultIdleTimeout はスナップショットが途絶えたと見なすまでの時間です。
const DefaultIdleTimeout = 5 * time.Second

type controllerStatus struct {
	domain.SessionStats
	Idle string `json:"idle"`
}

type healthResponse struct {
	Status      string             `json:"status"`
	Controllers []controllerStatus `json:"controllers"`
}

// HealthHandler は稼働中のコントローラの状態を JSON で返します。
// どれかが受信待ちで止まっていれば status は "degraded" になります。
type HealthHandler struct {
	registry    *domain.Registry
	idleTimeout time.Duration
}

func NewHealthHandler(registry *domain.Registry, idleTimeout time.Duration) *HealthHandler {
	return &HealthHandler{registry: registry, idleTimeout: idleTimeout}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{Status: "ok", Controllers: []controllerStatus{}}
	for _, s := range h.registry.Sessions() {
		idle, reason := s.IsIdle(h.idleTimeout)
		if idle && reason.Stalled() {
			resp.Status = "degraded"
		}
		resp.Controllers = append(resp.Controllers, controllerStatus{
			SessionStats: s.Stats(),
			Idle:         reason.String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.WarnContext(r.Context(), "failed to write health response", "err", err)
	}
}
