package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil || s.svc.Stats == nil {
		jsonError(w, "parse stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"window":         s.cfg.StatsWindow.String(),
		"stats":          s.svc.Stats.Snapshot(),
		"stored_results": s.results.Len(),
	})
}
