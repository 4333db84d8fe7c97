package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"arbwatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

type signalsResponse struct {
	Items []model.Signal `json:"items"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"ok": true}
	if s.deps.Quotes != nil {
		resp["quotes"] = s.deps.Quotes.Snapshot()
	}
	if s.deps.Status != nil {
		for k, v := range s.deps.Status() {
			resp[k] = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) signals(w http.ResponseWriter, r *http.Request) {
	limit := s.parseLimit(r)
	items, err := s.deps.Signals.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("list signals failed")
		writeError(w, http.StatusInternalServerError, "failed to load signals")
		return
	}
	if items == nil {
		items = []model.Signal{}
	}
	writeJSON(w, http.StatusOK, signalsResponse{Items: items})
}

// parseLimit 缺省 DefaultLimit，非法值同缺省，上限 MaxLimit
func (s *Server) parseLimit(r *http.Request) int {
	limit := s.opts.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
