package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/yeabuddy/core/logger"
)

var errMissingUpdateID = errors.New("update_id is missing")

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.opts.Now().UTC().Format(time.RFC3339Nano),
		Service:   ServiceName,
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	upd, err := decodeUpdate(w, r)
	if err != nil {
		logger.Warn(r.Context(), logger.ComponentHTTP, "webhook.invalid", slog.String("error", err.Error()))
		http.Error(w, "Invalid update", http.StatusBadRequest)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(r.Context(), logger.ComponentHTTP, "webhook.panic",
				slog.Int("update_id", upd.ID), slog.Any("panic", rec))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}()
	s.proc.ProcessUpdate(upd)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// decodeUpdate reads one update from the request body. A body without an
// update_id, such as "null" or "{}", is not an update.
func decodeUpdate(w http.ResponseWriter, r *http.Request) (tele.Update, error) {
	var upd tele.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		return tele.Update{}, err
	}
	if upd.ID == 0 {
		return tele.Update{}, errMissingUpdateID
	}
	return upd, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
