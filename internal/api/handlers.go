// ABOUTME: HTTP handlers for health logs and trends.
// ABOUTME: Log reads return the wire shape; writes go through the normalizer.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
)

const (
	msgInvalidDate  = "Invalid date format. Use YYYY-MM-DD."
	msgInvalidRange = "Start date must not be after end date."
	msgNoLogs       = "No health logs found between the selected date range."

	// defaultTrendDays is the window used when /api/trends has no start.
	defaultTrendDays = 30

	maxBodyBytes = 1 << 20
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.ListUsers(); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "database": "connected"})
}

func (s *Server) listHealthLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := optionalDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	to, err := optionalDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	if from != nil && to != nil && from.After(*to) {
		writeError(w, http.StatusBadRequest, msgInvalidRange)
		return
	}

	logs, err := s.repo.ListLogs(s.userFrom(r), from, to, 0)
	if err != nil {
		s.logger.Error("list logs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(logs) == 0 {
		writeError(w, http.StatusNotFound, msgNoLogs)
		return
	}

	out := make([]trends.RawRecord, 0, len(logs))
	for _, l := range logs {
		out = append(out, storage.WireRecord(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}

	rec, err := s.repo.GetLog(s.userFrom(r), date)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	if err != nil {
		s.logger.Error("get log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, storage.WireRecord(rec))
}

func (s *Server) postLog(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	defer r.Body.Close()

	var raw trends.RawRecord
	if err := decodeObject(body, &raw); err != nil || raw == nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rec, anomalies, err := s.normalizer.NormalizeOne(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	if rec.UserID == "" {
		rec.UserID = s.userFrom(r)
	}

	if err := s.repo.UpsertLog(rec); err != nil {
		s.logger.Error("upsert log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Log saved",
		"log":       storage.WireRecord(rec),
		"anomalies": anomalyStrings(anomalies),
	})
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}

	err = s.repo.DeleteLog(s.userFrom(r), date)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		s.logger.Error("delete log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	to := models.DateOf(time.Now())
	if v := q.Get("end"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidDate)
			return
		}
		to = d
	}
	from := to.AddDate(0, 0, -(defaultTrendDays - 1))
	if v := q.Get("start"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidDate)
			return
		}
		from = d
	}

	res := models.ResolutionDaily
	if v := q.Get("resolution"); v != "" {
		parsed, err := models.ParseResolution(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		res = parsed
	}

	var metrics []string
	if v := q.Get("metrics"); v != "" {
		metrics = strings.Split(v, ",")
	}

	series, err := s.charts.Build(r.Context(), chart.Query{
		UserID:     s.userFrom(r),
		From:       from,
		To:         to,
		Resolution: res,
		Metrics:    metrics,
	})
	switch {
	case errors.Is(err, chart.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, msgInvalidRange)
		return
	case err != nil:
		s.logger.Error("build trends failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// userFrom returns the user_id query parameter or the server default.
func (s *Server) userFrom(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user_id")); u != "" {
		return u
	}
	return s.defaultUser
}

func optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeObject(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	return nil
}

func anomalyStrings(as []trends.Anomaly) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.String())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
