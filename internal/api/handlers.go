package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bn9-backend/internal/analytics"
	"bn9-backend/internal/storage"
)

// summarizeSampleSize caps how many records are fed to the model.
const summarizeSampleSize = 50

// GET /api/logs?q=&category=&emotion=&userId=&start=&end=&limit=
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}

	records, err := s.opts.Store.ListAll(r.Context(), 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	q := r.URL.Query()
	filtered := filterRecords(records, logFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Emotion:  q.Get("emotion"),
		UserID:   q.Get("userId"),
		Start:    parseTimeParam(q.Get("start")),
		End:      parseTimeParam(q.Get("end")),
	})

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"count": len(filtered),
		"data":  filtered,
	})
}

type logFilter struct {
	Query    string
	Category string
	Emotion  string
	UserID   string
	Start    time.Time
	End      time.Time
}

func filterRecords(records []storage.Record, f logFilter) []storage.Record {
	out := make([]storage.Record, 0, len(records))
	for _, rec := range records {
		if f.Category != "" && rec.Category != f.Category {
			continue
		}
		if f.Emotion != "" && rec.Emotion != f.Emotion {
			continue
		}
		if f.UserID != "" && rec.UserID != f.UserID {
			continue
		}
		if !f.Start.IsZero() && rec.Timestamp.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && rec.Timestamp.After(f.End) {
			continue
		}
		if f.Query != "" {
			needle := strings.ToLower(f.Query)
			if !strings.Contains(strings.ToLower(rec.Text), needle) &&
				!strings.Contains(strings.ToLower(rec.Reply), needle) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func parseTimeParam(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t
	}
	return time.Time{}
}

// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}
	records, err := s.opts.Store.ListAll(r.Context(), 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"stats": analytics.ComputeStats(records),
	})
}

// POST /api/summarize {items?: LogRecord[]}
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}

	var body struct {
		Items []storage.Record `json:"items"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	records := body.Items
	if len(records) == 0 {
		all, err := s.opts.Store.ListAll(r.Context(), 0)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		records = all
	}
	if len(records) > summarizeSampleSize {
		records = records[:summarizeSampleSize]
	}

	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "[%s] user=%s category=%s emotion=%s urgent=%t\nQ: %s\nA: %s\n\n",
			rec.Timestamp.Format(time.RFC3339), rec.UserID, rec.Category, rec.Emotion, rec.IsUrgent, rec.Text, rec.Reply)
	}

	summary, err := s.opts.Summarizer.Summarize(r.Context(), b.String())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "summary": summary})
}

// POST /api/push {to, text}
func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}
	var body struct {
		To   string `json:"to"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.To == "" || body.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": `missing "to" or "text"`})
		return
	}
	if err := s.opts.Messenger.Push(r.Context(), body.To, body.Text); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /api/reply {replyToken?, userId?, text}
func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}
	var body struct {
		ReplyToken string `json:"replyToken"`
		UserID     string `json:"userId"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "text is required"})
		return
	}

	var err error
	switch {
	case body.ReplyToken != "":
		err = s.opts.Messenger.Reply(r.Context(), body.ReplyToken, body.Text)
	case body.UserID != "":
		err = s.opts.Messenger.Push(r.Context(), body.UserID, body.Text)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "replyToken or userId is required"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /api/alert {message}
func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "message is required"})
		return
	}
	if err := s.opts.Notifier.Notify(r.Context(), body.Message); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
