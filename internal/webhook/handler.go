package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"bn9-backend/internal/line"
)

// EventSink consumes one webhook event; the pipeline implements it.
type EventSink interface {
	HandleEvent(ctx context.Context, ev Event)
}

// Handler is the inbound webhook endpoint. It verifies the LINE signature
// over the raw body, acknowledges the batch immediately, and fans events out
// to the sink in independent goroutines. LINE enforces a short response
// budget, so nothing downstream may delay the 200.
type Handler struct {
	secret string
	// strict rejects bad signatures with 401; otherwise they are
	// acknowledged with 200 and silently dropped so the platform console
	// does not report the endpoint as unhealthy.
	strict bool
	sink   EventSink
}

func NewHandler(secret string, strict bool, sink EventSink) *Handler {
	if secret == "" {
		log.Printf("LINE_CHANNEL_SECRET is not set, webhook signature verification is disabled")
	}
	return &Handler{secret: secret, strict: strict, sink: sink}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("webhook: failed to read body: %v", err)
		h.ack(w)
		return
	}

	if h.secret != "" && !line.ValidSignature(h.secret, body, r.Header.Get(line.SignatureHeader)) {
		log.Printf("webhook: signature mismatch from %s", r.RemoteAddr)
		if h.strict {
			http.Error(w, "bad signature", http.StatusUnauthorized)
		} else {
			h.ack(w)
		}
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("webhook: unparsable payload: %v", err)
		h.ack(w)
		return
	}

	// Acknowledge before any event is processed.
	h.ack(w)

	for _, ev := range payload.Events {
		go h.handleAsync(ev)
	}
}

func (h *Handler) handleAsync(ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("webhook: panic while handling event: %v", rec)
		}
	}()
	// The request context dies when ServeHTTP returns; event processing is
	// fire-and-forget and owns its own lifetime.
	h.sink.HandleEvent(context.Background(), ev)
}

func (h *Handler) ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
