package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bn9-backend/internal/line"
)

type channelSink struct {
	events  chan Event
	release chan struct{}
}

func newChannelSink() *channelSink {
	return &channelSink{events: make(chan Event, 16), release: make(chan struct{})}
}

func (s *channelSink) HandleEvent(_ context.Context, ev Event) {
	<-s.release
	s.events <- ev
}

func payloadBody(t *testing.T, events ...Event) []byte {
	t.Helper()
	b, err := json.Marshal(Payload{Events: events})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func post(h http.Handler, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if sig != "" {
		req.Header.Set(line.SignatureHeader, sig)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// The handler must acknowledge before any event is processed: the sink is
// blocked, yet ServeHTTP returns 200.
func TestHandlerAcksBeforeProcessing(t *testing.T) {
	sink := newChannelSink()
	h := NewHandler("", false, sink)
	body := payloadBody(t, textEvent("rt1", "U1", "hello"))

	rec := post(h, body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	close(sink.release)
	select {
	case ev := <-sink.events:
		if ev.Message.Text != "hello" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never reached the sink")
	}
}

func TestHandlerFansOutWholeBatch(t *testing.T) {
	sink := newChannelSink()
	close(sink.release)
	h := NewHandler("", false, sink)
	body := payloadBody(t,
		textEvent("rt1", "U1", "one"),
		textEvent("rt2", "U2", "two"),
		textEvent("rt3", "U3", "three"),
	)

	if rec := post(h, body, ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case ev := <-sink.events:
			seen[ev.Message.Text] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 3 events arrived", i)
		}
	}
	if !seen["one"] || !seen["two"] || !seen["three"] {
		t.Fatalf("batch incomplete: %v", seen)
	}
}

func TestHandlerSignatureModes(t *testing.T) {
	secret := "s3cret"
	body := payloadBody(t, textEvent("rt1", "U1", "hello"))

	// Lenient deployments ack bad signatures and drop the batch.
	sink := newChannelSink()
	close(sink.release)
	lenient := NewHandler(secret, false, sink)
	if rec := post(lenient, body, "bogus"); rec.Code != http.StatusOK {
		t.Fatalf("lenient mode: status = %d, want 200", rec.Code)
	}
	select {
	case ev := <-sink.events:
		t.Fatalf("dropped batch still dispatched: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	// Strict deployments reject with 401.
	strict := NewHandler(secret, true, newChannelSink())
	if rec := post(strict, body, "bogus"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("strict mode: status = %d, want 401", rec.Code)
	}
	if rec := post(strict, body, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status = %d, want 401", rec.Code)
	}

	// A correct signature passes in both modes.
	sig := line.Sign(secret, body)
	okSink := newChannelSink()
	close(okSink.release)
	ok := NewHandler(secret, true, okSink)
	if rec := post(ok, body, sig); rec.Code != http.StatusOK {
		t.Fatalf("valid signature rejected: %d", rec.Code)
	}
	select {
	case <-okSink.events:
	case <-time.After(2 * time.Second):
		t.Fatalf("valid batch never dispatched")
	}
}

func TestHandlerNoSecretAcceptsAnything(t *testing.T) {
	sink := newChannelSink()
	close(sink.release)
	h := NewHandler("", false, sink)

	if rec := post(h, payloadBody(t, textEvent("rt1", "U1", "hi")), "whatever"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	select {
	case <-sink.events:
	case <-time.After(2 * time.Second):
		t.Fatalf("event not dispatched without secret")
	}

	// Even malformed bodies are acknowledged.
	if rec := post(h, []byte("not json"), ""); rec.Code != http.StatusOK {
		t.Fatalf("malformed body: status = %d, want 200", rec.Code)
	}
}

func TestHandlerSurvivesPanickingSink(t *testing.T) {
	h := NewHandler("", false, panicSink{})
	rec := post(h, payloadBody(t, textEvent("rt1", "U1", "boom")), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Give the goroutine a moment; a panic escaping the recover would crash
	// the test process.
	time.Sleep(50 * time.Millisecond)
}

type panicSink struct{}

func (panicSink) HandleEvent(context.Context, Event) { panic("event handler exploded") }
