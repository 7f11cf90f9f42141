package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bn9-backend/internal/alert"
	"bn9-backend/internal/classify"
	"bn9-backend/internal/line"
	"bn9-backend/internal/storage"
)

// returningPrefix greets a user who already has at least one record in the
// master log at the time their current event is processed.
const returningPrefix = "Welcome back! "

// Pipeline runs the per-event sequence: prior-record lookup, classification,
// durable logging, conditional operator alert, reply delivery. Steps for one
// event are strictly sequential; events never wait on each other.
type Pipeline struct {
	classifier classify.Classifier
	store      storage.Store
	policy     *alert.Policy
	notifier   alert.Notifier
	messenger  line.Messenger
}

func NewPipeline(classifier classify.Classifier, store storage.Store, policy *alert.Policy, notifier alert.Notifier, messenger line.Messenger) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		store:      store,
		policy:     policy,
		notifier:   notifier,
		messenger:  messenger,
	}
}

// HandleEvent processes a single webhook event to completion. All failures
// are terminal for this event only: they are logged and never propagated,
// because the upstream acknowledgement has already been sent.
func (p *Pipeline) HandleEvent(ctx context.Context, ev Event) {
	if !ev.IsTextMessage() {
		log.Printf("webhook: ignoring %s event", ev.Type)
		return
	}

	userID := ev.Source.UserID
	text := strings.TrimSpace(ev.Message.Text)

	// The lookup runs before this event's own record is appended, so a
	// user's very first message never sees itself.
	returning := false
	if userID != "" {
		if _, err := p.store.FindMostRecentByUser(ctx, userID); err == nil {
			returning = true
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("webhook: prior-record lookup failed for %s: %v", userID, err)
		}
	}

	verdict := p.classifier.Classify(ctx, text)

	reply := verdict.Reply
	if returning {
		reply = returningPrefix + reply
	}

	urgent := p.policy.ShouldAlert(verdict.Category)

	rec := storage.Record{
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Text:      text,
		Category:  verdict.Category,
		Emotion:   verdict.Emotion,
		Reason:    verdict.Reason,
		Reply:     reply,
		IsUrgent:  urgent,
	}
	// Logging failure must not cost the user their reply.
	if err := p.store.Append(ctx, rec); err != nil {
		log.Printf("webhook: log append failed: %v", err)
	}

	if urgent {
		msg := fmt.Sprintf("🚨 urgent %s message from %s:\n%s\n(reason: %s)", verdict.Category, userID, text, verdict.Reason)
		if err := p.notifier.Notify(ctx, msg); err != nil {
			log.Printf("webhook: operator alert failed: %v", err)
		}
	}

	switch {
	case ev.ReplyToken != "":
		if err := p.messenger.Reply(ctx, ev.ReplyToken, reply); err != nil {
			log.Printf("webhook: reply delivery failed: %v", err)
		}
	case userID != "":
		if err := p.messenger.Push(ctx, userID, reply); err != nil {
			log.Printf("webhook: push delivery failed: %v", err)
		}
	default:
		// No way to reach the user.
		log.Printf("webhook: event has neither replyToken nor userId, dropping reply")
	}
}
