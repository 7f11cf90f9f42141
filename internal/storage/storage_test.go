package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func rec(ts time.Time, userID, text string) Record {
	return Record{Timestamp: ts, UserID: userID, Text: text, Category: "other", Emotion: "unclear", Reply: "ok"}
}

func TestMemoryStoreFindMostRecentByUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := m.FindMostRecentByUser(ctx, "U1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for empty store, got %v", err)
	}

	if err := m.Append(ctx, rec(base, "U1", "first")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := m.Append(ctx, rec(base.Add(time.Minute), "U2", "other user")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := m.Append(ctx, rec(base.Add(2*time.Minute), "U1", "second")); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := m.FindMostRecentByUser(ctx, "U1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Text != "second" {
		t.Fatalf("want most recent record, got %q", got.Text)
	}

	if _, err := m.FindMostRecentByUser(ctx, "U3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown user, got %v", err)
	}
}

// The Nth event's lookup must see exactly the N-1 prior records, never its
// own: lookup happens before the append in the pipeline.
func TestLookupBeforeAppendSemantics(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := m.FindMostRecentByUser(ctx, "U1")
		if i == 0 && !errors.Is(err, ErrNotFound) {
			t.Fatalf("event 1: first message should look like a new customer, got %v", err)
		}
		if i > 0 && err != nil {
			t.Fatalf("event %d: expected a prior record, got %v", i+1, err)
		}
		if err := m.Append(ctx, rec(base.Add(time.Duration(i)*time.Minute), "U1", "msg")); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestMemoryStoreListAllLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = m.Append(ctx, rec(base.Add(time.Duration(i)*time.Minute), "U1", "msg"))
	}

	all, err := m.ListAll(ctx, 0)
	if err != nil || len(all) != 5 {
		t.Fatalf("ListAll(0) = %d records, err %v", len(all), err)
	}

	last2, err := m.ListAll(ctx, 2)
	if err != nil || len(last2) != 2 {
		t.Fatalf("ListAll(2) = %d records, err %v", len(last2), err)
	}
	if !last2[1].Timestamp.Equal(base.Add(4 * time.Minute)) {
		t.Fatalf("limit did not keep the most recent records: %+v", last2)
	}
}

func TestMemoryStoreCategoryPartition(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	r1 := rec(base, "U1", "deposit question")
	r1.Category = "deposit"
	r2 := rec(base.Add(time.Minute), "U2", "something else")
	_ = m.Append(ctx, r1)
	_ = m.Append(ctx, r2)

	if got := m.Category("deposit"); len(got) != 1 || got[0].Text != "deposit question" {
		t.Fatalf("unexpected deposit partition: %+v", got)
	}
	if all, _ := m.ListAll(ctx, 0); len(all) != 2 {
		t.Fatalf("master surface must hold every record, got %d", len(all))
	}
}

func TestRowRoundTrip(t *testing.T) {
	r := Record{
		Timestamp: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		UserID:    "U42",
		Text:      "help me sign up",
		Category:  "signup",
		Emotion:   "calm",
		Reason:    "asks about registration",
		Reply:     "Sure, here is how",
		IsUrgent:  true,
	}

	row := r.Row()
	if len(row) != numColumns {
		t.Fatalf("row has %d columns, want %d", len(row), numColumns)
	}
	if row[7] != "true" {
		t.Fatalf("isUrgent must serialize as literal string, got %v", row[7])
	}

	back, err := FromRow(row)
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if back != r {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, r)
	}
}

func TestFromRowSkipsHeaderRows(t *testing.T) {
	header := []interface{}{"timestamp", "userId", "text", "category", "emotion", "reason", "reply", "isUrgent"}
	if _, err := FromRow(header); err == nil {
		t.Fatalf("header row must not parse as a record")
	}

	short := []interface{}{"2025-06-01T12:00:00Z", "U1"}
	back, err := FromRow(short)
	if err != nil {
		t.Fatalf("short row should still parse positionally: %v", err)
	}
	if back.UserID != "U1" || back.Reply != "" || back.IsUrgent {
		t.Fatalf("unexpected record from short row: %+v", back)
	}
}
