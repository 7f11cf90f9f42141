package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound is returned by FindMostRecentByUser when the user has no
// prior record.
var ErrNotFound = errors.New("record not found")

// Record is one logged support interaction. Records are appended once and
// never updated or deleted.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Emotion   string    `json:"emotion,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Reply     string    `json:"reply"`
	IsUrgent  bool      `json:"isUrgent"`
}

// Store abstracts the transcript log. Append writes the record both to the
// master surface and to a per-category surface created on demand; the two
// writes are independent and best-effort. FindMostRecentByUser scans the
// master surface in storage order and returns the last matching record.
// Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, rec Record) error
	FindMostRecentByUser(ctx context.Context, userID string) (Record, error)
	ListAll(ctx context.Context, limit int) ([]Record, error)
}

// Persisted column contract, fixed across writers and readers:
//
//	timestamp | userId | text | category | emotion | reason | reply | isUrgent
//
// isUrgent is serialized as the literal strings "true"/"false". Rows are
// mapped back by position; a header row (first cell not a timestamp) is
// cosmetic and skipped on read.
const numColumns = 8

// Row renders the record as one spreadsheet row.
func (r Record) Row() []interface{} {
	return []interface{}{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.UserID,
		r.Text,
		r.Category,
		r.Emotion,
		r.Reason,
		r.Reply,
		strconv.FormatBool(r.IsUrgent),
	}
}

// FromRow maps one raw row back into a Record by column position. It returns
// an error for rows whose first cell is not a parsable timestamp, which
// covers header rows and hand-edited garbage.
func FromRow(row []interface{}) (Record, error) {
	cells := make([]string, numColumns)
	for i := 0; i < numColumns && i < len(row); i++ {
		if s, ok := row[i].(string); ok {
			cells[i] = s
		} else if row[i] != nil {
			cells[i] = fmt.Sprint(row[i])
		}
	}

	ts, err := time.Parse(time.RFC3339, cells[0])
	if err != nil {
		return Record{}, fmt.Errorf("row has no valid timestamp: %w", err)
	}

	urgent, _ := strconv.ParseBool(cells[7])
	return Record{
		Timestamp: ts,
		UserID:    cells[1],
		Text:      cells[2],
		Category:  cells[3],
		Emotion:   cells[4],
		Reason:    cells[5],
		Reply:     cells[6],
		IsUrgent:  urgent,
	}, nil
}
