package analytics

import (
	"sort"
	"time"

	"bn9-backend/internal/storage"
)

// rapidRepeatWindow is the gap under which two consecutive messages from the
// same user count as a rapid repeat.
const rapidRepeatWindow = 15 * time.Minute

// Stats is a pure aggregation over the full transcript log.
type Stats struct {
	TotalMessages   int            `json:"totalMessages"`
	UniqueUsers     int            `json:"uniqueUsers"`
	RepeatCustomers int            `json:"repeatCustomers"`
	UrgentCount     int            `json:"urgentCount"`
	ByCategory      map[string]int `json:"byCategory"`
	ByEmotion       map[string]int `json:"byEmotion"`
	RepeatedIn15m   int            `json:"repeatedIn15m"`
}

// ComputeStats derives Stats from a snapshot of records. It never mutates
// its input and does not depend on input order: per-user chronology is
// re-derived internally before pair counting. Records without a userId are
// counted in the totals but are not treated as a user.
func ComputeStats(records []storage.Record) Stats {
	stats := Stats{
		ByCategory: map[string]int{},
		ByEmotion:  map[string]int{},
	}

	byUser := map[string][]time.Time{}
	for _, r := range records {
		stats.TotalMessages++

		category := r.Category
		if category == "" {
			category = "other"
		}
		stats.ByCategory[category]++

		emotion := r.Emotion
		if emotion == "" {
			emotion = "unclear"
		}
		stats.ByEmotion[emotion]++

		if r.IsUrgent {
			stats.UrgentCount++
		}
		if r.UserID != "" {
			byUser[r.UserID] = append(byUser[r.UserID], r.Timestamp)
		}
	}

	stats.UniqueUsers = len(byUser)
	for _, times := range byUser {
		if len(times) > 1 {
			stats.RepeatCustomers++
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
		// Count adjacent pairs, not users: three messages each within the
		// window of the previous one contribute two.
		for i := 1; i < len(times); i++ {
			if times[i].Sub(times[i-1]) <= rapidRepeatWindow {
				stats.RepeatedIn15m++
			}
		}
	}
	return stats
}
