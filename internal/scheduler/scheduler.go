package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"bn9-backend/internal/alert"
	"bn9-backend/internal/analytics"
	"bn9-backend/internal/storage"
)

// Digest periodically pushes a one-line stats summary to the operator
// destination.
type Digest struct {
	cron     *cron.Cron
	spec     string
	store    storage.Store
	notifier alert.Notifier
}

func NewDigest(spec string, store storage.Store, notifier alert.Notifier) *Digest {
	return &Digest{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		spec:     spec,
		store:    store,
		notifier: notifier,
	}
}

func (d *Digest) Start() error {
	if _, err := d.cron.AddFunc(d.spec, d.run); err != nil {
		return fmt.Errorf("invalid digest cron spec %q: %w", d.spec, err)
	}
	d.cron.Start()
	log.Printf("📅 daily digest scheduled (%s, UTC)", d.spec)
	return nil
}

func (d *Digest) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

func (d *Digest) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	records, err := d.store.ListAll(ctx, 0)
	if err != nil {
		log.Printf("digest: failed to load records: %v", err)
		return
	}
	stats := analytics.ComputeStats(records)
	msg := fmt.Sprintf("📊 BN9 digest: %d messages, %d users (%d repeat), %d urgent, %d rapid repeats",
		stats.TotalMessages, stats.UniqueUsers, stats.RepeatCustomers, stats.UrgentCount, stats.RepeatedIn15m)
	if err := d.notifier.Notify(ctx, msg); err != nil {
		log.Printf("digest: delivery failed: %v", err)
	}
}
