package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cagebase/cagebase/internal/database"
	"github.com/cagebase/cagebase/internal/services"
)

// ReconciliationJob orchestrates the matcher and synchronizer over every
// unlinked perspective record. Records are processed independently by a
// worker pool; a failure on one record is counted, never fatal to the batch.
type ReconciliationJob struct {
	db           *gorm.DB
	perspectives *database.PerspectiveStore
	matcher      *services.Matcher
	synchronizer *services.Synchronizer
	workers      int
	sampleLimit  int
}

// NewReconciliationJob creates a reconciliation job. workers and sampleLimit
// fall back to sensible defaults when non-positive.
func NewReconciliationJob(db *gorm.DB, matcher *services.Matcher, synchronizer *services.Synchronizer, workers, sampleLimit int) *ReconciliationJob {
	if workers <= 0 {
		workers = 4
	}
	if sampleLimit <= 0 {
		sampleLimit = 10
	}
	return &ReconciliationJob{
		db:           db,
		perspectives: database.NewPerspectiveStore(db),
		matcher:      matcher,
		synchronizer: synchronizer,
		workers:      workers,
		sampleLimit:  sampleLimit,
	}
}

// Run executes one reconciliation batch. In dry-run mode intended links are
// reported without writing anything.
func (j *ReconciliationJob) Run(ctx context.Context, dryRun bool) (*services.ReconcileStats, error) {
	started := time.Now()

	recs, err := j.perspectives.Unlinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unlinked perspectives: %w", err)
	}

	stats := &services.ReconcileStats{DryRun: dryRun}
	var mu sync.Mutex

	work := make(chan database.PerspectiveRecord)
	var wg sync.WaitGroup
	for w := 0; w < j.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range work {
				j.process(ctx, rec, dryRun, stats, &mu)
			}
		}()
	}
	for _, rec := range recs {
		work <- rec
	}
	close(work)
	wg.Wait()

	stats.Duration = time.Since(started)

	run := &database.ReconciliationRun{
		DryRun:     dryRun,
		Processed:  stats.Processed,
		Linked:     stats.Linked,
		Ambiguous:  stats.Ambiguous,
		Unmatched:  stats.Unmatched,
		Errors:     stats.Errors,
		DurationMs: stats.Duration.Milliseconds(),
		StartedAt:  started,
	}
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		log.Printf("Failed to record reconciliation run: %v", err)
	}

	log.Printf("Reconciliation run finished (dry-run=%v): processed=%d linked=%d ambiguous=%d unmatched=%d errors=%d",
		dryRun, stats.Processed, stats.Linked, stats.Ambiguous, stats.Unmatched, stats.Errors)
	return stats, nil
}

// process handles one record. Panics are contained so a malformed record can
// never abort the batch.
func (j *ReconciliationJob) process(ctx context.Context, rec database.PerspectiveRecord, dryRun bool, stats *services.ReconcileStats, mu *sync.Mutex) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while reconciling perspective %s: %v", rec.UUID, r)
			mu.Lock()
			stats.Processed++
			stats.Errors++
			j.sample(&stats.ErrorSamples, fmt.Sprintf("%s: panic: %v", rec.UUID, r))
			mu.Unlock()
		}
	}()

	outcome, err := j.matcher.Match(ctx, &rec)

	mu.Lock()
	defer mu.Unlock()
	stats.Processed++

	if err != nil {
		stats.Errors++
		j.sample(&stats.ErrorSamples, fmt.Sprintf("%s: %v", rec.UUID, err))
		return
	}

	switch outcome.Status {
	case services.MatchStatusMatched:
		if dryRun {
			stats.Linked++
			j.sample(&stats.IntendedLinks, fmt.Sprintf("%s -> %s (tier %s, similarity %.2f)",
				rec.UUID, outcome.FightUUID, outcome.Tier, outcome.Similarity))
			return
		}
		if _, err := j.synchronizer.Link(ctx, &rec, outcome.Fight, outcome.Tier, outcome.Similarity); err != nil {
			stats.Errors++
			j.sample(&stats.ErrorSamples, fmt.Sprintf("%s: link failed: %v", rec.UUID, err))
			return
		}
		stats.Linked++
	case services.MatchStatusAmbiguous:
		stats.Ambiguous++
		j.sample(&stats.AmbiguousSamples, fmt.Sprintf("%s: %s", rec.UUID, outcome.Reason))
	default:
		stats.Unmatched++
	}
}

// sample appends to a bounded operator-facing sample list
func (j *ReconciliationJob) sample(list *[]string, entry string) {
	if len(*list) < j.sampleLimit {
		*list = append(*list, entry)
	}
}

// Start runs reconciliation on a fixed interval until stop closes
func (j *ReconciliationJob) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(context.Background(), false); err != nil {
				log.Printf("Reconciliation job error: %v", err)
			}
		case <-stop:
			log.Println("Reconciliation job stopped")
			return
		}
	}
}
