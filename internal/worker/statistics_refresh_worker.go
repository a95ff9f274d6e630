// Package worker runs background jobs fed by Redis lists.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/model"
)

// Queue is the subset of the Redis client the worker pops from.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
}

// StatisticsWarmer recomputes and caches a person's statistics without reading the cache.
type StatisticsWarmer interface {
	RefreshStatistics(ctx context.Context, personID string) model.Statistics
}

// StatisticsRefreshWorker consumes statistics_refresh_queue and warms the statistics
// cache of every person whose links changed.
type StatisticsRefreshWorker struct {
	queue  Queue
	warmer StatisticsWarmer
	log    zerolog.Logger
}

// NewStatisticsRefreshWorker creates a new StatisticsRefreshWorker.
func NewStatisticsRefreshWorker(queue Queue, warmer StatisticsWarmer, log zerolog.Logger) *StatisticsRefreshWorker {
	return &StatisticsRefreshWorker{
		queue:  queue,
		warmer: warmer,
		log:    log.With().Str("component", "statistics_refresh_worker").Logger(),
	}
}

// Start begins the worker loop and returns when ctx is cancelled. Call in a goroutine.
func (w *StatisticsRefreshWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.drain(drainCtx)
			cancel()
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *StatisticsRefreshWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.queue.BLPop(ctx, time.Second, config.WorkerKey.StatisticsRefreshQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}

	if len(result) < 2 || result[1] == "" {
		return
	}
	w.refresh(ctx, result[1])
}

func (w *StatisticsRefreshWorker) refresh(ctx context.Context, personID string) {
	stats := w.warmer.RefreshStatistics(ctx, personID)
	w.log.Debug().
		Str("person_id", personID).
		Int("schools_count", stats.SchoolsCount).
		Msg("Statistics refreshed")
}

// drain refreshes what is left in the queue before shutdown.
func (w *StatisticsRefreshWorker) drain(ctx context.Context) {
	drained := 0
	for ctx.Err() == nil {
		personID, err := w.queue.LPop(ctx, config.WorkerKey.StatisticsRefreshQueue).Result()
		if err != nil {
			break
		}
		w.refresh(ctx, personID)
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
