package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/api/metrics"
	"github.com/natours/booking-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	jobTimeout     = 10 * time.Second
)

// RatingDispatcher routes rating recalculations to a fixed set of workers
// using consistent hashing on the tour id, so recalculations for one tour run
// in enqueue order and never concurrently.
type RatingDispatcher struct {
	workers []chan string
	repo    ports.ReviewRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewRatingDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRatingDispatcher(numWorkers int, repo ports.ReviewRepository, log zerolog.Logger) *RatingDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &RatingDispatcher{
		workers: make([]chan string, numWorkers),
		repo:    repo,
		log:     log.With().Str("component", "rating_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches the workers. They drain their queues and exit once ctx is
// cancelled; Wait blocks until they have.
func (d *RatingDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *RatingDispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue schedules a recalculation for tourID. Blocks only when the worker's
// buffer is full.
func (d *RatingDispatcher) Enqueue(tourID string) {
	if tourID == "" {
		return
	}
	i := d.shardIndex(tourID)
	d.workers[i] <- tourID
	metrics.RatingQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a tour id deterministically to a worker index.
func (d *RatingDispatcher) shardIndex(tourID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tourID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *RatingDispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case tourID := <-ch:
			metrics.RatingQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(context.Background(), id, tourID)
		}
	}
}

// drain finishes work already queued at shutdown.
func (d *RatingDispatcher) drain(id int, ch <-chan string) {
	for {
		select {
		case tourID := <-ch:
			d.process(context.Background(), id, tourID)
		default:
			return
		}
	}
}

func (d *RatingDispatcher) process(ctx context.Context, id int, tourID string) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	summary, err := d.repo.RecalculateRatings(ctx, tourID)
	metrics.RatingRecalculationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RatingRecalculationsTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("tour_id", tourID).
			Int("worker_id", id).
			Msg("rating recalculation failed")
		return
	}
	metrics.RatingRecalculationsTotal.WithLabelValues("success").Inc()
	d.log.Debug().
		Str("tour_id", tourID).
		Float64("average", summary.Average).
		Int("quantity", summary.Quantity).
		Msg("ratings recalculated")
}
