package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
)

type recordingRepo struct {
	mu      sync.Mutex
	calls   []string
	active  map[string]int
	overlap bool
	fail    string
}

func (r *recordingRepo) ForTour(context.Context, string) ([]domain.Review, error) {
	return nil, nil
}

func (r *recordingRepo) RecalculateRatings(_ context.Context, tourID string) (domain.RatingSummary, error) {
	r.mu.Lock()
	r.active[tourID]++
	if r.active[tourID] > 1 {
		r.overlap = true
	}
	r.mu.Unlock()

	time.Sleep(time.Millisecond)

	r.mu.Lock()
	r.active[tourID]--
	r.calls = append(r.calls, tourID)
	r.mu.Unlock()

	if tourID == r.fail {
		return domain.RatingSummary{}, errors.New("boom")
	}
	return domain.RatingSummary{TourID: tourID}, nil
}

func TestRatingDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewRatingDispatcher(8, &recordingRepo{}, zerolog.Nop())
	for _, id := range []string{"a", "tour-1", "5c88fa8cf4afda39709c2955"} {
		first := d.shardIndex(id)
		for i := 0; i < 10; i++ {
			if got := d.shardIndex(id); got != first {
				t.Fatalf("shard for %s moved from %d to %d", id, first, got)
			}
		}
		if first < 0 || first >= 8 {
			t.Fatalf("shard %d out of range", first)
		}
	}
}

func TestRatingDispatcher_ProcessesEveryJobAndDrainsOnShutdown(t *testing.T) {
	repo := &recordingRepo{active: map[string]int{}, fail: "t2"}
	d := NewRatingDispatcher(3, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	tours := []string{"t1", "t2", "t3", "t1", "t1", "t4", "t3"}
	for _, id := range tours {
		d.Enqueue(id)
	}
	d.Enqueue("")

	cancel()
	d.Wait()

	if len(repo.calls) != len(tours) {
		t.Fatalf("expected %d recalculations, got %d: %v", len(tours), len(repo.calls), repo.calls)
	}
	if repo.overlap {
		t.Fatalf("recalculations for the same tour ran concurrently")
	}
}

func TestRatingDispatcher_DefaultWorkers(t *testing.T) {
	d := NewRatingDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
