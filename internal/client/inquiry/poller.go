package inquiry

import (
	"context"
	"time"

	"github.com/example/movequote/internal/client/models"
)

// Subscription is a handle on one running poll loop. Updates carries the
// newest complete snapshot; a slow consumer only ever sees the latest one,
// intermediate snapshots are dropped.
type Subscription struct {
	updates chan []models.MovingInquiry
	cancel  context.CancelFunc
	done    chan struct{}
}

// Updates returns the snapshot channel. It is closed after Stop, or when
// the context passed to StartPolling is cancelled.
func (s *Subscription) Updates() <-chan []models.MovingInquiry {
	return s.updates
}

// Stop cancels the loop and waits for it to finish. Safe to call more
// than once.
func (s *Subscription) Stop() {
	s.cancel()
	<-s.done
}

// StartPolling refreshes the given inquiry rows at a fixed interval and
// publishes each snapshot on the subscription. Cycles are serialized: while
// one fetch is still outstanding, due ticks are dropped rather than queued,
// so a slow backend never piles up concurrent requests. Fetch errors are
// logged and the cycle skipped; polling continues until Stop or context
// cancellation. queryID is used to snapshot results into the local cache
// and may be zero to disable caching.
func (s *Service) StartPolling(ctx context.Context, queryID int64, inquiryIDs []int64, interval time.Duration) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		updates: make(chan []models.MovingInquiry, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.pollLoop(ctx, sub, queryID, inquiryIDs, interval)
	return sub
}

func (s *Service) pollLoop(ctx context.Context, sub *Subscription, queryID int64, inquiryIDs []int64, interval time.Duration) {
	defer close(sub.done)
	defer close(sub.updates)

	// immediate first cycle so the caller is not blind for a full interval
	s.pollOnce(ctx, sub, queryID, inquiryIDs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// the fetch runs on this goroutine, so ticks that fire while
			// it is in flight back up in the ticker and get dropped
			s.pollOnce(ctx, sub, queryID, inquiryIDs)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context, sub *Subscription, queryID int64, inquiryIDs []int64) {
	rows, err := s.FetchInquiries(ctx, inquiryIDs)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn(ctx, "poll cycle failed", "error", err)
		return
	}

	s.snapshotToCache(ctx, queryID, rows)

	// replace a stale unread snapshot instead of blocking on the consumer
	select {
	case <-sub.updates:
	default:
	}
	select {
	case sub.updates <- rows:
	case <-ctx.Done():
	}
}
