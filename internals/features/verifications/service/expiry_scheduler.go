// file: internals/features/verifications/service/expiry_scheduler.go
package service

import (
	"context"
	"log"
	"time"
)

type Sweeper interface {
	Variant() string
	ExpireStale(ctx context.Context, ttl time.Duration, batch int) (int64, error)
}

// ExpiryScheduler moves stale active verifications to expired on an interval.
// TTL <= 0 berarti fitur mati (default).
type ExpiryScheduler struct {
	Sweepers []Sweeper
	TTL      time.Duration
	Interval time.Duration
	Batch    int
}

func (s *ExpiryScheduler) Enabled() bool {
	return s.TTL > 0 && len(s.Sweepers) > 0
}

// RunOnce sweeps every variant once and returns the number of expired records.
func (s *ExpiryScheduler) RunOnce(ctx context.Context) int64 {
	var total int64
	for _, sw := range s.Sweepers {
		n, err := sw.ExpireStale(ctx, s.TTL, s.Batch)
		total += n
		if err != nil {
			log.Printf("[CLEANUP ERROR] expire %s verifications: %v", sw.Variant(), err)
			continue
		}
		if n > 0 {
			log.Printf("[CLEANUP] %d %s verification(s) expired", n, sw.Variant())
		}
	}
	return total
}

// Start runs the sweep loop until ctx is cancelled.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		log.Println("[CLEANUP] verification expiry disabled (VERIFICATION_TTL_HOURS=0)")
		return
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			s.RunOnce(ctx)
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] verification expiry stopped")
				return
			case <-ticker.C:
			}
		}
	}()
}
