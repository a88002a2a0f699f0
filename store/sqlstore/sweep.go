package sqlstore

import (
	"context"
	"sync"
	"time"
)

// Sweep deletes the region's expired rows and reports how many went.
// Reads already skip expired rows; sweeping only reclaims space.
func (s *Store[V]) Sweep(ctx context.Context, region string) (int64, error) {
	table, err := s.ensureTable(ctx, region)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, sweepSQL(s.d, table), s.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartSweeper sweeps every region this store has touched once per
// interval until ctx is done or stop is called. stop waits for the
// goroutine to exit.
func (s *Store[V]) StartSweeper(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Minute
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepAll(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}

func (s *Store[V]) sweepAll(ctx context.Context) {
	s.tables.Range(func(_, v any) bool {
		if ctx.Err() != nil {
			return false
		}
		region := v.(string)
		if _, err := s.Sweep(ctx, region); err != nil && ctx.Err() == nil && s.onSweepErr != nil {
			s.onSweepErr(region, err)
		}
		return true
	})
}
