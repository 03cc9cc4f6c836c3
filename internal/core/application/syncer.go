package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
)

// syncer debounces writes to the metadata store. Calls landing within the
// same window collapse into a single outbound update carrying the snapshot
// taken at window close, and every collapsed caller observes the result of
// that one write.
type syncer struct {
	store    domain.MetadataStore
	window   time.Duration
	snapshot func() *domain.Snapshot

	mtx     sync.Mutex
	timer   *time.Timer
	waiters []chan error
}

func newSyncer(
	store domain.MetadataStore,
	window time.Duration,
	snapshot func() *domain.Snapshot,
) *syncer {
	return &syncer{
		store:    store,
		window:   window,
		snapshot: snapshot,
	}
}

// Sync schedules a metadata store update and blocks until the write shared
// by all calls of the current window completes.
func (s *syncer) Sync(ctx context.Context) error {
	s.mtx.Lock()
	done := make(chan error, 1)
	s.waiters = append(s.waiters, done)
	if s.timer == nil {
		s.timer = time.AfterFunc(s.window, s.flush)
	}
	s.mtx.Unlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *syncer) flush() {
	s.mtx.Lock()
	waiters := s.waiters
	s.waiters = nil
	s.timer = nil
	s.mtx.Unlock()

	// the snapshot is taken here so the write carries the state as of the
	// window close, never a stale intermediate one
	err := s.store.Update(context.Background(), s.snapshot())
	if err != nil {
		log.WithError(err).Warn("syncer: failed to update wallet metadata")
	}
	for _, done := range waiters {
		done <- err
	}
}
