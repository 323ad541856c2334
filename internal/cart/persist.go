package cart

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// scheduleLocked (re)arms the single pending write. Caller holds s.mu.
func (s *Store) scheduleLocked() {
	if s.degraded || s.closed {
		return
	}
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		s.persist(ctx)
	})
}

// persist writes the current state if a write is pending. An empty cart
// removes the record instead of storing an empty mapping.
func (s *Store) persist(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.pending || s.degraded {
		s.mu.Unlock()
		return
	}
	s.pending = false
	empty := len(s.order) == 0
	payload, err := encodeItems(s.items, s.order)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return
	}

	if empty {
		err = s.kv.Delete(ctx, s.key)
	} else {
		err = s.kv.Set(ctx, s.key, payload)
	}
	if err != nil {
		s.mu.Lock()
		s.degraded = true
		s.mu.Unlock()
		s.logger.Warn("cart storage write failed, running memory-only",
			zap.String("key", s.key), zap.Error(err))
		return
	}
	if empty {
		s.logger.Debug("cart record removed", zap.String("key", s.key))
		return
	}
	s.logger.Debug("cart persisted", zap.Int("bytes", len(payload)))
}

// Flush cancels the pending timer and writes pending state now
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// Close flushes and stops scheduling writes. Later mutations stay in memory.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Flush(ctx)
	return nil
}
