package daemon

import (
	"log/slog"
	"sync"
)

type release struct {
	name string
	fn   func()
}

// releaseStack records how to undo each acquisition and undoes them in
// reverse order, once.
type releaseStack struct {
	mu    sync.Mutex
	items []release
	once  sync.Once
}

func (s *releaseStack) push(name string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, release{name: name, fn: fn})
}

func (s *releaseStack) unwind(logger *slog.Logger) {
	s.once.Do(func() {
		s.mu.Lock()
		items := s.items
		s.items = nil
		s.mu.Unlock()

		for i := len(items) - 1; i >= 0; i-- {
			r := items[i]
			func() {
				defer func() {
					if p := recover(); p != nil {
						logger.Error("daemon: release panicked", "resource", r.name, "panic", p)
					}
				}()
				r.fn()
			}()
			logger.Debug("daemon: released", "resource", r.name)
		}
	})
}
