package sheetimport

import (
	"log/slog"

	"github.com/dmitrymomot/eventmail/pkg/cache"
)

// Registry keeps one Wizard per console session. The least recently used
// wizard is dropped once capacity is reached.
type Registry struct {
	wizards *cache.LRU[string, *Wizard]
	log     *slog.Logger
}

func NewRegistry(capacity int, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		wizards: cache.NewLRU[string, *Wizard](capacity),
		log:     log,
	}
	r.wizards.OnEvict(func(id string, _ *Wizard) {
		r.log.Debug("wizard evicted", slog.String("session_id", id))
	})
	return r
}

// Get returns the session's wizard, creating it at Input if needed.
func (r *Registry) Get(sessionID string) *Wizard {
	return r.wizards.GetOrCreate(sessionID, func() *Wizard { return New(r.log) })
}

// Drop forgets the session's wizard. A step still running on it finishes
// against the dropped wizard and is not seen again.
func (r *Registry) Drop(sessionID string) {
	if r.wizards.Remove(sessionID) {
		r.log.Debug("wizard dropped",
			slog.String("session_id", sessionID),
			slog.Int("active", r.wizards.Len()),
		)
	}
}
