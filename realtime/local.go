package realtime

import (
	"context"
	"sync"

	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
)

// LocalHub fans changes out inside one process. It is used when no Redis
// address is configured.
type LocalHub struct {
	logger logger.Logger

	mu          sync.Mutex
	nextID      int
	subscribers map[db.Kind]map[int]chan Change
	closed      bool
}

func NewLocalHub(logger logger.Logger) *LocalHub {
	return &LocalHub{
		logger:      logger,
		subscribers: make(map[db.Kind]map[int]chan Change),
	}
}

func (h *LocalHub) Publish(_ context.Context, change Change) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers[change.Kind] {
		select {
		case ch <- change:
		default:
			h.logger.Warn("subscriber is not keeping up, dropping change", "kind", change.Kind, "subscriber", id)
		}
	}

	return nil
}

func (h *LocalHub) Subscribe(_ context.Context, kind db.Kind) (<-chan Change, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}, nil
	}

	id := h.nextID
	h.nextID++
	if h.subscribers[kind] == nil {
		h.subscribers[kind] = make(map[int]chan Change)
	}
	h.subscribers[kind][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subscribers[kind][id]; ok {
			delete(h.subscribers[kind], id)
			close(sub)
		}
	}

	return ch, cancel, nil
}

func (h *LocalHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for kind, subs := range h.subscribers {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(h.subscribers, kind)
	}

	return nil
}
