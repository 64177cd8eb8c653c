package livesearch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/realtime"
	"github.com/meghashyamc/apotek/services/debounce"
)

const minSweepInterval = 10 * time.Millisecond

type Manager struct {
	logger  logger.Logger
	lister  Lister
	hub     realtime.Hub
	options debounce.Options
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	stopOnce   sync.Once
	reaperStop chan struct{}
	reaperDone chan struct{}
}

// NewManager starts a reaper that closes sessions idle for longer than ttl.
func NewManager(logger logger.Logger, lister Lister, hub realtime.Hub, options debounce.Options, ttl time.Duration) *Manager {
	m := &Manager{
		logger:     logger,
		lister:     lister,
		hub:        hub,
		options:    options,
		ttl:        ttl,
		sessions:   make(map[string]*Session),
		reaperStop: make(chan struct{}),
		reaperDone: make(chan struct{}),
	}

	go m.reap(max(ttl/2, minSweepInterval))
	return m
}

// Open starts a session on kind and emits the unfiltered first page.
func (m *Manager) Open(ctx context.Context, kind db.Kind, pageSize int) (*Session, error) {
	changes, unsubscribe, err := m.hub.Subscribe(ctx, kind)
	if err != nil {
		m.logger.Error("could not subscribe live session to changes", "kind", kind, "err", err.Error())
		return nil, fmt.Errorf("failed to subscribe to %s changes: %w", kind, err)
	}

	sessionCtx, cancel := context.WithCancel(context.Background())
	session := &Session{
		ID:          uuid.New().String(),
		Kind:        kind,
		PageSize:    pageSize,
		logger:      m.logger,
		lister:      m.lister,
		events:      make(chan Event, eventBuffer),
		ctx:         sessionCtx,
		cancel:      cancel,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
		page:        1,
		lastSeen:    time.Now(),
	}
	session.debouncer = debounce.New(m.options, session.onStable)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	session.start(changes)
	m.logger.Info("opened live session", "session_id", session.ID, "kind", kind, "page_size", pageSize)

	return session, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	session.close()
	m.logger.Info("closed live session", "session_id", id)
	return true
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops the reaper and closes every session.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() {
		close(m.reaperStop)
		<-m.reaperDone
	})

	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Close(id)
	}
}

func (m *Manager) reap(interval time.Duration) {
	defer close(m.reaperDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.reaperStop:
			return
		case now := <-ticker.C:
			for _, id := range m.idleSessions(now) {
				m.logger.Info("reaping idle live session", "session_id", id)
				m.Close(id)
			}
		}
	}
}

func (m *Manager) idleSessions(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var idle []string
	for id, session := range m.sessions {
		if since, ok := session.idleSince(now); ok && since > m.ttl {
			idle = append(idle, id)
		}
	}
	return idle
}
