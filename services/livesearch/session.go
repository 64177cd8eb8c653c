package livesearch

import (
	"context"
	"sync"
	"time"

	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/realtime"
	"github.com/meghashyamc/apotek/services/debounce"
	"github.com/meghashyamc/apotek/services/search"
)

type EventType string

const (
	EventResults      EventType = "results"
	EventColumnFilter EventType = "column_filter"
	EventError        EventType = "error"
)

type Trigger string

const (
	TriggerOpen   Trigger = "open"
	TriggerInput  Trigger = "input"
	TriggerPage   Trigger = "page"
	TriggerChange Trigger = "change"
)

const eventBuffer = 32

type Event struct {
	Type             EventType   `json:"type"`
	Trigger          Trigger     `json:"trigger"`
	Query            string      `json:"query"`
	Page             int         `json:"page"`
	PageSize         int         `json:"page_size"`
	Records          []db.Record `json:"records,omitempty"`
	TotalItems       int         `json:"total_items"`
	TotalPages       int         `json:"total_pages"`
	CreateSuggestion string      `json:"create_suggestion,omitempty"`
	Error            string      `json:"error,omitempty"`
}

// Lister runs the list pipeline for one kind.
type Lister interface {
	List(ctx context.Context, kind db.Kind, query string, page int, pageSize int) (*search.ListResult, error)
}

// Session is one open list view. Keystrokes go through a debouncer and each
// stabilized query, page change or realtime change produces an Event.
type Session struct {
	ID       string
	Kind     db.Kind
	PageSize int

	logger    logger.Logger
	lister    Lister
	debouncer *debounce.Debouncer
	events    chan Event

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}

	// runMu makes each pipeline run and its event delivery atomic.
	runMu sync.Mutex

	mu       sync.Mutex
	query    string
	page     int
	lastSeen time.Time
	watchers int
	closed   bool
}

func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Input feeds the raw content of the search box.
func (s *Session) Input(raw string) {
	s.touch()
	s.debouncer.Push(raw)
}

// ShowPage lists another page of the current query.
func (s *Session) ShowPage(page int) {
	s.touch()

	s.mu.Lock()
	s.page = page
	query := s.query
	s.mu.Unlock()

	if debounce.IsColumnFilter(query) {
		return
	}
	s.run(TriggerPage, query, page)
}

// Watch marks the session as streamed. Watched sessions are never reaped.
func (s *Session) Watch() func() {
	s.mu.Lock()
	s.watchers++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.watchers--
			s.lastSeen = time.Now()
			s.mu.Unlock()
		})
	}
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchers > 0 {
		return 0, false
	}
	return now.Sub(s.lastSeen), true
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) start(changes <-chan realtime.Change) {
	s.run(TriggerOpen, "", 1)

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				s.logger.Debug("refreshing live session", "session_id", s.ID, "kind", change.Kind, "op", change.Op)
				s.refresh()
			}
		}
	}()
}

// onStable receives debounced queries. A new query always starts at page 1.
func (s *Session) onStable(query string) {
	s.mu.Lock()
	s.query = query
	s.page = 1
	s.mu.Unlock()

	if debounce.IsColumnFilter(query) {
		s.publish(Event{Type: EventColumnFilter, Trigger: TriggerInput, Query: query, Page: 1, PageSize: s.PageSize})
		return
	}
	s.run(TriggerInput, query, 1)
}

func (s *Session) refresh() {
	s.mu.Lock()
	query, page := s.query, s.page
	s.mu.Unlock()

	if debounce.IsColumnFilter(query) {
		return
	}
	s.run(TriggerChange, query, page)
}

func (s *Session) run(trigger Trigger, query string, page int) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	result, err := s.lister.List(s.ctx, s.Kind, query, page, s.PageSize)
	if err != nil {
		s.logger.Error("live search failed", "session_id", s.ID, "kind", s.Kind, "err", err.Error())
		s.publish(Event{Type: EventError, Trigger: trigger, Query: query, Page: page, PageSize: s.PageSize, Error: err.Error()})
		return
	}

	s.publish(Event{
		Type:             EventResults,
		Trigger:          trigger,
		Query:            result.Query,
		Page:             page,
		PageSize:         s.PageSize,
		Records:          result.Records,
		TotalItems:       result.TotalItems,
		TotalPages:       result.TotalPages,
		CreateSuggestion: result.CreateSuggestion,
	})
}

func (s *Session) publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.events <- event:
	default:
		s.logger.Warn("live session event buffer full, dropping event", "session_id", s.ID, "type", event.Type)
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	s.cancel()
	s.unsubscribe()
	<-s.done
}
