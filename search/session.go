package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/resources"
)

// Response is delivered once per settled query that is still current
type Response struct {
	Seq      uint64
	Term     string
	Listings []resources.Listing
	Err      error
}

// Session couples a debouncer with the store. Responses that arrive
// after a newer query was issued are dropped, so a slow early search
// can never overwrite the results of a later one.
type Session struct {
	store   Store
	deliver func(Response)
	deb     *Debouncer
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	latest atomic.Uint64
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	// deliverMu serializes deliver; delivered is the highest seq handed out
	deliverMu sync.Mutex
	delivered uint64
}

// NewSession starts a search session; deliver runs on a worker goroutine
func NewSession(ctx context.Context, store Store, delay time.Duration, deliver func(Response), logger zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		store:   store,
		deliver: deliver,
		log:     logger.With().Str("component", "search").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.deb = NewDebouncer(delay, s.run)
	return s
}

// Type feeds a keystroke into the debouncer
func (s *Session) Type(term string) {
	s.deb.Type(term)
}

// Submit skips the quiet period, e.g. when the user presses enter
func (s *Session) Submit(term string) {
	s.deb.Type(term)
	s.deb.Flush()
}

// Close stops the debouncer, cancels in-flight searches and waits for them
func (s *Session) Close() {
	s.deb.Stop()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Session) run(q Query) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.latest.Store(q.Seq)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		listings, err := Run(s.ctx, s.store, q.Term)
		if err != nil && s.ctx.Err() != nil {
			return
		}

		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		if q.Seq < s.latest.Load() || q.Seq <= s.delivered {
			s.log.Debug().Uint64("seq", q.Seq).Str("term", q.Term).Msg("dropping stale search response")
			return
		}
		if err != nil {
			s.log.Error().Err(err).Str("term", q.Term).Msg("search failed")
		}
		s.delivered = q.Seq
		s.deliver(Response{Seq: q.Seq, Term: q.Term, Listings: listings, Err: err})
	}()
}
