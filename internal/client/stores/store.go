package stores

import (
	"context"
	"sync"
)

// Snapshot is the observable view of a store.
type Snapshot[S any] struct {
	State   S
	Loading bool
	Err     string
}

// Store is a state container with change notification. Subscribers always
// see the most recent snapshot; intermediate ones may be skipped.
type Store[S any] struct {
	mu       sync.Mutex
	snap     Snapshot[S]
	inflight int
	gens     map[string]uint64
	subs     map[int]chan Snapshot[S]
	nextSub  int
}

func New[S any](initial S) *Store[S] {
	return &Store[S]{
		snap: Snapshot[S]{State: initial},
		gens: map[string]uint64{},
		subs: map[int]chan Snapshot[S]{},
	}
}

func (s *Store[S]) Get() Snapshot[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe returns a channel that receives a snapshot after every change.
// The channel holds at most one pending snapshot, the latest.
func (s *Store[S]) Subscribe() (<-chan Snapshot[S], func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot[S], 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Update mutates the state directly, outside of any action.
func (s *Store[S]) Update(fn func(*S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap.State)
	s.publishLocked()
}

// publishLocked replaces whatever snapshot a subscriber has not read yet.
func (s *Store[S]) publishLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.snap
	}
}

type ticket struct {
	key string
	gen uint64
}

func (s *Store[S]) begin(key string) ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[key]++
	s.inflight++
	s.snap.Loading = true
	s.publishLocked()
	return ticket{key: key, gen: s.gens[key]}
}

// finish applies fn when t is still the latest call for its key and ctx is
// live. Loading is cleared once no action is in flight.
func (s *Store[S]) finish(ctx context.Context, t ticket, fn func(*Snapshot[S])) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
	s.snap.Loading = s.inflight > 0

	applied := ctx.Err() == nil && s.gens[t.key] == t.gen
	if applied {
		fn(&s.snap)
	}
	s.publishLocked()
	return applied
}

// Run executes call as the action key. On success apply receives the
// result; on failure the error message is stored. Stale or cancelled
// completions are dropped, but the result is still returned to the caller.
func Run[S, R any](ctx context.Context, s *Store[S], key string, call func(context.Context) (R, error), apply func(*S, R)) (R, error) {
	t := s.begin(key)
	res, err := call(ctx)

	s.finish(ctx, t, func(snap *Snapshot[S]) {
		if err != nil {
			snap.Err = err.Error()
			return
		}
		snap.Err = ""
		if apply != nil {
			apply(&snap.State, res)
		}
	})
	return res, err
}

// Exec is Run for calls without a result.
func Exec[S any](ctx context.Context, s *Store[S], key string, call func(context.Context) error, apply func(*S)) error {
	_, err := Run(ctx, s, key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, call(ctx)
	}, func(st *S, _ struct{}) {
		if apply != nil {
			apply(st)
		}
	})
	return err
}
