package resilience

import "sync"

// Outcome is the settled result of one flight.
type Outcome struct {
	Val    any
	Err    error
	Shared bool
}

// Group deduplicates concurrent calls for the same key.
type Group[K comparable] struct {
	// Launch starts a flight in the background for DoChan. When nil a plain
	// goroutine is used.
	Launch func(task func()) error

	mu    sync.Mutex
	calls map[K]*call
}

type call struct {
	val   any
	err   error
	dups  int
	chans []chan<- Outcome
}

// DoChan runs fn once per key among concurrent callers without blocking. The
// returned channel is buffered, so callers may drop it without leaking the
// flight.
func (g *Group[K]) DoChan(key K, fn func() (any, error)) <-chan Outcome {
	ch := make(chan Outcome, 1)

	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[K]*call)
	}

	if c, ok := g.calls[key]; ok {
		c.dups++
		c.chans = append(c.chans, ch)
		g.mu.Unlock()
		return ch
	}

	c := &call{chans: []chan<- Outcome{ch}}
	g.calls[key] = c
	g.mu.Unlock()

	task := func() { g.run(key, c, fn) }
	if g.Launch == nil || g.Launch(task) != nil {
		go task()
	}
	return ch
}

// InFlight reports how many flights are currently running.
func (g *Group[K]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *Group[K]) run(key K, c *call, fn func() (any, error)) {
	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	chans := c.chans
	shared := c.dups > 0
	g.mu.Unlock()

	for _, ch := range chans {
		ch <- Outcome{Val: c.val, Err: c.err, Shared: shared}
	}
}
