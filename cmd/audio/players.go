package audio

import "sync"

// Players is the set of engines owned by one host window. The host stops
// them all on shutdown.
type Players struct {
	mu      sync.Mutex
	engines []*Engine
}

func (p *Players) Add(e *Engine) *Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engines = append(p.engines, e)
	return e
}

func (p *Players) All() []*Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Engine(nil), p.engines...)
}

// ByRole returns the first engine with role r, or nil.
func (p *Players) ByRole(r Role) *Engine {
	for _, e := range p.All() {
		if e.Role() == r {
			return e
		}
	}
	return nil
}

// StopAll requests every engine to stop without waiting.
func (p *Players) StopAll() {
	for _, e := range p.All() {
		e.Stop()
	}
}

// Close stops every engine, waits for their goroutines, and forgets them.
func (p *Players) Close() {
	for _, e := range p.All() {
		e.Close()
	}
	p.mu.Lock()
	p.engines = nil
	p.mu.Unlock()
}
