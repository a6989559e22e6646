package host

import (
	"sync"
	"time"
)

// Group is a Scheduler that remembers every live registration made through
// it so they can be released together with StopAll. Once stopped, the group
// refuses new registrations.
type Group struct {
	parent Scheduler

	mu      sync.Mutex
	live    map[*groupHandle]struct{}
	stopped bool
}

// NewGroup creates a group scheduling on parent.
func NewGroup(parent Scheduler) *Group {
	return &Group{
		parent: parent,
		live:   make(map[*groupHandle]struct{}),
	}
}

// AfterFunc runs fn once after d.
func (g *Group) AfterFunc(d time.Duration, fn func()) Handle {
	return g.track(func(h *groupHandle) Handle {
		return g.parent.AfterFunc(d, func() {
			g.forget(h)
			fn()
		})
	})
}

// Every runs fn every d until stopped.
func (g *Group) Every(d time.Duration, fn func()) Handle {
	return g.track(func(*groupHandle) Handle {
		return g.parent.Every(d, fn)
	})
}

// RequestFrame runs fn once on the next animation frame.
func (g *Group) RequestFrame(fn func(now time.Time)) Handle {
	return g.track(func(h *groupHandle) Handle {
		return g.parent.RequestFrame(func(now time.Time) {
			g.forget(h)
			fn(now)
		})
	})
}

// Post runs fn as soon as possible.
func (g *Group) Post(fn func()) Handle {
	return g.track(func(h *groupHandle) Handle {
		return g.parent.Post(func() {
			g.forget(h)
			fn()
		})
	})
}

// Now returns the parent scheduler's time.
func (g *Group) Now() time.Time {
	return g.parent.Now()
}

// Adopt tracks a registration made elsewhere, such as a pointer listener,
// so StopAll releases it too. A closed group stops h right away.
func (g *Group) Adopt(h Handle) Handle {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		h.Stop()
		return stoppedHandle{}
	}
	gh := &groupHandle{group: g, inner: h}
	g.live[gh] = struct{}{}
	g.mu.Unlock()
	return gh
}

// Live returns the number of registrations that have neither fired nor
// been stopped.
func (g *Group) Live() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

// StopAll stops every live registration and closes the group.
// It returns how many registrations were still live.
func (g *Group) StopAll() int {
	g.mu.Lock()
	handles := make([]*groupHandle, 0, len(g.live))
	for h := range g.live {
		handles = append(handles, h)
	}
	g.live = make(map[*groupHandle]struct{})
	g.stopped = true
	g.mu.Unlock()

	n := 0
	for _, h := range handles {
		if h.inner.Stop() {
			n++
		}
	}
	return n
}

func (g *Group) track(register func(h *groupHandle) Handle) Handle {
	h := &groupHandle{group: g}

	// Registration never runs a callback synchronously, so holding the lock
	// across it is safe and keeps StopAll from seeing a half-built handle.
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return stoppedHandle{}
	}
	g.live[h] = struct{}{}
	h.inner = register(h)
	return h
}

func (g *Group) forget(h *groupHandle) {
	g.mu.Lock()
	delete(g.live, h)
	g.mu.Unlock()
}

type groupHandle struct {
	group *Group
	inner Handle
}

func (h *groupHandle) Stop() bool {
	h.group.forget(h)
	return h.inner.Stop()
}

// stoppedHandle is handed out by a closed group.
type stoppedHandle struct{}

func (stoppedHandle) Stop() bool { return false }
