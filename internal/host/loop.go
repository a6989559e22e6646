// Package host provides the runtime a trial is hosted in: a cooperative event
// loop with timeouts, intervals and animation frames, a trial-scoped timer
// group, and the display container canvases are mounted into.
package host

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Handle is returned by every registration on a Scheduler.
// Stop guarantees the callback will not run afterwards, even when it is
// already due on the current tick. It reports whether the registration was
// still active.
type Handle interface {
	Stop() bool
}

// Scheduler registers callbacks on the host event loop. All callbacks run on
// the loop goroutine, one at a time.
type Scheduler interface {
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Handle

	// Every runs fn every d until stopped.
	Every(d time.Duration, fn func()) Handle

	// RequestFrame runs fn once on the next animation frame.
	RequestFrame(fn func(now time.Time)) Handle

	// Post runs fn as soon as possible.
	Post(fn func()) Handle

	// Now returns the loop's current time.
	Now() time.Time
}

// DefaultFrameRate is the animation frame rate used when none is configured.
const DefaultFrameRate = 60

// Loop is a single-goroutine scheduler. In real mode Run drives it against
// the wall clock; in manual mode Advance drives it against virtual time.
type Loop struct {
	mu      sync.Mutex
	queue   taskQueue
	seq     uint64
	virtual time.Time
	manual  bool
	origin  time.Time
	frame   time.Duration
	wake    chan struct{}
	inspect sync.Mutex // held while a callback runs
}

// NewLoop creates a wall-clock loop producing frameRate frames per second.
func NewLoop(frameRate int) *Loop {
	l := newLoop(frameRate)
	l.origin = time.Now()
	return l
}

// NewManualLoop creates a loop whose clock only moves through Advance.
// Useful for deterministic tests.
func NewManualLoop(frameRate int, start time.Time) *Loop {
	l := newLoop(frameRate)
	l.manual = true
	l.virtual = start
	l.origin = start
	return l
}

func newLoop(frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &Loop{
		frame: time.Second / time.Duration(frameRate),
		wake:  make(chan struct{}, 1),
	}
}

// FrameInterval returns the duration between animation frames.
func (l *Loop) FrameInterval() time.Duration {
	return l.frame
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nowLocked()
}

func (l *Loop) nowLocked() time.Time {
	if l.manual {
		return l.virtual
	}
	return time.Now()
}

// AfterFunc runs fn once after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	return l.schedule(max(d, 0), 0, fn)
}

// Every runs fn every d until stopped. Non-positive intervals are clamped to
// one frame to avoid spinning.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		d = l.frame
	}
	return l.schedule(d, d, fn)
}

// Post runs fn as soon as possible, after tasks already due.
func (l *Loop) Post(fn func()) Handle {
	return l.schedule(0, 0, fn)
}

// RequestFrame runs fn once at the next frame boundary.
func (l *Loop) RequestFrame(fn func(now time.Time)) Handle {
	l.mu.Lock()
	now := l.nowLocked()
	elapsed := now.Sub(l.origin)
	next := l.origin.Add((elapsed/l.frame + 1) * l.frame)
	t := l.pushLocked(next, 0, nil)
	t.fn = func() { fn(t.at) }
	l.mu.Unlock()

	l.notify()
	return t
}

func (l *Loop) schedule(delay, interval time.Duration, fn func()) Handle {
	l.mu.Lock()
	t := l.pushLocked(l.nowLocked().Add(delay), interval, fn)
	l.mu.Unlock()

	l.notify()
	return t
}

func (l *Loop) pushLocked(at time.Time, interval time.Duration, fn func()) *task {
	l.seq++
	t := &task{loop: l, at: at, seq: l.seq, interval: interval, fn: fn, index: -1}
	heap.Push(&l.queue, t)
	return t
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of registrations still waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// Inspect runs fn while no loop callback is executing. Other goroutines use
// it to read state owned by the loop, such as canvases. Calling Inspect from
// a loop callback deadlocks.
func (l *Loop) Inspect(fn func()) {
	l.inspect.Lock()
	defer l.inspect.Unlock()
	fn()
}

// Advance moves virtual time forward by d, running every callback that
// becomes due in deadline order. Only valid for manual loops.
func (l *Loop) Advance(d time.Duration) {
	l.mu.Lock()
	if !l.manual {
		l.mu.Unlock()
		panic("host: Advance called on a wall-clock loop")
	}
	target := l.virtual.Add(d)
	l.mu.Unlock()

	for {
		l.mu.Lock()
		t := l.popDueLocked(target)
		if t == nil {
			l.virtual = target
			l.mu.Unlock()
			return
		}
		if t.at.After(l.virtual) {
			l.virtual = t.at
		}
		l.mu.Unlock()

		l.execute(t)
	}
}

// Run processes callbacks against the wall clock until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.manual {
		l.mu.Unlock()
		panic("host: Run called on a manual loop")
	}
	l.mu.Unlock()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		l.mu.Lock()
		t := l.popDueLocked(time.Now())
		wait := time.Hour
		if t == nil && l.queue.Len() > 0 {
			wait = time.Until(l.queue[0].at)
		}
		l.mu.Unlock()

		if t != nil {
			l.execute(t)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		timer.Reset(max(wait, 0))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
}

// popDueLocked removes and returns the earliest live task due at or before
// limit, discarding stopped tasks on the way.
func (l *Loop) popDueLocked(limit time.Time) *task {
	for l.queue.Len() > 0 {
		next := l.queue[0]
		if next.stopped {
			heap.Pop(&l.queue)
			continue
		}
		if next.at.After(limit) {
			return nil
		}
		heap.Pop(&l.queue)
		return next
	}
	return nil
}

// execute runs a popped task and re-arms it if it repeats and was not
// stopped by its own callback.
func (l *Loop) execute(t *task) {
	l.inspect.Lock()
	t.fn()
	l.inspect.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if t.interval > 0 && !t.stopped {
		t.at = t.at.Add(t.interval)
		l.seq++
		t.seq = l.seq
		heap.Push(&l.queue, t)
		return
	}
	t.stopped = true
}

// task is a single registration on the loop.
type task struct {
	loop     *Loop
	at       time.Time
	seq      uint64
	interval time.Duration
	fn       func()
	index    int
	stopped  bool
}

// Stop cancels the task. Stopping a repeating task from inside its own
// callback prevents it from being re-armed.
func (t *task) Stop() bool {
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	if t.index >= 0 {
		heap.Remove(&l.queue, t.index)
	}
	return true
}

// taskQueue orders tasks by deadline, then by registration order.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
