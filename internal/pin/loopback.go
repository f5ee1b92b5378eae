package pin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Loopback is a process-local pin pair connecting a writer directly to a
// reader, with no real hardware involved - the "test doubles (channel,
// dummy pin)" component of spec.md's component table. Level changes wake
// any in-progress edge wait via a self-pipe polled with unix.Poll, the
// standard Unix way to wake a blocked poll/select from another
// goroutine without a busy loop.
type Loopback struct {
	level int32 // 0 or 1, read/written atomically

	mu       sync.Mutex
	rfd, wfd int
}

// NewLoopbackPair returns one Loopback pin as both tx and rx: writes
// through tx are observed as level changes and edges through rx because
// they are the same instance.
func NewLoopbackPair() (tx *Loopback, rx *Loopback, err error) {
	l, err := newLoopback()
	if err != nil {
		return nil, nil, err
	}
	return l, l, nil
}

// NewLoopback returns a single Loopback pin whose writer and reader sides
// are the same instance - useful for unit tests that drive SetHigh/SetLow
// and assert on WaitForRisingEdge/WaitForFallingEdge directly.
func NewLoopback() (*Loopback, error) { return newLoopback() }

func newLoopback() (*Loopback, error) {
	fds, err := unix.Pipe2(unix.O_NONBLOCK | unix.O_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Loopback{rfd: fds[0], wfd: fds[1]}, nil
}

// Close releases the self-pipe file descriptors.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err1 := unix.Close(l.rfd)
	err2 := unix.Close(l.wfd)
	if err1 != nil {
		return err1
	}
	return err2
}

func (l *Loopback) IsHigh() bool { return atomic.LoadInt32(&l.level) != 0 }

func (l *Loopback) SetHigh() { l.setLevel(1) }
func (l *Loopback) SetLow()  { l.setLevel(0) }

func (l *Loopback) setLevel(v int32) {
	if atomic.SwapInt32(&l.level, v) == v {
		return
	}
	l.wake()
}

// wake writes a single byte to the self-pipe, nudging any blocked Poll.
// Waiters drain the pipe; if it is full the write fails and is ignored,
// since an unread byte is already pending.
func (l *Loopback) wake() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var buf [1]byte
	_, _ = unix.Write(l.wfd, buf[:])
}

func (l *Loopback) drain() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var buf [64]byte
	for {
		n, err := unix.Read(l.rfd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

// WaitForRisingEdge blocks until the level transitions to high, or ctx is
// done.
func (l *Loopback) WaitForRisingEdge(ctx context.Context) error {
	return l.waitForLevel(ctx, 1)
}

// WaitForFallingEdge blocks until the level transitions to low, or ctx is
// done.
func (l *Loopback) WaitForFallingEdge(ctx context.Context) error {
	return l.waitForLevel(ctx, 0)
}

// waitForLevel blocks for an actual transition to want, matching
// edge-triggered semantics: being already at the target level does not
// satisfy the wait.
func (l *Loopback) waitForLevel(ctx context.Context, want int32) error {
	prev := atomic.LoadInt32(&l.level)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.drain()

		cur := atomic.LoadInt32(&l.level)
		if cur == want && cur != prev {
			return nil
		}
		prev = cur

		if err := l.pollOnce(ctx); err != nil {
			return err
		}
	}
}

// pollOnce waits (via unix.Poll on the self-pipe read end) for either a
// wake-up or the context deadline, whichever comes first.
func (l *Loopback) pollOnce(ctx context.Context) error {
	timeoutMs := -1
	if dl, ok := ctx.Deadline(); ok {
		remaining := int(time.Until(dl) / time.Millisecond)
		if remaining < 0 {
			remaining = 0
		}
		timeoutMs = remaining
	}

	fds := []unix.PollFd{{Fd: int32(l.rfd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, pollChunk(timeoutMs))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if n > 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if timeoutMs == 0 {
			return ctx.Err()
		}
	}
}

// pollChunk caps any single poll wait so a cancelled context is noticed
// promptly even when the caller set no deadline.
func pollChunk(timeoutMs int) int {
	const maxChunkMs = 50
	if timeoutMs < 0 || timeoutMs > maxChunkMs {
		return maxChunkMs
	}
	return timeoutMs
}
