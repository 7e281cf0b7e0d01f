package radio

import (
	"context"
	"sync"
)

// Loopback is an in-memory Driver: every transmitted frame comes back
// out of Receive in order. It backs tests and the dry-run mode of the
// tracker binary, where frames must flow without hardware attached.
type Loopback struct {
	frames chan []byte
	done   chan struct{}
	once   sync.Once

	mu       sync.Mutex
	profile  Profile
	hasProf  bool
	txFrames int
}

// NewLoopback creates a loopback driver buffering up to depth frames.
func NewLoopback(depth int) *Loopback {
	if depth <= 0 {
		depth = 16
	}
	return &Loopback{
		frames: make(chan []byte, depth),
		done:   make(chan struct{}),
	}
}

// Configure records the profile so tests can inspect what was applied.
func (l *Loopback) Configure(p Profile) error {
	select {
	case <-l.done:
		return ErrDriverClosed
	default:
	}

	l.mu.Lock()
	l.profile = p
	l.hasProf = true
	l.mu.Unlock()
	return nil
}

// Transmit queues a copy of the frame for Receive.
func (l *Loopback) Transmit(ctx context.Context, frame []byte) error {
	buf := append([]byte(nil), frame...)

	select {
	case <-l.done:
		return ErrDriverClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.frames <- buf:
		l.mu.Lock()
		l.txFrames++
		l.mu.Unlock()
		return nil
	}
}

// Receive returns the next queued frame.
func (l *Loopback) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-l.done:
		return nil, ErrDriverClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-l.frames:
		return frame, nil
	}
}

// Capabilities reports full support; the loopback has no hardware to
// limit it.
func (l *Loopback) Capabilities() Capabilities {
	return Capabilities{
		Bandwidth:       true,
		SpreadingFactor: true,
		CodingRate:      true,
		Preamble:        true,
		SyncWord:        true,
		CRCControl:      true,
		TxPower:         true,
		Receive:         true,
	}
}

// Close shuts the loopback down. Blocked Transmit and Receive calls
// return ErrDriverClosed.
func (l *Loopback) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

// AppliedProfile returns the last profile passed to Configure.
func (l *Loopback) AppliedProfile() (Profile, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile, l.hasProf
}

// TransmitCount returns how many frames were queued so far.
func (l *Loopback) TransmitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.txFrames
}
