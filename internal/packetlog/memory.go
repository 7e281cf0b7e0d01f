package packetlog

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMemoryCapacity is the ring size used when none is given.
const DefaultMemoryCapacity = 256

// MemoryRecorder keeps the newest packet entries in a fixed-size ring.
// When the ring is full the oldest entry is overwritten. Used when the
// database is disabled, and always cheap enough to leave on.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	count   int
	txCount int64
	rxCount int64
}

// NewMemoryRecorder creates a ring recorder holding up to capacity
// entries. A capacity of zero or less selects DefaultMemoryCapacity.
func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRecorder{
		entries: make([]Entry, capacity),
	}
}

// Record stores one packet entry, overwriting the oldest when full
func (m *MemoryRecorder) Record(entry Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	// Keep a private copy of the frame bytes
	entry.Raw = append([]byte(nil), entry.Raw...)
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = entry
	m.next = (m.next + 1) % len(m.entries)
	if m.count < len(m.entries) {
		m.count++
	}

	switch entry.Direction {
	case DirectionTx:
		m.txCount++
	case DirectionRx:
		m.rxCount++
	}

	return nil
}

// Recent returns the newest entries, most recent first
func (m *MemoryRecorder) Recent(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.count
	if limit >= 0 && limit < n {
		n = limit
	}

	result := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		result = append(result, m.entries[idx])
	}

	return result, nil
}

// Counts returns how many entries were recorded per direction. The
// totals keep growing after old ring slots are overwritten.
func (m *MemoryRecorder) Counts() (tx, rx int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCount, m.rxCount, nil
}

// Len returns the number of entries currently held in the ring
func (m *MemoryRecorder) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Capacity returns the ring size
func (m *MemoryRecorder) Capacity() int {
	return len(m.entries)
}

// Close releases recorder resources; a no-op for the memory ring
func (m *MemoryRecorder) Close() error {
	return nil
}

func validateEntry(entry Entry) error {
	okDirection := entry.Direction == DirectionTx || entry.Direction == DirectionRx
	okKind := entry.Kind == KindText || entry.Kind == KindPosition
	if !okDirection || !okKind || len(entry.Raw) == 0 {
		return fmt.Errorf("entry is not valid: direction=%s, kind=%s, length=%d",
			entry.Direction, entry.Kind, len(entry.Raw))
	}
	return nil
}
