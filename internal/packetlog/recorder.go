package packetlog

import "time"

// Entry directions and kinds.
const (
	DirectionTx = "tx"
	DirectionRx = "rx"

	KindText     = "text"
	KindPosition = "position"
)

// Entry describes one transmitted or received MeshCom frame for the
// packet log. Raw holds the complete on-air frame including markers
// and FCS.
type Entry struct {
	Time        time.Time
	Direction   string
	Kind        string
	MessageID   uint32
	Source      string
	Destination string
	Payload     string
	Raw         []byte
	ChecksumOK  bool
}

// Recorder defines the interface for packet audit logging
// This interface can be implemented by both memory-backed and database-backed recorders
type Recorder interface {
	// Record stores one packet entry
	Record(entry Entry) error

	// Recent returns the newest entries, most recent first
	Recent(limit int) ([]Entry, error)

	// Counts returns how many entries were recorded per direction
	Counts() (tx, rx int64, err error)

	// Close releases recorder resources
	Close() error
}
