package packetlog

import (
	"log"

	"github.com/dn9apw/meshtrack/internal/database"
)

// DatabaseRecorder provides a database-backed implementation of the Recorder interface
// This allows drop-in replacement of the memory ring with a persistent packet log
type DatabaseRecorder struct {
	repository   *database.PacketRepository
	debugEnabled bool
}

// NewDatabaseRecorder creates a new database-backed packet recorder
func NewDatabaseRecorder(repository *database.PacketRepository) *DatabaseRecorder {
	return &DatabaseRecorder{repository: repository}
}

// SetDebug enables or disables debug logging
func (d *DatabaseRecorder) SetDebug(enabled bool) {
	d.debugEnabled = enabled
}

// Record stores one packet entry
func (d *DatabaseRecorder) Record(entry Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	record := toRecord(entry)
	if err := d.repository.Insert(record); err != nil {
		d.logDebug("insert failed for %s %s frame: %v", entry.Direction, entry.Kind, err)
		return err
	}

	d.logDebug("logged %s", record)
	return nil
}

// Recent returns the newest entries, most recent first
func (d *DatabaseRecorder) Recent(limit int) ([]Entry, error) {
	records, err := d.repository.Recent(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(records))
	for i, record := range records {
		entries[i] = toEntry(record)
	}
	return entries, nil
}

// Counts returns how many entries were recorded per direction
func (d *DatabaseRecorder) Counts() (tx, rx int64, err error) {
	tx, err = d.repository.CountByDirection(database.DirectionTx)
	if err != nil {
		return 0, 0, err
	}
	rx, err = d.repository.CountByDirection(database.DirectionRx)
	if err != nil {
		return 0, 0, err
	}
	return tx, rx, nil
}

// Close releases recorder resources. The database connection itself is
// owned by the caller that opened it.
func (d *DatabaseRecorder) Close() error {
	return nil
}

// logDebug logs debug messages if debug is enabled
func (d *DatabaseRecorder) logDebug(format string, args ...interface{}) {
	if d.debugEnabled {
		log.Printf("DatabaseRecorder: "+format, args...)
	}
}

// toRecord converts a log entry into its database row
func toRecord(entry Entry) *database.PacketRecord {
	return &database.PacketRecord{
		CreatedAt:   entry.Time,
		Direction:   entry.Direction,
		Kind:        entry.Kind,
		MessageID:   entry.MessageID,
		Source:      entry.Source,
		Destination: entry.Destination,
		Payload:     entry.Payload,
		Raw:         append([]byte(nil), entry.Raw...),
		FrameLength: len(entry.Raw),
		ChecksumOK:  entry.ChecksumOK,
	}
}

// toEntry converts a database row back into a log entry
func toEntry(record database.PacketRecord) Entry {
	return Entry{
		Time:        record.CreatedAt,
		Direction:   record.Direction,
		Kind:        record.Kind,
		MessageID:   record.MessageID,
		Source:      record.Source,
		Destination: record.Destination,
		Payload:     record.Payload,
		Raw:         record.Raw,
		ChecksumOK:  record.ChecksumOK,
	}
}
