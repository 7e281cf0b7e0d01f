package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PacketRepository provides database operations for logged packets
type PacketRepository struct {
	db *gorm.DB
}

// NewPacketRepository creates a new repository instance
func NewPacketRepository(db *gorm.DB) *PacketRepository {
	return &PacketRepository{db: db}
}

// Insert stores one packet record
func (r *PacketRepository) Insert(record *PacketRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	if !record.IsValid() {
		return fmt.Errorf("record is not valid: direction=%s, kind=%s, length=%d",
			record.Direction, record.Kind, record.FrameLength)
	}

	// Sanitize fields
	record.SanitizeCalls()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	return r.db.Create(record).Error
}

// Recent returns the newest records, most recent first
func (r *PacketRepository) Recent(limit int) ([]PacketRecord, error) {
	var records []PacketRecord
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// BySource returns records from one source callsign, most recent first
func (r *PacketRepository) BySource(callsign string, limit int) ([]PacketRecord, error) {
	var records []PacketRecord
	err := r.db.Where("source = ?", callsign).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Count returns the total number of logged packets
func (r *PacketRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&PacketRecord{}).Count(&count).Error
	return count, err
}

// CountSince returns the number of packets logged after the specified time
func (r *PacketRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&PacketRecord{}).
		Where("created_at > ?", since).
		Count(&count).Error
	return count, err
}

// CountByDirection returns the number of packets logged for one direction
func (r *PacketRepository) CountByDirection(direction string) (int64, error) {
	var count int64
	err := r.db.Model(&PacketRecord{}).
		Where("direction = ?", direction).
		Count(&count).Error
	return count, err
}

// PruneOlderThan deletes records created before the cutoff and returns
// how many were removed
func (r *PacketRepository) PruneOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&PacketRecord{})
	return result.RowsAffected, result.Error
}

// DeleteAll removes all packet records from the database
func (r *PacketRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&PacketRecord{}).Error
}

// GetStatistics returns basic database statistics
func (r *PacketRepository) GetStatistics() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Total count
	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	stats["total_packets"] = count

	// Most recent record
	var latest PacketRecord
	err = r.db.Order("created_at DESC").First(&latest).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err != gorm.ErrRecordNotFound {
		stats["last_packet"] = latest.CreatedAt
	}

	// Per-kind distribution
	var kindStats []struct {
		Kind  string `json:"kind"`
		Count int    `json:"count"`
	}
	err = r.db.Model(&PacketRecord{}).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Order("count DESC").
		Find(&kindStats).Error
	if err != nil {
		return nil, err
	}
	stats["kinds"] = kindStats

	return stats, nil
}

// HealthCheck verifies the repository is working correctly
func (r *PacketRepository) HealthCheck() error {
	// Try a simple query
	var count int64
	return r.db.Model(&PacketRecord{}).Count(&count).Error
}
