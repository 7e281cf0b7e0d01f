package database

import (
	"fmt"
	"strings"
	"time"
)

// Packet directions and kinds stored in PacketRecord.
const (
	DirectionTx = "tx"
	DirectionRx = "rx"

	KindText     = "text"
	KindPosition = "position"
)

// PacketRecord represents one transmitted or received MeshCom frame
type PacketRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	Direction   string    `gorm:"size:2;index" json:"direction"`
	Kind        string    `gorm:"size:10" json:"kind"`
	MessageID   uint32    `gorm:"index" json:"message_id"`
	Source      string    `gorm:"size:20;index" json:"source"`
	Destination string    `gorm:"size:20" json:"destination"`
	Payload     string    `gorm:"size:255" json:"payload"`
	Raw         []byte    `json:"raw"`
	FrameLength int       `json:"frame_length"`
	ChecksumOK  bool      `json:"checksum_ok"`
}

// TableName specifies the table name for GORM
func (PacketRecord) TableName() string {
	return "packets"
}

// String returns a formatted string representation
func (p PacketRecord) String() string {
	result := fmt.Sprintf("%s %s #%d", strings.ToUpper(p.Direction), p.Kind, p.MessageID)

	if p.Source != "" {
		result += fmt.Sprintf(" %s", p.Source)
		if p.Destination != "" {
			result += fmt.Sprintf(">%s", p.Destination)
		}
	}

	result += fmt.Sprintf(" (%d bytes)", p.FrameLength)

	if !p.ChecksumOK {
		result += " [bad FCS]"
	}

	return result
}

// IsValid checks if the record has required fields
func (p PacketRecord) IsValid() bool {
	okDirection := p.Direction == DirectionTx || p.Direction == DirectionRx
	okKind := p.Kind == KindText || p.Kind == KindPosition
	return okDirection && okKind && p.FrameLength > 0
}

// SanitizeCalls cleans up the source and destination callsign formats
func (p *PacketRecord) SanitizeCalls() {
	p.Source = strings.ToUpper(strings.TrimSpace(p.Source))
	p.Destination = strings.ToUpper(strings.TrimSpace(p.Destination))
}
