package meshcom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/dn9apw/meshtrack/internal/codec"
)

// ErrMissingPosition is returned when a position frame is requested
// without both coordinates. A missing coordinate is an error, never a
// zero default: 0/0 is a valid place on the globe.
var ErrMissingPosition = errors.New("latitude and longitude are required")

// Fix is a geographic fix handed to the position encoder. Latitude and
// longitude are signed decimal degrees and both required; nil means "no
// value". Altitude is optional, in meters.
type Fix struct {
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
}

// PositionEncoder builds MeshCom position report frames.
//
// Wire layout:
//
//	'!' + msgID (4 bytes LE) + (maxHop|0x10) + "<SRC>>*!" +
//	"<lat><N|S><table><lon><E|W><code>[/A=ffffff]" + 0x00 + hwID +
//	modID + FCS (2 bytes BE) + fwVersion + hwID + fwSubversion + 0x7E
//
// The encoder owns the message ID source; the rolling sequence counter
// advances exactly once per frame built and only on success.
type PositionEncoder struct {
	ids *codec.MessageIDSource

	SourceCall         string
	Symbol             string // two-character APRS symbol, table then code
	MaxHop             uint8
	HardwareID         uint8
	ModulationID       uint8
	FirmwareVersion    uint8
	FirmwareSubversion uint8
}

// NewPositionEncoder creates an encoder for the given node. The node ID
// text is parsed once and seeds the message ID of every frame built.
// An empty source call falls back to "NOCALL" like the firmware does.
func NewPositionEncoder(nodeID, sourceCall string) *PositionEncoder {
	call := strings.ToUpper(strings.TrimSpace(sourceCall))
	if call == "" {
		call = DefaultSourceCall
	}

	return &PositionEncoder{
		ids:          codec.NewMessageIDSource(nodeID),
		SourceCall:   call,
		Symbol:       DefaultSymbol,
		MaxHop:       DefaultMaxHopPosition,
		HardwareID:   DefaultHardwareID,
		ModulationID: DefaultModulationID,
	}
}

// GatewayID returns the 22-bit gateway ID derived from the node ID.
func (e *PositionEncoder) GatewayID() uint32 {
	return e.ids.GatewayID()
}

// Build renders one position report frame and advances the sequence
// counter by exactly one. A failed build consumes no sequence number.
func (e *PositionEncoder) Build(fix Fix) ([]byte, error) {
	if fix.Latitude == nil || fix.Longitude == nil {
		return nil, ErrMissingPosition
	}

	// The routing path ends with the payload type character.
	path := fmt.Sprintf("%s>*%c", e.SourceCall, PositionFrameStart)
	payload := e.renderPayload(fix)
	if !isASCII(path) || !isASCII(payload) {
		return nil, fmt.Errorf("%w in position frame for %q", ErrNonASCII, e.SourceCall)
	}

	msgID := e.ids.NextMessageID()

	frame := make([]byte, 0, len(path)+len(payload)+15)
	frame = append(frame, PositionFrameStart)
	frame = binary.LittleEndian.AppendUint32(frame, msgID)
	frame = append(frame, e.MaxHop|MeshFlag)
	frame = append(frame, path...)
	frame = append(frame, payload...)
	frame = append(frame, PayloadTerminator)
	frame = append(frame, e.HardwareID)
	frame = append(frame, e.ModulationID)

	// Position frames write the FCS big-endian, unlike text frames.
	frame = binary.BigEndian.AppendUint16(frame, codec.Sum16(frame))

	frame = append(frame, e.FirmwareVersion)
	frame = append(frame, e.HardwareID) // last-hop hardware ID, this node

	subversion := e.FirmwareSubversion
	if subversion == 0 {
		// The firmware encodes a zero subversion as '#', never as a
		// literal zero byte.
		subversion = FirmwareSubversionSentinel
	}
	frame = append(frame, subversion)
	frame = append(frame, PositionFrameEnd)

	return frame, nil
}

// renderPayload builds the APRS-style position string:
// "<lat><N|S><table><lon><E|W><code>" plus "/A=ffffff" when the fix
// carries an altitude.
func (e *PositionEncoder) renderPayload(fix Fix) string {
	table, code := byte('/'), byte('>')
	if len(e.Symbol) > 0 {
		table = e.Symbol[0]
	}
	if len(e.Symbol) > 1 {
		code = e.Symbol[1]
	}

	var b strings.Builder
	b.WriteString(codec.FormatLatitude(*fix.Latitude))
	b.WriteByte(table)
	b.WriteString(codec.FormatLongitude(*fix.Longitude))
	b.WriteByte(code)
	if fix.Altitude != nil {
		b.WriteString(codec.FormatAltitude(*fix.Altitude))
	}
	return b.String()
}
