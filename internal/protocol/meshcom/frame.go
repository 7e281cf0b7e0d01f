package meshcom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dn9apw/meshtrack/internal/codec"
)

// Parse and build failure reasons. Parse errors are values a receive
// loop can match with errors.Is and drop; a radio channel routinely
// delivers foreign or corrupted frames, so none of these should ever
// abort the caller.
var (
	ErrFrameTooShort  = errors.New("frame too short")
	ErrBadStartMarker = errors.New("bad start marker")
	ErrBadEndMarker   = errors.New("bad end marker")
	ErrNoTerminator   = errors.New("payload terminator not found")
	ErrNonASCII       = errors.New("non-ASCII text")
)

// TextFrame is a MeshCom 2.0 text message frame.
//
// Wire layout:
//
//	':' + msgID (4 bytes LE) + hop byte + "<SRC>><DEST>:<TEXT>" +
//	0x00 + hwID + modID + FCS (2 bytes LE) + '#'
//
// The FCS is the plain byte sum over everything before it, written
// little-endian. Position frames write theirs big-endian; both
// reference firmwares do it this way, so the asymmetry is part of the
// format and must not be normalized.
type TextFrame struct {
	MessageID    uint32
	MaxHop       uint8 // low 3 bits only
	Source       string
	Dest         string
	Text         string
	HardwareID   uint8
	ModulationID uint8

	// Fields filled in by Parse.
	RoutingPayload string // "<SRC>><DEST>:<TEXT>" as received
	Checksum       uint16 // FCS as received

	// ChecksumOK reports whether the received FCS matches the byte sum.
	// The reference receiver never verifies the FCS, so a mismatch does
	// not fail the parse; callers decide whether to drop the frame.
	ChecksumOK bool
}

// Build assembles the on-air byte sequence for the frame. Source, dest
// and text must be ASCII. MaxHop is masked to 3 bits the same way the
// firmware does it; out-of-range values are truncated, not rejected.
func (f *TextFrame) Build() ([]byte, error) {
	routing := fmt.Sprintf("%s>%s:%s", f.Source, f.Dest, f.Text)
	if !isASCII(routing) {
		return nil, fmt.Errorf("%w in routing payload %q", ErrNonASCII, routing)
	}

	frame := make([]byte, 0, len(routing)+12)
	frame = append(frame, TextFrameStart)
	frame = binary.LittleEndian.AppendUint32(frame, f.MessageID)
	frame = append(frame, f.MaxHop&MaxHopMask)
	frame = append(frame, routing...)
	frame = append(frame, PayloadTerminator)
	frame = append(frame, f.HardwareID)
	frame = append(frame, f.ModulationID)
	frame = binary.LittleEndian.AppendUint16(frame, codec.Sum16(frame))
	frame = append(frame, TextFrameEnd)

	return frame, nil
}

// Parse decodes a received text frame. It never reads past the buffer
// and never panics on malformed input; the returned error wraps one of
// the sentinel reasons above.
func (f *TextFrame) Parse(data []byte) error {
	if len(data) < MinTextFrameLength {
		return fmt.Errorf("%w: got %d bytes, need %d", ErrFrameTooShort, len(data), MinTextFrameLength)
	}
	if data[0] != TextFrameStart {
		return fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrBadStartMarker, data[0], TextFrameStart)
	}
	if data[len(data)-1] != TextFrameEnd {
		return fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrBadEndMarker, data[len(data)-1], TextFrameEnd)
	}

	// Locate the payload terminator. It must leave room behind it for
	// the hardware ID, modulation ID, FCS and end marker.
	term := -1
	for i := 6; i <= len(data)-6; i++ {
		if data[i] == PayloadTerminator {
			term = i
			break
		}
	}
	if term < 0 {
		return ErrNoTerminator
	}

	f.MessageID = binary.LittleEndian.Uint32(data[1:5])
	f.MaxHop = data[5] & MaxHopMask
	f.RoutingPayload = decodeASCII(data[6:term])
	f.HardwareID = data[term+1]
	f.ModulationID = data[term+2]
	f.Checksum = binary.LittleEndian.Uint16(data[term+3 : term+5])
	f.ChecksumOK = f.Checksum == codec.Sum16(data[:term+3])

	f.Source, f.Dest, f.Text = splitRouting(f.RoutingPayload)

	return nil
}

// splitRouting splits "<SRC>><DEST>:<TEXT>" into its parts. A payload
// that does not follow the grammar yields empty strings; the raw
// routing payload stays available on the frame either way.
func splitRouting(routing string) (source, dest, text string) {
	gt := strings.IndexByte(routing, '>')
	if gt < 0 {
		return "", "", ""
	}
	colon := strings.IndexByte(routing[gt+1:], ':')
	if colon < 0 {
		return "", "", ""
	}
	colon += gt + 1
	return routing[:gt], routing[gt+1:colon], routing[colon+1:]
}

// decodeASCII decodes bytes as ASCII, substituting the Unicode
// replacement character for anything outside the 7-bit range instead of
// failing the whole parse.
func decodeASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c > 0x7F {
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// isASCII reports whether s contains only 7-bit ASCII bytes.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}
