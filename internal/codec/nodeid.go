package codec

import (
	"strconv"
	"strings"
	"sync"
)

// Bit layout of a MeshCom message ID: the low 22 bits of the gateway
// node ID sit above a 10-bit rolling sequence.
const (
	GatewayIDMask = 0x3FFFFF // 22-bit gateway ID
	SequenceMask  = 0x3FF    // 10-bit rolling sequence
	SequenceBits  = 10
)

// ParseNodeID interprets a node identifier supplied as text. A
// case-insensitive "0x" prefix selects base 16, anything else is parsed
// as base 10. Malformed input yields 0; callers that must detect a
// misconfigured node ID have to validate the text before handing it in,
// since 0 is also a representable ID.
func ParseNodeID(text string) uint32 {
	digits := strings.TrimSpace(text)
	base := 10
	if len(digits) >= 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		base = 16
		digits = digits[2:]
	}

	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0
	}
	return uint32(value & 0xFFFFFFFF)
}

// ComposeMessageID packs a gateway ID and a sequence value into the
// 32-bit message ID carried on the wire. Out-of-range inputs are masked
// to their field widths, not rejected.
func ComposeMessageID(gatewayID uint32, sequence uint16) uint32 {
	return (gatewayID&GatewayIDMask)<<SequenceBits | uint32(sequence&SequenceMask)
}

// MessageIDSource issues message IDs for outgoing position frames. It
// owns the rolling sequence counter, which lives for the process
// lifetime and restarts at 0 with the process; message ID collisions
// across restarts are a property of the format and are not corrected.
type MessageIDSource struct {
	mu        sync.Mutex
	gatewayID uint32
	sequence  uint16
}

// NewMessageIDSource creates a message ID source for the given node.
// The node ID text is parsed once; its low 22 bits become the gateway
// ID portion of every issued message ID.
func NewMessageIDSource(nodeID string) *MessageIDSource {
	return &MessageIDSource{
		gatewayID: ParseNodeID(nodeID) & GatewayIDMask,
	}
}

// GatewayID returns the 22-bit gateway ID this source was built with.
func (s *MessageIDSource) GatewayID() uint32 {
	return s.gatewayID
}

// NextSequence returns the current sequence value and advances the
// counter, wrapping from 1023 back to 0.
func (s *MessageIDSource) NextSequence() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.sequence & SequenceMask
	s.sequence = (value + 1) & SequenceMask
	return value
}

// NextMessageID issues the next 32-bit message ID, advancing the
// sequence counter by exactly one.
func (s *MessageIDSource) NextMessageID() uint32 {
	return ComposeMessageID(s.gatewayID, s.NextSequence())
}
