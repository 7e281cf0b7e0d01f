package meshcom

// MeshCom 2.0 wire format constants.

const (
	// Frame markers
	TextFrameStart     = ':'  // payload type byte opening a text message frame
	PositionFrameStart = '!'  // payload type byte opening a position report frame
	TextFrameEnd       = '#'  // closing byte of a text frame
	PositionFrameEnd   = 0x7E // closing byte of a position frame
	PayloadTerminator  = 0x00 // separates the ASCII payload from the trailer

	// Hop control byte layout
	MaxHopMask = 0x07 // low 3 bits carry the hop count on text frames
	MeshFlag   = 0x10 // bit 4 marks mesh routing on position frames

	// MinTextFrameLength is the shortest buffer the text frame parser
	// accepts: all fixed fields plus a minimal routing payload.
	MinTextFrameLength = 15
)

// Defaults matching the MeshCom firmware configuration.
const (
	DefaultMaxHopText     = 5
	DefaultMaxHopPosition = 2
	DefaultHardwareID     = 4    // common BOARD_HARDWARE value
	DefaultModulationID   = 3    // SF11 / CR 4/6 / BW 250 kHz
	DefaultSymbol         = "/>" // APRS car symbol
	DefaultSourceCall     = "NOCALL"

	// FirmwareSubversionSentinel replaces a zero firmware subversion on
	// the wire. The firmware never emits a literal zero in that field;
	// keep the substitution for byte-exact interop.
	FirmwareSubversionSentinel = 0x23 // '#'
)
