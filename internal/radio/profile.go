package radio

import (
	"fmt"
	"strings"
)

// Profile is one named set of LoRa modulation parameters. Keeping the
// values together lets the tracker switch between APRS and MeshCom air
// settings without scattering magic numbers.
type Profile struct {
	Name            string
	FrequencyHz     uint32
	BandwidthHz     uint32
	SpreadingFactor uint8
	CodingRate      uint8 // denominator of the 4/x coding rate
	PreambleLength  uint16
	SyncWord        uint8
	TxPowerDbm      uint8 // 0 leaves the hardware default

	// DisableCRC turns off the radio-level payload CRC. MeshCom frames
	// carry their own FCS; a second checksum at the radio layer would
	// conflict with receivers expecting none.
	DisableCRC bool
}

// Canonical European profiles.
var (
	// AprsProfile carries LoRa APRS on 433.775 MHz with the Semtech
	// default 0x12 sync word.
	AprsProfile = Profile{
		Name:            "aprs",
		FrequencyHz:     433_775_000,
		BandwidthHz:     125_000,
		SpreadingFactor: 12,
		CodingRate:      5,
		PreambleLength:  8,
		SyncWord:        0x12,
	}

	// MeshProfile carries MeshCom on 433.175 MHz, mirroring the
	// firmware defaults: 250 kHz bandwidth, SF11, CR 4/6, preamble 32,
	// sync word 0x2B.
	MeshProfile = Profile{
		Name:            "mesh",
		FrequencyHz:     433_175_000,
		BandwidthHz:     250_000,
		SpreadingFactor: 11,
		CodingRate:      6,
		PreambleLength:  32,
		SyncWord:        0x2B,
		DisableCRC:      true,
	}
)

// ProfileByName returns the canonical profile with the given name.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(name) {
	case "aprs":
		return AprsProfile, nil
	case "mesh":
		return MeshProfile, nil
	default:
		return Profile{}, fmt.Errorf("unknown radio profile %q", name)
	}
}

// String returns a compact description for logs.
func (p Profile) String() string {
	return fmt.Sprintf("%s @ %.3f MHz, BW=%d, SF=%d, CR=4/%d",
		p.Name, float64(p.FrequencyHz)/1e6, p.BandwidthHz, p.SpreadingFactor, p.CodingRate)
}
