package radio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrDriverClosed is returned by driver operations after Close.
var ErrDriverClosed = errors.New("radio driver closed")

// Capabilities describes which optional modulation knobs a transceiver
// driver can set. Resolved once when the driver is created; drivers for
// reduced hardware report false for the knobs they cannot touch and
// Configure skips those silently.
type Capabilities struct {
	Bandwidth       bool
	SpreadingFactor bool
	CodingRate      bool
	Preamble        bool
	SyncWord        bool
	CRCControl      bool
	TxPower         bool

	// Receive reports whether the driver can listen at all. TX-only
	// builds leave it false and the tracker skips its receive loop.
	Receive bool
}

// Driver is the transceiver access layer the tracker transmits through.
// Implementations wrap concrete hardware (an SX127x over SPI, a serial
// modem) or a test double; none of them interpret frame contents.
type Driver interface {
	// Configure applies a modulation profile. Knobs the hardware cannot
	// set, per its Capabilities, are skipped rather than failed.
	Configure(p Profile) error

	// Transmit sends one finished frame on the air, unmodified. The
	// frame carries its own FCS; the driver must not add a radio-level
	// CRC when the profile disables it.
	Transmit(ctx context.Context, frame []byte) error

	// Receive blocks until a frame arrives, ctx is done, or the driver
	// is closed.
	Receive(ctx context.Context) ([]byte, error)

	// Capabilities reports the optional knobs this driver supports.
	Capabilities() Capabilities

	Close() error
}

// Radio drives a transceiver through a Driver and tracks the active
// profile. It is the transmit path for finished MeshCom frames.
type Radio struct {
	driver Driver
	logger *log.Logger

	mu      sync.Mutex
	profile Profile
	active  bool
}

// NewRadio wraps a driver. The logger may be nil.
func NewRadio(driver Driver, logger *log.Logger) *Radio {
	return &Radio{
		driver: driver,
		logger: logger,
	}
}

// SetProfile switches the transceiver to the named canonical profile,
// stamping the given transmit power into it.
func (r *Radio) SetProfile(name string, txPowerDbm uint8) error {
	profile, err := ProfileByName(name)
	if err != nil {
		return err
	}
	profile.TxPowerDbm = txPowerDbm
	return r.Apply(profile)
}

// Apply configures the driver with an explicit profile, canonical or
// adjusted (a frequency override, a different power). Knobs the driver
// cannot set are logged once and skipped.
func (r *Radio) Apply(profile Profile) error {
	r.logUnsupported(profile)

	if err := r.driver.Configure(profile); err != nil {
		return fmt.Errorf("configure profile %s: %w", profile.Name, err)
	}

	r.mu.Lock()
	r.profile = profile
	r.active = true
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Printf("Radio profile set: %s, PWR=%d dBm", profile, profile.TxPowerDbm)
	}
	return nil
}

// ActiveProfile returns the profile currently applied, if any.
func (r *Radio) ActiveProfile() (Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile, r.active
}

// Transmit sends one finished frame through the driver.
func (r *Radio) Transmit(ctx context.Context, frame []byte) error {
	return r.driver.Transmit(ctx, frame)
}

// Receive waits for the next inbound frame from the driver.
func (r *Radio) Receive(ctx context.Context) ([]byte, error) {
	return r.driver.Receive(ctx)
}

// Capabilities reports what the underlying driver supports.
func (r *Radio) Capabilities() Capabilities {
	return r.driver.Capabilities()
}

// Close shuts the underlying driver down.
func (r *Radio) Close() error {
	return r.driver.Close()
}

// logUnsupported notes profile knobs the driver cannot apply. The
// profile is still usable; reduced hardware keeps its own defaults for
// those parameters.
func (r *Radio) logUnsupported(p Profile) {
	if r.logger == nil {
		return
	}

	caps := r.driver.Capabilities()
	var skipped []string
	if p.BandwidthHz != 0 && !caps.Bandwidth {
		skipped = append(skipped, "bandwidth")
	}
	if p.SpreadingFactor != 0 && !caps.SpreadingFactor {
		skipped = append(skipped, "spreading factor")
	}
	if p.CodingRate != 0 && !caps.CodingRate {
		skipped = append(skipped, "coding rate")
	}
	if p.PreambleLength != 0 && !caps.Preamble {
		skipped = append(skipped, "preamble")
	}
	if p.SyncWord != 0 && !caps.SyncWord {
		skipped = append(skipped, "sync word")
	}
	if p.DisableCRC && !caps.CRCControl {
		skipped = append(skipped, "CRC control")
	}
	if p.TxPowerDbm != 0 && !caps.TxPower {
		skipped = append(skipped, "TX power")
	}

	for _, knob := range skipped {
		r.logger.Printf("Warning: driver cannot set %s, keeping hardware default", knob)
	}
}
