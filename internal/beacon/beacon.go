package beacon

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dn9apw/meshtrack/internal/packetlog"
	"github.com/dn9apw/meshtrack/internal/protocol/meshcom"
	"github.com/dn9apw/meshtrack/internal/radio"
)

// Config holds the beacon schedule and text message settings
type Config struct {
	// Position beacon: Rate applies while the node is moving,
	// Keepalive while it sits still, MinDistance decides which is
	// which.
	Rate        time.Duration
	Keepalive   time.Duration
	MinDistance float64 // meters

	// Periodic text message. An empty TextMessage disables it.
	TextMessage     string
	TextDestination string
	TextInterval    time.Duration
	TextMaxHop      uint8

	// Frame trailer identity for text frames.
	HardwareID   uint8
	ModulationID uint8
}

// Beacon periodically transmits position and text frames and parses
// whatever the radio hears back
type Beacon struct {
	config   Config
	radio    *radio.Radio
	encoder  *meshcom.PositionEncoder
	fixes    FixSource
	recorder packetlog.Recorder
	logger   *log.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	running        bool
	textCounter    uint32
	lastPositionTx time.Time
	lastLat        float64
	lastLon        float64
	hasLastFix     bool
}

// New creates a beacon. The encoder is required; fixes may be nil for
// nodes without a position, recorder and logger may be nil.
func New(cfg Config, r *radio.Radio, encoder *meshcom.PositionEncoder, fixes FixSource, recorder packetlog.Recorder, logger *log.Logger) *Beacon {
	if cfg.Rate <= 0 {
		cfg.Rate = 15 * time.Second
	}
	if cfg.Keepalive <= 0 {
		cfg.Keepalive = 300 * time.Second
	}
	if cfg.TextInterval <= 0 {
		cfg.TextInterval = 15 * time.Second
	}
	if cfg.TextDestination == "" {
		cfg.TextDestination = "*"
	}

	return &Beacon{
		config:   cfg,
		radio:    r,
		encoder:  encoder,
		fixes:    fixes,
		recorder: recorder,
		logger:   logger,

		// The text message counter starts at 1; zero never goes on air
		textCounter: 1,
	}
}

// Start launches the beacon goroutines. They run until the context is
// cancelled or Stop is called.
func (b *Beacon) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("beacon already running")
	}
	b.running = true
	b.mu.Unlock()

	ctx, b.cancel = context.WithCancel(ctx)

	workers := 0
	if b.fixes != nil {
		b.wg.Add(1)
		go b.positionLoop(ctx)
		workers++
	} else if b.logger != nil {
		b.logger.Printf("No fix source configured, position beaconing disabled")
	}

	if b.config.TextMessage != "" {
		b.wg.Add(1)
		go b.textLoop(ctx)
		workers++
	}

	if b.radio.Capabilities().Receive {
		b.wg.Add(1)
		go b.receiveLoop(ctx)
		workers++
	}

	if b.logger != nil {
		b.logger.Printf("Beacon started: %d worker goroutines", workers)
	}
	return nil
}

// Stop shuts the beacon down and waits for its goroutines to finish
func (b *Beacon) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	if b.logger != nil {
		b.logger.Printf("Beacon stopped")
	}
}

// positionLoop transmits position beacons on the smart beacon schedule
func (b *Beacon) positionLoop(ctx context.Context) {
	defer b.wg.Done()

	// First beacon goes out right away
	b.sendPosition(ctx)

	ticker := time.NewTicker(b.config.Rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if b.positionDue(now) {
				b.sendPosition(ctx)
			}
		}
	}
}

// positionDue applies the smart beacon rules: a node that moved at
// least MinDistance since the last report beacons at Rate, a
// stationary one falls back to the Keepalive interval.
func (b *Beacon) positionDue(now time.Time) bool {
	fix, ok := b.fixes.CurrentFix()
	if !ok || fix.Latitude == nil || fix.Longitude == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastPositionTx.IsZero() {
		return true
	}
	if b.hasLastFix && DistanceMeters(b.lastLat, b.lastLon, *fix.Latitude, *fix.Longitude) >= b.config.MinDistance {
		return true
	}
	return now.Sub(b.lastPositionTx) >= b.config.Keepalive
}

func (b *Beacon) sendPosition(ctx context.Context) {
	fix, ok := b.fixes.CurrentFix()
	if !ok {
		return
	}

	frame, err := b.encoder.Build(fix)
	if err != nil {
		if b.logger != nil {
			b.logger.Printf("Position frame build failed: %v", err)
		}
		return
	}

	if err := b.radio.Transmit(ctx, frame); err != nil {
		if ctx.Err() == nil && b.logger != nil {
			b.logger.Printf("Position TX error: %v", err)
		}
		return
	}

	msgID := binary.LittleEndian.Uint32(frame[1:5])
	if b.logger != nil {
		b.logger.Printf("TX position #%d: len=%d bytes  hex=%.80s", msgID, len(frame), hex.EncodeToString(frame))
	}

	b.mu.Lock()
	b.lastPositionTx = time.Now()
	if fix.Latitude != nil && fix.Longitude != nil {
		b.lastLat = *fix.Latitude
		b.lastLon = *fix.Longitude
		b.hasLastFix = true
	}
	b.mu.Unlock()

	b.record(packetlog.Entry{
		Direction:   packetlog.DirectionTx,
		Kind:        packetlog.KindPosition,
		MessageID:   msgID,
		Source:      b.encoder.SourceCall,
		Destination: "*",
		Payload:     routingText(frame),
		Raw:         frame,
		ChecksumOK:  true,
	})
}

// textLoop transmits the configured text message on a fixed interval
func (b *Beacon) textLoop(ctx context.Context) {
	defer b.wg.Done()

	b.sendText(ctx)

	ticker := time.NewTicker(b.config.TextInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sendText(ctx)
		}
	}
}

func (b *Beacon) sendText(ctx context.Context) {
	frame := meshcom.TextFrame{
		MessageID:    b.nextTextID(),
		MaxHop:       b.config.TextMaxHop,
		Source:       b.encoder.SourceCall,
		Dest:         b.config.TextDestination,
		Text:         b.config.TextMessage,
		HardwareID:   b.config.HardwareID,
		ModulationID: b.config.ModulationID,
	}

	data, err := frame.Build()
	if err != nil {
		if b.logger != nil {
			b.logger.Printf("Text frame build failed: %v", err)
		}
		return
	}

	if err := b.radio.Transmit(ctx, data); err != nil {
		if ctx.Err() == nil && b.logger != nil {
			b.logger.Printf("Text TX error: %v", err)
		}
		return
	}

	if b.logger != nil {
		b.logger.Printf("TX text #%d: len=%d bytes  hex=%.80s", frame.MessageID, len(data), hex.EncodeToString(data))
	}

	b.record(packetlog.Entry{
		Direction:   packetlog.DirectionTx,
		Kind:        packetlog.KindText,
		MessageID:   frame.MessageID,
		Source:      frame.Source,
		Destination: frame.Dest,
		Payload:     frame.Text,
		Raw:         data,
		ChecksumOK:  true,
	})
}

func (b *Beacon) nextTextID() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.textCounter
	b.textCounter++
	return id
}

// receiveLoop parses inbound buffers from the radio
func (b *Beacon) receiveLoop(ctx context.Context) {
	defer b.wg.Done()

	for {
		data, err := b.radio.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, radio.ErrDriverClosed) {
				return
			}
			if b.logger != nil {
				b.logger.Printf("RX error: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		b.handleInbound(data)
	}
}

// handleInbound parses one received buffer. Anything that does not
// parse as a text frame is logged and dropped; inbound traffic never
// takes the beacon down.
func (b *Beacon) handleInbound(data []byte) {
	var frame meshcom.TextFrame
	if err := frame.Parse(data); err != nil {
		if b.logger != nil {
			b.logger.Printf("RX frame dropped (%d bytes): %v", len(data), err)
		}
		return
	}

	if b.logger != nil {
		status := ""
		if !frame.ChecksumOK {
			status = "  [bad FCS]"
		}
		b.logger.Printf("RX text #%d: %s%s", frame.MessageID, frame.RoutingPayload, status)
	}

	payload := frame.Text
	if frame.Source == "" {
		// Routing block did not split, keep the raw text
		payload = frame.RoutingPayload
	}

	b.record(packetlog.Entry{
		Direction:   packetlog.DirectionRx,
		Kind:        packetlog.KindText,
		MessageID:   frame.MessageID,
		Source:      frame.Source,
		Destination: frame.Dest,
		Payload:     payload,
		Raw:         data,
		ChecksumOK:  frame.ChecksumOK,
	})
}

func (b *Beacon) record(entry packetlog.Entry) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.Record(entry); err != nil && b.logger != nil {
		b.logger.Printf("Packet log error: %v", err)
	}
}

// routingText extracts the ASCII routing block of a finished frame,
// the bytes between the hop byte and the payload terminator.
func routingText(frame []byte) string {
	for i := 6; i < len(frame); i++ {
		if frame[i] == meshcom.PayloadTerminator {
			return string(frame[6:i])
		}
	}
	return ""
}
