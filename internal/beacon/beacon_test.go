package beacon

import (
	"context"
	"testing"
	"time"

	"github.com/dn9apw/meshtrack/internal/packetlog"
	"github.com/dn9apw/meshtrack/internal/protocol/meshcom"
	"github.com/dn9apw/meshtrack/internal/radio"
)

// noFix is a fix source without a fix, for nodes that never got one.
type noFix struct{}

func (noFix) CurrentFix() (meshcom.Fix, bool) {
	return meshcom.Fix{}, false
}

func newTestBeacon(cfg Config, fixes FixSource) (*Beacon, *radio.Loopback, *packetlog.MemoryRecorder) {
	lb := radio.NewLoopback(16)
	r := radio.NewRadio(lb, nil)
	encoder := meshcom.NewPositionEncoder("DN9APW-8", "DN9APW-8")
	recorder := packetlog.NewMemoryRecorder(32)
	return New(cfg, r, encoder, fixes, recorder, nil), lb, recorder
}

func TestBeacon_SendText(t *testing.T) {
	cfg := Config{
		TextMessage:     "https://RF.Guru",
		TextDestination: "*",
		TextMaxHop:      5,
		HardwareID:      4,
		ModulationID:    3,
	}
	b, lb, recorder := newTestBeacon(cfg, nil)
	ctx := context.Background()

	b.sendText(ctx)
	b.sendText(ctx)

	if got := lb.TransmitCount(); got != 2 {
		t.Fatalf("TransmitCount() = %d, want 2", got)
	}

	for i, wantID := range []uint32{1, 2} {
		data, err := lb.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive() frame %d error = %v", i, err)
		}

		var frame meshcom.TextFrame
		if err := frame.Parse(data); err != nil {
			t.Fatalf("Parse() frame %d error = %v", i, err)
		}
		if frame.MessageID != wantID {
			t.Errorf("frame %d MessageID = %d, want %d", i, frame.MessageID, wantID)
		}
		if frame.Source != "DN9APW-8" {
			t.Errorf("frame %d Source = %q, want %q", i, frame.Source, "DN9APW-8")
		}
		if frame.Dest != "*" {
			t.Errorf("frame %d Dest = %q, want %q", i, frame.Dest, "*")
		}
		if frame.Text != "https://RF.Guru" {
			t.Errorf("frame %d Text = %q, want %q", i, frame.Text, "https://RF.Guru")
		}
		if !frame.ChecksumOK {
			t.Errorf("frame %d ChecksumOK = false, want true", i)
		}
	}

	entries, err := recorder.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("recorded entries = %d, want 2", len(entries))
	}
	if entries[0].Direction != packetlog.DirectionTx || entries[0].Kind != packetlog.KindText {
		t.Errorf("entry = %s/%s, want tx/text", entries[0].Direction, entries[0].Kind)
	}
	if entries[0].MessageID != 2 {
		t.Errorf("newest recorded MessageID = %d, want 2", entries[0].MessageID)
	}
}

func TestBeacon_SendPosition(t *testing.T) {
	altitude := 320.0
	source := NewStaticSource(48.2081, 16.3713, &altitude)
	b, lb, recorder := newTestBeacon(Config{}, source)
	ctx := context.Background()

	b.sendPosition(ctx)

	if got := lb.TransmitCount(); got != 1 {
		t.Fatalf("TransmitCount() = %d, want 1", got)
	}

	data, err := lb.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if data[0] != meshcom.PositionFrameStart {
		t.Errorf("frame starts with 0x%02X, want '!'", data[0])
	}
	if data[len(data)-1] != meshcom.PositionFrameEnd {
		t.Errorf("frame ends with 0x%02X, want 0x7E", data[len(data)-1])
	}

	b.mu.Lock()
	if !b.hasLastFix {
		t.Error("hasLastFix = false after send, want true")
	}
	if b.lastLat != 48.2081 || b.lastLon != 16.3713 {
		t.Errorf("last fix = (%.4f, %.4f), want (48.2081, 16.3713)", b.lastLat, b.lastLon)
	}
	if b.lastPositionTx.IsZero() {
		t.Error("lastPositionTx is zero after send")
	}
	b.mu.Unlock()

	entries, err := recorder.Recent(1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("recorded entries = %d, want 1", len(entries))
	}
	if entries[0].Kind != packetlog.KindPosition {
		t.Errorf("entry kind = %s, want position", entries[0].Kind)
	}
	if entries[0].Payload != "DN9APW-8>*!4812.49N/01622.28E>/A=001050" {
		t.Errorf("entry payload = %q, want %q", entries[0].Payload, "DN9APW-8>*!4812.49N/01622.28E>/A=001050")
	}
}

func TestBeacon_PositionDue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		fixes    FixSource
		setup    func(b *Beacon)
		expected bool
	}{
		{
			name:     "never sent",
			fixes:    NewStaticSource(48.2081, 16.3713, nil),
			setup:    func(b *Beacon) {},
			expected: true,
		},
		{
			name:  "recent and stationary",
			fixes: NewStaticSource(48.2081, 16.3713, nil),
			setup: func(b *Beacon) {
				b.lastPositionTx = now.Add(-30 * time.Second)
				b.lastLat, b.lastLon = 48.2081, 16.3713
				b.hasLastFix = true
			},
			expected: false,
		},
		{
			name:  "moved past the distance threshold",
			fixes: NewStaticSource(48.2090, 16.3713, nil),
			setup: func(b *Beacon) {
				b.lastPositionTx = now.Add(-30 * time.Second)
				b.lastLat, b.lastLon = 48.2081, 16.3713
				b.hasLastFix = true
			},
			expected: true,
		},
		{
			name:  "stationary past the keepalive",
			fixes: NewStaticSource(48.2081, 16.3713, nil),
			setup: func(b *Beacon) {
				b.lastPositionTx = now.Add(-400 * time.Second)
				b.lastLat, b.lastLon = 48.2081, 16.3713
				b.hasLastFix = true
			},
			expected: true,
		},
		{
			name:     "no usable fix",
			fixes:    noFix{},
			setup:    func(b *Beacon) {},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Rate:        15 * time.Second,
				Keepalive:   300 * time.Second,
				MinDistance: 100,
			}
			b, _, _ := newTestBeacon(cfg, tt.fixes)
			tt.setup(b)

			if got := b.positionDue(now); got != tt.expected {
				t.Errorf("positionDue() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBeacon_HandleInbound(t *testing.T) {
	b, _, recorder := newTestBeacon(Config{}, nil)

	inbound := meshcom.TextFrame{
		MessageID:    77,
		MaxHop:       5,
		Source:       "OE1KBC-12",
		Dest:         "DN9APW-8",
		Text:         "hello from Vienna",
		HardwareID:   4,
		ModulationID: 3,
	}
	data, err := inbound.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	b.handleInbound(data)

	entries, err := recorder.Recent(1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("recorded entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Direction != packetlog.DirectionRx {
		t.Errorf("Direction = %s, want rx", entry.Direction)
	}
	if entry.MessageID != 77 {
		t.Errorf("MessageID = %d, want 77", entry.MessageID)
	}
	if entry.Source != "OE1KBC-12" {
		t.Errorf("Source = %q, want %q", entry.Source, "OE1KBC-12")
	}
	if entry.Payload != "hello from Vienna" {
		t.Errorf("Payload = %q, want %q", entry.Payload, "hello from Vienna")
	}
	if !entry.ChecksumOK {
		t.Error("ChecksumOK = false, want true")
	}
}

func TestBeacon_HandleInboundGarbage(t *testing.T) {
	b, _, recorder := newTestBeacon(Config{}, nil)

	b.handleInbound([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	b.handleInbound(nil)

	if got := recorder.Len(); got != 0 {
		t.Errorf("recorded entries = %d, want 0 for unparseable frames", got)
	}
}

func TestBeacon_StartStop(t *testing.T) {
	cfg := Config{
		Rate:         5 * time.Millisecond,
		Keepalive:    time.Minute,
		MinDistance:  1,
		TextMessage:  "on air",
		TextInterval: 5 * time.Millisecond,
		TextMaxHop:   5,
		HardwareID:   4,
		ModulationID: 3,
	}
	b, lb, _ := newTestBeacon(cfg, NewStaticSource(48.2081, 16.3713, nil))

	ctx := context.Background()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := b.Start(ctx); err == nil {
		t.Error("second Start() error = nil, want already running")
	}

	time.Sleep(60 * time.Millisecond)
	b.Stop()

	// One position and one text frame go out immediately on start
	if got := lb.TransmitCount(); got < 2 {
		t.Errorf("TransmitCount() = %d, want at least 2", got)
	}

	// Stop again is a no-op
	b.Stop()
}

func TestStaticSource(t *testing.T) {
	altitude := 145.5
	source := NewStaticSource(48.2081, 16.3713, &altitude)

	fix, ok := source.CurrentFix()
	if !ok {
		t.Fatal("CurrentFix() ok = false, want true")
	}
	if fix.Latitude == nil || *fix.Latitude != 48.2081 {
		t.Errorf("Latitude = %v, want 48.2081", fix.Latitude)
	}
	if fix.Longitude == nil || *fix.Longitude != 16.3713 {
		t.Errorf("Longitude = %v, want 16.3713", fix.Longitude)
	}
	if fix.Altitude == nil || *fix.Altitude != 145.5 {
		t.Errorf("Altitude = %v, want 145.5", fix.Altitude)
	}
}

func TestStaticSource_NoAltitude(t *testing.T) {
	source := NewStaticSource(-33.8688, 151.2093, nil)

	fix, ok := source.CurrentFix()
	if !ok {
		t.Fatal("CurrentFix() ok = false, want true")
	}
	if fix.Altitude != nil {
		t.Errorf("Altitude = %v, want nil", *fix.Altitude)
	}
	if fix.Latitude == nil || *fix.Latitude != -33.8688 {
		t.Errorf("Latitude = %v, want -33.8688", fix.Latitude)
	}
}
