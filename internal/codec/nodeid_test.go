package codec

import (
	"testing"
)

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  uint32
	}{
		{
			name:  "hex with lowercase prefix",
			input: "0x3F",
			want:  63,
		},
		{
			name:  "hex with uppercase prefix",
			input: "0X3f",
			want:  63,
		},
		{
			name:  "decimal",
			input: "63",
			want:  63,
		},
		{
			name:  "garbage falls back to zero",
			input: "not-a-number",
			want:  0,
		},
		{
			name:  "empty string",
			input: "",
			want:  0,
		},
		{
			name:  "bare hex prefix",
			input: "0x",
			want:  0,
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  0xAB12  ",
			want:  0xAB12,
		},
		{
			name:  "negative is not a node ID",
			input: "-5",
			want:  0,
		},
		{
			name:  "value above 32 bits truncated",
			input: "0x1FFFFFFFF",
			want:  0xFFFFFFFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNodeID(tt.input)
			if got != tt.want {
				t.Errorf("ParseNodeID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestComposeMessageID(t *testing.T) {
	tests := []struct {
		name      string
		gatewayID uint32
		sequence  uint16
		want      uint32
	}{
		{
			name:      "zero everything",
			gatewayID: 0,
			sequence:  0,
			want:      0,
		},
		{
			name:      "small gateway and sequence",
			gatewayID: 1,
			sequence:  1,
			want:      1<<10 | 1,
		},
		{
			name:      "maximum fields fill all 32 bits",
			gatewayID: 0x3FFFFF,
			sequence:  0x3FF,
			want:      0xFFFFFFFF,
		},
		{
			name:      "gateway ID above 22 bits masked",
			gatewayID: 0x400001,
			sequence:  5,
			want:      1<<10 | 5,
		},
		{
			name:      "sequence above 10 bits masked",
			gatewayID: 63,
			sequence:  0x7FF,
			want:      63<<10 | 0x3FF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeMessageID(tt.gatewayID, tt.sequence)
			if got != tt.want {
				t.Errorf("ComposeMessageID(%d, %d) = 0x%08X, want 0x%08X",
					tt.gatewayID, tt.sequence, got, tt.want)
			}
		})
	}
}

func TestMessageIDSource_SequenceWrap(t *testing.T) {
	src := NewMessageIDSource("0x3F")

	// The counter must hand out 0..1023 exactly once, in order.
	seen := make(map[uint16]bool, 1024)
	for i := 0; i < 1024; i++ {
		got := src.NextSequence()
		if got != uint16(i) {
			t.Fatalf("NextSequence() call %d = %d, want %d", i+1, got, i)
		}
		if seen[got] {
			t.Fatalf("NextSequence() returned %d twice within one cycle", got)
		}
		seen[got] = true
	}

	// Call 1025 wraps back to 0.
	if got := src.NextSequence(); got != 0 {
		t.Errorf("NextSequence() after full cycle = %d, want 0", got)
	}
}

func TestMessageIDSource_NextMessageID(t *testing.T) {
	src := NewMessageIDSource("0x3F")

	first := src.NextMessageID()
	second := src.NextMessageID()

	if want := uint32(63 << 10); first != want {
		t.Errorf("first NextMessageID() = 0x%08X, want 0x%08X", first, want)
	}
	if want := uint32(63<<10 | 1); second != want {
		t.Errorf("second NextMessageID() = 0x%08X, want 0x%08X", second, want)
	}
}

func TestMessageIDSource_GatewayIDMasked(t *testing.T) {
	// Node IDs wider than 22 bits only contribute their low bits.
	src := NewMessageIDSource("0xFFFFFFFF")

	if got, want := src.GatewayID(), uint32(0x3FFFFF); got != want {
		t.Errorf("GatewayID() = 0x%06X, want 0x%06X", got, want)
	}
}

func BenchmarkMessageIDSource_NextMessageID(b *testing.B) {
	src := NewMessageIDSource("0x3F")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.NextMessageID()
	}
}
