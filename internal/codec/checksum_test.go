package codec

import (
	"bytes"
	"testing"
)

func TestSum16(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint16
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  0,
		},
		{
			name:  "nil input",
			input: nil,
			want:  0,
		},
		{
			name:  "single byte",
			input: []byte{0x42},
			want:  0x42,
		},
		{
			name:  "ascii text",
			input: []byte("ABC"), // 65 + 66 + 67
			want:  198,
		},
		{
			name:  "sum below wrap point",
			input: bytes.Repeat([]byte{0xFF}, 256), // 65280
			want:  0xFF00,
		},
		{
			name:  "sum of exactly 65536 wraps to zero",
			input: bytes.Repeat([]byte{0x80}, 512),
			want:  0,
		},
		{
			name:  "sum past wrap point",
			input: bytes.Repeat([]byte{0x80}, 513), // 65664
			want:  128,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum16(tt.input)
			if got != tt.want {
				t.Errorf("Sum16() = 0x%04X, want 0x%04X", got, tt.want)
			}
		})
	}
}

func TestSum16_OrderIndependent(t *testing.T) {
	// A byte sum does not care about ordering, only about the total.
	forward := []byte{0x01, 0x02, 0x03, 0xFE, 0xFF}
	reversed := []byte{0xFF, 0xFE, 0x03, 0x02, 0x01}

	if got, want := Sum16(forward), Sum16(reversed); got != want {
		t.Errorf("Sum16(forward) = 0x%04X, Sum16(reversed) = 0x%04X, want equal", got, want)
	}
}

func BenchmarkSum16(b *testing.B) {
	data := bytes.Repeat([]byte{0xA5}, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sum16(data)
	}
}
