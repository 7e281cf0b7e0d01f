package codec

// Sum16 computes the 16-bit frame check sequence used by MeshCom frames:
// the arithmetic sum of all byte values, truncated to the low 16 bits.
// This is a plain modulo-65536 sum, not a CRC; the firmware ecosystem
// this interoperates with validates frames the same way, so a stronger
// check would break byte-exact compatibility.
func Sum16(data []byte) uint16 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return uint16(sum & 0xFFFF)
}
