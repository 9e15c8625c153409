package hwio

// 32-bit operations
func GetBit32(v uint32, n uint) bool {
	return GetBiti32(v, n) != 0
}

func GetBiti32(v uint32, n uint) uint32 {
	return v >> (n) & 0x01
}

// GetBits32 extracts the width-bit wide field starting at bit lsb.
func GetBits32(v uint32, lsb, width uint) uint32 {
	return v >> lsb & (1<<width - 1)
}

// SetBits32 replaces the width-bit wide field starting at bit lsb with val.
// Bits of val beyond width are ignored.
func SetBits32(v *uint32, lsb, width uint, val uint32) {
	mask := uint32(1<<width-1) << lsb
	*v = *v&^mask | val<<lsb&mask
}
