package hwio

// Reg32 is a 32-bit register. Bits set in RoMask keep their value on
// writes.
type Reg32 struct {
	Name   string
	Value  uint32
	RoMask uint32

	WriteCb func(old uint32, val uint32)
}

// Write32 writes val, leaving the bits of the register outside mask
// unchanged. WriteCb is called even if the value doesn't change.
func (reg *Reg32) Write32(val, mask uint32) {
	old := reg.Value
	mask &^= reg.RoMask
	reg.Value = (reg.Value &^ mask) | (val & mask)
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}
