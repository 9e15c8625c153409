package hwio

import (
	"fmt"

	"gxvideo/emu/log"
)

// Table maps registers in an 8-bit address space.
type Table struct {
	Name string

	regs [256]*Reg32
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

// MapBank maps the registers of bank bankNum of a register bank, that is a
// pointer to a structure containing Reg32 fields with "hwio" tags (see
// InitRegs).
func (t *Table) MapBank(bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}
	for _, reg := range regs {
		t.MapReg32(reg.offset, reg.regPtr)
	}
}

func (t *Table) MapReg32(addr uint8, reg *Reg32) {
	if prev := t.regs[addr]; prev != nil {
		panic(fmt.Errorf("%s: 0x%02x already mapped to %s", t.Name, addr, prev.Name))
	}
	t.regs[addr] = reg
}

// Write32 forwards a masked write to the register mapped at addr. Writes to
// unmapped addresses are logged and dropped.
func (t *Table) Write32(addr uint8, val, mask uint32) {
	reg := t.regs[addr]
	if reg == nil {
		log.ModHwIo.DebugZ("unmapped Write32").
			String("name", t.Name).
			Hex8("addr", addr).
			Hex32("val", val).
			End()
		return
	}
	reg.Write32(val, mask)
}
