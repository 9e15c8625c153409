package bp

import (
	"github.com/gogpu/gputypes"

	"gxvideo/emu/log"
	"gxvideo/hw/hwio"
)

// BP register addresses.
const (
	AddrGenMode = 0x00
	AddrBPMask  = 0xFE
)

const payloadMask = 0x00FFFFFF

// Regs is the BP register bank, as seen by the index assembly stage.
// Registers that aren't mapped are ignored.
type Regs struct {
	GENMODE hwio.Reg32 `hwio:"offset=0x00,rwmask=0xFFFFFF,wcb"`
	BPMASK  hwio.Reg32 `hwio:"offset=0xFE,rwmask=0xFFFFFF,wcb"`

	bus *hwio.Table

	// Write mask for the next register load, set through BPMASK.
	mask   uint32
	masked bool
}

// Reset puts the registers in their power-on state. It must be called
// before the first Load.
func (r *Regs) Reset() {
	*r = Regs{}
	hwio.MustInitRegs(r)
	r.bus = hwio.NewTable("bp")
	r.bus.MapBank(r, 0)
}

// GenMode returns the value of the GENMODE register.
func (r *Regs) GenMode() GenMode { return GenMode(r.GENMODE.Value) }

// Load applies a BP load command: register address in bits 24-31, 24-bit
// payload below.
func (r *Regs) Load(cmd uint32) {
	addr := uint8(hwio.GetBits32(cmd, 24, 8))
	val := cmd & payloadMask

	// The mask only applies to the write following it.
	mask := uint32(payloadMask)
	if r.masked && addr != AddrBPMask {
		mask, r.masked = r.mask, false
	}
	r.bus.Write32(addr, val, mask)
}

func (r *Regs) WriteGENMODE(old, val uint32) {
	oldCull, newCull := GenMode(old).CullMode(), GenMode(val).CullMode()
	if oldCull != newCull {
		log.ModBP.DebugZ("cull mode change").
			Stringer("old", oldCull).
			Stringer("new", newCull).
			End()
	}
}

func (r *Regs) WriteBPMASK(_, val uint32) {
	r.mask, r.masked = val, true
}

// LoadCommand builds the BP load command writing val at addr.
func LoadCommand(addr uint8, val uint32) uint32 {
	return uint32(addr)<<24 | val&payloadMask
}

// PipelineCull returns the modern rasterizer cull state for triangles of
// class tris (false for points and lines) drawn under cull mode m.
//
// Winding is fixed up while generating indices, so the front face is
// always clockwise and front culling is expressed as back culling.
func PipelineCull(m CullMode, tris bool) (gputypes.CullMode, gputypes.FrontFace) {
	if !tris {
		return gputypes.CullModeNone, gputypes.FrontFaceCW
	}
	switch m {
	case CullBack, CullFront:
		return gputypes.CullModeBack, gputypes.FrontFaceCW
	}
	return gputypes.CullModeNone, gputypes.FrontFaceCW
}

// CullsAll reports whether triangles drawn under m are all discarded.
func (m CullMode) CullsAll() bool {
	return m == CullAll
}
