package bp

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"gopkg.in/Sirupsen/logrus.v0"

	"gxvideo/emu/log"
)

func TestGenModeFields(t *testing.T) {
	// texgens=2, colchans=1, flat, tev=4 (stored as 3), cull=front, ind=1, zfreeze
	g := GenMode(2 | 1<<4 | 1<<8 | 3<<10 | 2<<14 | 1<<16 | 1<<19)

	if got := g.NumTexGens(); got != 2 {
		t.Errorf("NumTexGens = %d, want 2", got)
	}
	if got := g.NumColorChans(); got != 1 {
		t.Errorf("NumColorChans = %d, want 1", got)
	}
	if !g.FlatShading() {
		t.Errorf("FlatShading = false, want true")
	}
	if g.MultiSampling() {
		t.Errorf("MultiSampling = true, want false")
	}
	if got := g.NumTevStages(); got != 4 {
		t.Errorf("NumTevStages = %d, want 4", got)
	}
	if got := g.CullMode(); got != CullFront {
		t.Errorf("CullMode = %v, want front", got)
	}
	if got := g.NumIndStages(); got != 1 {
		t.Errorf("NumIndStages = %d, want 1", got)
	}
	if !g.ZFreeze() {
		t.Errorf("ZFreeze = false, want true")
	}

	g2 := g.WithCullMode(CullBack)
	if got := g2.CullMode(); got != CullBack {
		t.Errorf("WithCullMode(back).CullMode() = %v", got)
	}
	if uint32(g2)&^(3<<14) != uint32(g)&^(3<<14) {
		t.Errorf("WithCullMode changed other fields: %08x -> %08x", uint32(g), uint32(g2))
	}
}

func TestRegsLoad(t *testing.T) {
	var regs Regs
	regs.Reset()

	regs.Load(LoadCommand(AddrGenMode, uint32(GenMode(0).WithCullMode(CullFront))|0x2))
	if got := regs.GenMode().CullMode(); got != CullFront {
		t.Fatalf("cull mode = %v, want front", got)
	}
	if got := regs.GenMode().NumTexGens(); got != 2 {
		t.Fatalf("texgens = %d, want 2", got)
	}

	// Masked write only touches the cull mode bits.
	regs.Load(LoadCommand(AddrBPMask, 3<<14))
	regs.Load(LoadCommand(AddrGenMode, uint32(GenMode(0).WithCullMode(CullBack))))
	if got := regs.GenMode().CullMode(); got != CullBack {
		t.Errorf("cull mode = %v, want back", got)
	}
	if got := regs.GenMode().NumTexGens(); got != 2 {
		t.Errorf("texgens = %d, want 2 (masked out)", got)
	}

	// Mask is consumed by the previous write.
	regs.Load(LoadCommand(AddrGenMode, 0))
	if regs.GenMode() != 0 {
		t.Errorf("GenMode = %08x, want 0", regs.GENMODE.Value)
	}

	// Unknown registers are ignored.
	regs.Load(LoadCommand(0x28, 0xFFFFFF))
	if regs.GenMode() != 0 {
		t.Errorf("GenMode = %08x, want 0", regs.GENMODE.Value)
	}
}

func TestRegsBank(t *testing.T) {
	var regs Regs
	regs.Reset()

	if regs.GENMODE.Name != "GENMODE" || regs.GENMODE.WriteCb == nil {
		t.Fatalf("GENMODE not initialized: %+v", regs.GENMODE)
	}

	// Payload is 24 bits, upper byte of GENMODE is never written.
	regs.Load(LoadCommand(AddrGenMode, 0xFFFFFF))
	if regs.GENMODE.Value != 0xFFFFFF {
		t.Errorf("GENMODE = %08x, want 00ffffff", regs.GENMODE.Value)
	}

	// A second mask load replaces the first one.
	regs.Load(LoadCommand(AddrBPMask, 0x00000F))
	regs.Load(LoadCommand(AddrBPMask, 0x0000F0))
	regs.Load(LoadCommand(AddrGenMode, 0))
	if regs.GENMODE.Value != 0xFFFF0F {
		t.Errorf("GENMODE = %08x, want 00ffff0f", regs.GENMODE.Value)
	}

	// Reset drops the pending mask.
	regs.Load(LoadCommand(AddrBPMask, 0x00000F))
	regs.Reset()
	regs.Load(LoadCommand(AddrGenMode, 0x123456))
	if regs.GENMODE.Value != 0x123456 {
		t.Errorf("GENMODE = %08x, want 00123456", regs.GENMODE.Value)
	}
}

func TestRegsCullChangeLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	log.EnableDebugModules(log.ModBP.Mask())
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.DisableDebugModules(log.ModuleMaskAll)
	})

	var regs Regs
	regs.Reset()

	// Same cull mode, no log.
	regs.Load(LoadCommand(AddrGenMode, 0x2))
	if buf.Len() != 0 {
		t.Fatalf("unexpected output: %s", buf.String())
	}

	regs.Load(LoadCommand(AddrGenMode, uint32(GenMode(0).WithCullMode(CullFront))))
	out := buf.String()
	for _, want := range []string{"cull mode change", "old=none", "new=front", "_mod=bp"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q doesn't contain %q", out, want)
		}
	}
}

func TestParseCullMode(t *testing.T) {
	for m := CullNone; m <= CullAll; m++ {
		var got CullMode
		if err := got.UnmarshalText([]byte(m.String())); err != nil {
			t.Fatal(err)
		}
		if got != m {
			t.Errorf("UnmarshalText(%q) = %v", m.String(), got)
		}
	}
	if _, err := ParseCullMode("both"); err == nil {
		t.Errorf("ParseCullMode(both) should fail")
	}
	if !CullFront.CCW() || CullBack.CCW() || CullNone.CCW() || CullAll.CCW() {
		t.Errorf("only front culling swaps winding")
	}
}

func TestPipelineCull(t *testing.T) {
	tests := []struct {
		mode CullMode
		tris bool
		want gputypes.CullMode
	}{
		{CullNone, true, gputypes.CullModeNone},
		{CullBack, true, gputypes.CullModeBack},
		{CullFront, true, gputypes.CullModeBack},
		{CullAll, true, gputypes.CullModeNone},
		{CullBack, false, gputypes.CullModeNone},
		{CullFront, false, gputypes.CullModeNone},
	}
	for _, tt := range tests {
		cull, front := PipelineCull(tt.mode, tt.tris)
		if cull != tt.want {
			t.Errorf("PipelineCull(%v, %t) cull = %v, want %v", tt.mode, tt.tris, cull, tt.want)
		}
		if front != gputypes.FrontFaceCW {
			t.Errorf("PipelineCull(%v, %t) front face = %v, want CW", tt.mode, tt.tris, front)
		}
	}
}
