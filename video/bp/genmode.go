// Package bp decodes the subset of Blitting Processor registers the index
// assembly stage depends on.
package bp

import (
	"fmt"

	"gxvideo/hw/hwio"
)

// CullMode is the 2-bit cull mode field of GENMODE.
type CullMode uint8

const (
	CullNone  CullMode = iota // no culling
	CullBack                  // cull back-facing (counter-clockwise) primitives
	CullFront                 // cull front-facing (clockwise) primitives
	CullAll                   // cull all triangles, lines and points are still drawn
)

var cullNames = [...]string{"none", "back", "front", "all"}

func (m CullMode) String() string {
	if int(m) < len(cullNames) {
		return cullNames[m]
	}
	return fmt.Sprintf("CullMode(%d)", uint8(m))
}

// ParseCullMode returns the cull mode named s, as returned by String.
func ParseCullMode(s string) (CullMode, error) {
	for i, name := range cullNames {
		if name == s {
			return CullMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cull mode %q", s)
}

// CCW reports whether triangles must be emitted with their second and third
// vertices swapped to keep the emulated front face.
func (m CullMode) CCW() bool {
	return m == CullFront
}

func (m CullMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CullMode) UnmarshalText(text []byte) error {
	v, err := ParseCullMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// GenMode is the GENMODE register (BP address 0x00).
//
//	bits  0-3   number of texture coordinate generators
//	bits  4-6   number of color channels
//	bit   8     flat shading
//	bit   9     multisampling
//	bits 10-13  number of TEV stages, minus one
//	bits 14-15  cull mode
//	bits 16-18  number of indirect stages
//	bit  19     z-freeze
type GenMode uint32

func (g GenMode) NumTexGens() uint32    { return hwio.GetBits32(uint32(g), 0, 4) }
func (g GenMode) NumColorChans() uint32 { return hwio.GetBits32(uint32(g), 4, 3) }
func (g GenMode) FlatShading() bool     { return hwio.GetBit32(uint32(g), 8) }
func (g GenMode) MultiSampling() bool   { return hwio.GetBit32(uint32(g), 9) }
func (g GenMode) NumTevStages() uint32  { return hwio.GetBits32(uint32(g), 10, 4) + 1 }
func (g GenMode) CullMode() CullMode    { return CullMode(hwio.GetBits32(uint32(g), 14, 2)) }
func (g GenMode) NumIndStages() uint32  { return hwio.GetBits32(uint32(g), 16, 3) }
func (g GenMode) ZFreeze() bool         { return hwio.GetBit32(uint32(g), 19) }

// WithCullMode returns g with its cull mode field replaced by m.
func (g GenMode) WithCullMode(m CullMode) GenMode {
	v := uint32(g)
	hwio.SetBits32(&v, 14, 2, uint32(m))
	return GenMode(v)
}

func (g GenMode) String() string {
	return fmt.Sprintf("GenMode{texgens:%d colchans:%d tev:%d ind:%d cull:%s flat:%t msaa:%t zfreeze:%t}",
		g.NumTexGens(), g.NumColorChans(), g.NumTevStages(), g.NumIndStages(),
		g.CullMode(), g.FlatShading(), g.MultiSampling(), g.ZFreeze())
}
