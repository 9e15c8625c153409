// Package gx holds the primitive codes of the GX command processor draw
// opcodes and how each one is drawn on a modern GPU.
package gx

//go:generate go tool stringer -type=Primitive -linecomment

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Primitive is the 3-bit primitive field of a draw opcode.
type Primitive uint8

const (
	Quads            Primitive = iota // quads
	QuadsNonstandard                  // quads_nonstandard
	Triangles                         // triangles
	TriangleStrip                     // triangle_strip
	TriangleFan                       // triangle_fan
	Lines                             // lines
	LineStrip                         // line_strip
	Points                            // points

	NumPrimitives = 8
)

// Valid reports whether p is one of the 8 primitive codes.
func (p Primitive) Valid() bool {
	return p < NumPrimitives
}

// ParsePrimitive returns the primitive named s, as returned by String.
func ParsePrimitive(s string) (Primitive, error) {
	for p := Primitive(0); p < NumPrimitives; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown primitive %q", s)
}

// Draw opcodes occupy 0x80-0xBF: 0b10PPPVVV where P is the primitive and V
// the vertex attribute table index.
const (
	drawOpcode    = 0x80
	drawOpcodeMsk = 0xC0
	primShift     = 3
	primMask      = 0x38
	vatMask       = 0x07
)

// DecodeDraw splits a draw opcode into its primitive and VAT index. ok is
// false if cmd is not a draw opcode.
func DecodeDraw(cmd byte) (prim Primitive, vat uint8, ok bool) {
	if cmd&drawOpcodeMsk != drawOpcode {
		return 0, 0, false
	}
	return Primitive(cmd&primMask) >> primShift, cmd & vatMask, true
}

// EncodeDraw builds the draw opcode for prim using vertex attribute table vat.
func EncodeDraw(prim Primitive, vat uint8) byte {
	return drawOpcode | byte(prim)<<primShift&primMask | vat&vatMask
}

// PrimitiveClass is the kind of modern primitive a legacy primitive is
// expanded into. Draws of different classes can't share an index buffer
// submission.
type PrimitiveClass uint8

const (
	ClassPoints PrimitiveClass = iota
	ClassLines
	ClassTriangles
)

var classNames = [...]string{"points", "lines", "triangles"}

func (c PrimitiveClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("PrimitiveClass(%d)", uint8(c))
}

var primClasses = [NumPrimitives]PrimitiveClass{
	Quads:            ClassTriangles,
	QuadsNonstandard: ClassTriangles,
	Triangles:        ClassTriangles,
	TriangleStrip:    ClassTriangles,
	TriangleFan:      ClassTriangles,
	Lines:            ClassLines,
	LineStrip:        ClassLines,
	Points:           ClassPoints,
}

// Class returns the class of primitive p is drawn as. Unknown codes are
// reported as triangles.
func (p Primitive) Class() PrimitiveClass {
	if !p.Valid() {
		return ClassTriangles
	}
	return primClasses[p]
}

// Topology returns the topology an index buffer of class c is drawn with.
// Strips and fans are always expanded into lists.
func (c PrimitiveClass) Topology() gputypes.PrimitiveTopology {
	switch c {
	case ClassPoints:
		return gputypes.PrimitiveTopologyPointList
	case ClassLines:
		return gputypes.PrimitiveTopologyLineList
	}
	return gputypes.PrimitiveTopologyTriangleList
}
