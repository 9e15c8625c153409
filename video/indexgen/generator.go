// Package indexgen converts GX primitives into 16-bit index buffers drawable
// as point, line or triangle lists.
package indexgen

import (
	"gxvideo/emu/log"
	"gxvideo/video/bp"
	"gxvideo/video/gx"
)

// MaxIndex is the highest vertex index a pass may reference. 0xFFFF is
// reserved for primitive restart.
const MaxIndex = 0xFFFF - 1

// Generator appends indices to a caller provided buffer. A Generator is
// owned by a single pass, passes running concurrently must each use their
// own.
//
// The zero value is usable after a call to Start.
type Generator struct {
	buf  []uint16 // buffer given to Start
	cur  int      // write cursor in buf
	base uint32   // index of the next vertex

	cull bp.CullMode

	// The nonstandard quads notice is only shown at warn level once per pass.
	warnedQuads2 bool
}

// Start begins a new pass writing into buf. Previous pass state is dropped.
func (g *Generator) Start(buf []uint16) {
	g.buf = buf
	g.cur = 0
	g.base = 0
	g.warnedQuads2 = false
}

// SetCullMode sets the cull mode deciding the winding of the triangles
// emitted by subsequent calls to AddIndices.
func (g *Generator) SetCullMode(m bp.CullMode) { g.cull = m }

// CullMode returns the current cull mode.
func (g *Generator) CullMode() bp.CullMode { return g.cull }

// AddIndices appends the indices for numVerts vertices of primitive prim,
// then advances the base vertex by numVerts. Unknown primitives write no
// indices but still consume their vertices.
//
// The caller must ensure the buffer has room for IndexCount(prim, numVerts)
// more indices, and that GetRemainingIndices allows numVerts more vertices.
func (g *Generator) AddIndices(prim gx.Primitive, numVerts uint32) {
	if prim.Valid() {
		if prim == gx.QuadsNonstandard {
			g.quads2Notice(numVerts)
		}
		g.cur += expanders[prim](g.buf[g.cur:], numVerts, g.base, g.cull.CCW())
	}
	g.base += numVerts
}

func (g *Generator) quads2Notice(numVerts uint32) {
	if !g.warnedQuads2 {
		g.warnedQuads2 = true
		log.ModIndex.WarnZ("non-standard primitive drawing command GX_DRAW_QUADS_2").
			Uint("verts", numVerts).
			End()
		return
	}
	log.ModIndex.DebugZ("non-standard primitive drawing command GX_DRAW_QUADS_2").
		Uint("verts", numVerts).
		End()
}

// AddExternalIndices appends indices built elsewhere, already offset for the
// current base vertex, and advances the base vertex by numVerts.
func (g *Generator) AddExternalIndices(indices []uint16, numVerts uint32) {
	g.cur += copy(g.buf[g.cur:g.cur+len(indices)], indices)
	g.base += numVerts
}

// GetNumVerts returns the number of vertices consumed since Start.
func (g *Generator) GetNumVerts() uint32 { return g.base }

// GetIndexLen returns the number of indices written since Start.
func (g *Generator) GetIndexLen() uint32 { return uint32(g.cur) }

// GetRemainingIndices returns how many more vertices can be referenced
// before the index space reaches the primitive restart value.
func (g *Generator) GetRemainingIndices() uint32 {
	if g.base >= MaxIndex {
		return 0
	}
	return MaxIndex - g.base
}

// Indices returns the indices written since Start. The returned slice
// aliases the buffer given to Start.
func (g *Generator) Indices() []uint16 { return g.buf[:g.cur] }

// Capacity returns the size of the buffer given to Start.
func (g *Generator) Capacity() int { return len(g.buf) }

// FreeIndices returns how many more indices fit in the buffer.
func (g *Generator) FreeIndices() int { return len(g.buf) - g.cur }
