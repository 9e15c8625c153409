// Package vertexmgr drives index generation for a stream of draws and
// submits the resulting passes along with their pipeline state.
package vertexmgr

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"gxvideo/emu/log"
	"gxvideo/video/bp"
	"gxvideo/video/gx"
	"gxvideo/video/indexgen"
)

// DefaultIndexBufferSize is the default number of indices per pass.
const DefaultIndexBufferSize = 0x20000

var (
	ErrDrawTooLarge     = errors.New("draw doesn't fit in an empty pass")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidBufferLen = errors.New("index buffer size must be at least 6")
)

type Config struct {
	// Number of indices per pass.
	IndexBufferSize int `toml:"index_buffer_size"`

	// Submit a batch on every cull mode change, even if the pipeline state
	// doesn't change.
	FlushOnCullChange bool `toml:"flush_on_cull_change"`
}

func DefaultConfig() Config {
	return Config{IndexBufferSize: DefaultIndexBufferSize}
}

// Batch is a submission: an index buffer and the state to draw it with.
type Batch struct {
	Class       gx.PrimitiveClass
	Topology    gputypes.PrimitiveTopology
	IndexFormat gputypes.IndexFormat
	CullMode    gputypes.CullMode
	FrontFace   gputypes.FrontFace

	// Number of vertices referenced by Indices, starting at vertex 0 of
	// the pass.
	NumVerts uint32

	// Indices alias the manager's buffer, they're only valid until Submit
	// returns.
	Indices []uint16
}

// A Sink receives batches as they're completed.
type Sink interface {
	Submit(Batch) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Batch) error

func (f SinkFunc) Submit(b Batch) error { return f(b) }

type Stats struct {
	Draws    uint64 // draw commands received
	Culled   uint64 // draws skipped because all triangles are culled
	Batches  uint64 // batches submitted
	Vertices uint64 // vertices submitted
	Indices  uint64 // indices submitted
}

// Manager accumulates draws into passes. A Manager isn't safe for concurrent
// use.
type Manager struct {
	cfg  Config
	sink Sink

	gen  indexgen.Generator
	buf  []uint16
	cull bp.CullMode

	class gx.PrimitiveClass // class of the open pass
	open  bool              // at least one draw since the last flush

	scratch []uint16 // DrawIndexed relocation buffer
	stats   Stats
}

// New creates a Manager submitting its batches to sink.
func New(cfg Config, sink Sink) (*Manager, error) {
	if cfg.IndexBufferSize == 0 {
		cfg.IndexBufferSize = DefaultIndexBufferSize
	}
	if cfg.IndexBufferSize < 6 {
		return nil, ErrInvalidBufferLen
	}

	m := &Manager{
		cfg:  cfg,
		sink: sink,
		buf:  make([]uint16, cfg.IndexBufferSize),
	}
	m.gen.Start(m.buf)
	return m, nil
}

func (m *Manager) Stats() Stats { return m.stats }

func (m *Manager) CullMode() bp.CullMode { return m.cull }

// SetCullMode changes the cull mode for the following draws. The open pass
// is submitted first if the change affects its pipeline state.
func (m *Manager) SetCullMode(mode bp.CullMode) error {
	if mode == m.cull {
		return nil
	}

	if m.open {
		tris := m.class == gx.ClassTriangles
		oldCull, _ := bp.PipelineCull(m.cull, tris)
		newCull, _ := bp.PipelineCull(mode, tris)
		if m.cfg.FlushOnCullChange || oldCull != newCull {
			if err := m.flush("cull mode change"); err != nil {
				return err
			}
		}
	}

	m.cull = mode
	m.gen.SetCullMode(mode)
	return nil
}

// Draw adds a draw of numVerts vertices of primitive prim.
func (m *Manager) Draw(prim gx.Primitive, numVerts uint32) error {
	m.stats.Draws++

	if !prim.Valid() {
		return m.skipVerts(prim, numVerts)
	}

	class := prim.Class()
	if class == gx.ClassTriangles && m.cull.CullsAll() {
		m.stats.Culled++
		log.ModVertex.DebugZ("draw culled").Stringer("prim", prim).Uint("verts", numVerts).End()
		return nil
	}

	nidx := indexgen.IndexCount(prim, numVerts)
	if err := m.reserve(class, numVerts, nidx); err != nil {
		return fmt.Errorf("draw %v (%d verts): %w", prim, numVerts, err)
	}

	m.gen.AddIndices(prim, numVerts)
	return nil
}

// skipVerts consumes the vertices of a draw with an unknown primitive. The
// draw has no indices, it doesn't affect the class of the open pass.
func (m *Manager) skipVerts(prim gx.Primitive, numVerts uint32) error {
	if numVerts > indexgen.MaxIndex {
		return fmt.Errorf("draw %v (%d verts): %w", prim, numVerts, ErrDrawTooLarge)
	}

	log.ModVertex.DebugZ("unknown primitive").Stringer("prim", prim).Uint("verts", numVerts).End()
	if m.gen.GetRemainingIndices() < numVerts {
		if m.open {
			if err := m.flush("index space exhausted"); err != nil {
				return err
			}
		} else {
			m.gen.Start(m.buf)
		}
	}

	m.gen.AddIndices(prim, numVerts)
	return nil
}

// DrawIndexed adds a draw of numVerts vertices of class class, using the
// provided indices. Indices are relative to the first vertex of the draw.
func (m *Manager) DrawIndexed(class gx.PrimitiveClass, indices []uint16, numVerts uint32) error {
	m.stats.Draws++

	if class == gx.ClassTriangles && m.cull.CullsAll() {
		m.stats.Culled++
		return nil
	}

	for i, idx := range indices {
		if uint32(idx) >= numVerts {
			return fmt.Errorf("indexed draw, index %d = %d with %d verts: %w", i, idx, numVerts, ErrIndexOutOfRange)
		}
	}
	if err := m.reserve(class, numVerts, uint32(len(indices))); err != nil {
		return fmt.Errorf("indexed draw (%d verts): %w", numVerts, err)
	}

	base := m.gen.GetNumVerts()
	m.scratch = m.scratch[:0]
	for _, idx := range indices {
		m.scratch = append(m.scratch, uint16(base+uint32(idx)))
	}
	m.gen.AddExternalIndices(m.scratch, numVerts)
	return nil
}

// reserve makes sure the open pass can take a draw of class, consuming
// nverts vertices and nidx indices, submitting it if it can't.
func (m *Manager) reserve(class gx.PrimitiveClass, nverts, nidx uint32) error {
	if nverts > indexgen.MaxIndex || nidx > uint32(m.gen.Capacity()) {
		return ErrDrawTooLarge
	}

	if m.open {
		var reason string
		switch {
		case class != m.class:
			reason = "primitive class change"
		case m.gen.GetRemainingIndices() < nverts:
			reason = "index space exhausted"
		case uint32(m.gen.FreeIndices()) < nidx:
			reason = "index buffer full"
		}
		if reason != "" {
			if err := m.flush(reason); err != nil {
				return err
			}
		}
	}

	if !m.open {
		m.class = class
		m.open = true
	}
	return nil
}

// Flush submits the open pass, if any.
func (m *Manager) Flush() error {
	if !m.open {
		return nil
	}
	return m.flush("explicit")
}

func (m *Manager) flush(reason string) error {
	defer func() {
		m.open = false
		m.gen.Start(m.buf)
	}()

	nidx := m.gen.GetIndexLen()
	log.ModVertex.DebugZ("flush").
		String("reason", reason).
		Stringer("class", m.class).
		Uint("verts", m.gen.GetNumVerts()).
		Uint("indices", nidx).
		End()

	// Only degenerate draws, nothing to draw.
	if nidx == 0 {
		return nil
	}

	cull, front := bp.PipelineCull(m.cull, m.class == gx.ClassTriangles)
	b := Batch{
		Class:       m.class,
		Topology:    m.class.Topology(),
		IndexFormat: gputypes.IndexFormatUint16,
		CullMode:    cull,
		FrontFace:   front,
		NumVerts:    m.gen.GetNumVerts(),
		Indices:     m.gen.Indices(),
	}
	if err := m.sink.Submit(b); err != nil {
		return fmt.Errorf("submit batch: %w", err)
	}

	m.stats.Batches++
	m.stats.Vertices += uint64(b.NumVerts)
	m.stats.Indices += uint64(nidx)
	return nil
}
