package indexgen

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gxvideo/emu/log"
	"gxvideo/video/bp"
	"gxvideo/video/gx"
)

func generate(cull bp.CullMode, base uint32, prim gx.Primitive, numVerts uint32) []uint16 {
	var g Generator
	g.Start(make([]uint16, 1024))
	g.SetCullMode(cull)
	g.base = base
	g.AddIndices(prim, numVerts)
	return g.Indices()
}

func TestExpansion(t *testing.T) {
	tests := []struct {
		name  string
		prim  gx.Primitive
		verts uint32
		cull  bp.CullMode
		base  uint32
		want  []uint16
	}{
		{"list/back", gx.Triangles, 3, bp.CullBack, 0, []uint16{0, 1, 2}},
		{"list/front", gx.Triangles, 3, bp.CullFront, 0, []uint16{0, 2, 1}},
		{"list/none", gx.Triangles, 3, bp.CullNone, 0, []uint16{0, 1, 2}},
		{"list/all", gx.Triangles, 3, bp.CullAll, 0, []uint16{0, 1, 2}},
		{"list/trailing", gx.Triangles, 8, bp.CullBack, 0, []uint16{0, 1, 2, 3, 4, 5}},
		{"list/short", gx.Triangles, 2, bp.CullBack, 0, []uint16{}},
		{"list/base", gx.Triangles, 3, bp.CullBack, 100, []uint16{100, 101, 102}},

		{"strip/back", gx.TriangleStrip, 5, bp.CullBack, 0, []uint16{0, 1, 2, 1, 3, 2, 2, 3, 4}},
		{"strip/front", gx.TriangleStrip, 5, bp.CullFront, 0, []uint16{0, 2, 1, 1, 2, 3, 2, 4, 3}},
		{"strip/2verts", gx.TriangleStrip, 2, bp.CullBack, 0, []uint16{}},
		{"strip/1vert", gx.TriangleStrip, 1, bp.CullBack, 0, []uint16{}},
		{"strip/0verts", gx.TriangleStrip, 0, bp.CullBack, 0, []uint16{}},

		{"fan/back", gx.TriangleFan, 5, bp.CullBack, 0, []uint16{0, 1, 2, 0, 2, 3, 0, 3, 4}},
		{"fan/front", gx.TriangleFan, 5, bp.CullFront, 0, []uint16{0, 2, 1, 0, 3, 2, 0, 4, 3}},
		{"fan/base", gx.TriangleFan, 4, bp.CullBack, 20, []uint16{20, 21, 22, 20, 22, 23}},
		{"fan/1vert", gx.TriangleFan, 1, bp.CullBack, 10, []uint16{10, 10, 10}},
		{"fan/2verts", gx.TriangleFan, 2, bp.CullBack, 10, []uint16{10, 11, 11}},
		{"fan/2verts-front", gx.TriangleFan, 2, bp.CullFront, 10, []uint16{10, 11, 11}},
		{"fan/0verts", gx.TriangleFan, 0, bp.CullBack, 10, []uint16{}},

		{"quads/back", gx.Quads, 8, bp.CullBack, 0, []uint16{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}},
		{"quads/front", gx.Quads, 8, bp.CullFront, 0, []uint16{0, 2, 1, 0, 3, 2, 4, 6, 5, 4, 7, 6}},
		{"quads/3trailing", gx.Quads, 7, bp.CullBack, 0, []uint16{0, 1, 2, 0, 2, 3, 4, 5, 6}},
		{"quads/3trailing-front", gx.Quads, 3, bp.CullFront, 0, []uint16{0, 2, 1}},
		{"quads/2trailing", gx.Quads, 6, bp.CullBack, 0, []uint16{0, 1, 2, 0, 2, 3}},
		{"quads/1trailing", gx.Quads, 5, bp.CullBack, 0, []uint16{0, 1, 2, 0, 2, 3}},
		{"quads2/back", gx.QuadsNonstandard, 4, bp.CullBack, 8, []uint16{8, 9, 10, 8, 10, 11}},

		{"lines", gx.Lines, 4, bp.CullFront, 0, []uint16{0, 1, 2, 3}},
		{"lines/odd", gx.Lines, 5, bp.CullBack, 0, []uint16{0, 1, 2, 3}},
		{"lines/1vert", gx.Lines, 1, bp.CullBack, 0, []uint16{}},

		{"linestrip", gx.LineStrip, 4, bp.CullBack, 0, []uint16{0, 1, 1, 2, 2, 3}},
		{"linestrip/base", gx.LineStrip, 3, bp.CullFront, 50, []uint16{50, 51, 51, 52}},
		{"linestrip/1vert", gx.LineStrip, 1, bp.CullBack, 0, []uint16{}},
		{"linestrip/0verts", gx.LineStrip, 0, bp.CullBack, 0, []uint16{}},

		{"points", gx.Points, 3, bp.CullBack, 7, []uint16{7, 8, 9}},
		{"points/0verts", gx.Points, 0, bp.CullBack, 7, []uint16{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generate(tt.cull, tt.base, tt.prim, tt.verts)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AddIndices(%v, %d) mismatch (-want +got):\n%s", tt.prim, tt.verts, diff)
			}
		})
	}
}

func TestIndexCountAndBounds(t *testing.T) {
	const base = 1000

	for prim := gx.Primitive(0); prim < gx.NumPrimitives; prim++ {
		for _, cull := range []bp.CullMode{bp.CullNone, bp.CullBack, bp.CullFront} {
			for n := uint32(0); n <= 64; n++ {
				got := generate(cull, base, prim, n)
				if want := IndexCount(prim, n); uint32(len(got)) != want {
					t.Fatalf("%v/%v: %d verts gave %d indices, want %d", prim, cull, n, len(got), want)
				}
				for i, idx := range got {
					if uint32(idx) < base || uint32(idx) >= base+n {
						t.Fatalf("%v/%v: %d verts, index[%d] = %d out of batch [%d, %d)",
							prim, cull, n, i, idx, base, base+n)
					}
				}
				if prim == gx.TriangleFan {
					for i := 0; i < len(got); i += 3 {
						if got[i] != base {
							t.Fatalf("fan/%v: %d verts, triangle %d pivot = %d, want %d", cull, n, i/3, got[i], base)
						}
					}
				}
			}
		}
	}
}

func TestIndexCountExamples(t *testing.T) {
	tests := []struct {
		prim  gx.Primitive
		verts uint32
		want  uint32
	}{
		{gx.Triangles, 9, 9},
		{gx.Triangles, 10, 9},
		{gx.Quads, 7, 9},
		{gx.Quads, 11, 15},
		{gx.QuadsNonstandard, 11, 15},
		{gx.TriangleFan, 1, 3},
		{gx.LineStrip, 10, 18},
		{gx.Primitive(8), 10, 0},
	}
	for _, tt := range tests {
		if got := IndexCount(tt.prim, tt.verts); got != tt.want {
			t.Errorf("IndexCount(%v, %d) = %d, want %d", tt.prim, tt.verts, got, tt.want)
		}
	}
}

func TestNumVerts(t *testing.T) {
	var g Generator
	g.Start(make([]uint16, 4096))

	calls := []struct {
		prim  gx.Primitive
		verts uint32
	}{
		{gx.Triangles, 10},
		{gx.TriangleStrip, 2},  // no indices
		{gx.Quads, 6},          // trailing verts dropped
		{gx.Primitive(11), 17}, // unknown primitive
		{gx.Points, 0},
		{gx.LineStrip, 1},
		{gx.TriangleFan, 7},
	}

	var sum, nidx uint32
	for _, c := range calls {
		g.AddIndices(c.prim, c.verts)
		sum += c.verts
		nidx += IndexCount(c.prim, c.verts)
		if got := g.GetNumVerts(); got != sum {
			t.Fatalf("after AddIndices(%v, %d): GetNumVerts() = %d, want %d", c.prim, c.verts, got, sum)
		}
		if got := g.GetIndexLen(); got != nidx {
			t.Fatalf("after AddIndices(%v, %d): GetIndexLen() = %d, want %d", c.prim, c.verts, got, nidx)
		}
	}

	// Indices of the fan start after all the vertices consumed before it.
	idx := g.Indices()
	if got, want := idx[len(idx)-15], uint16(sum-7); got != want {
		t.Errorf("fan pivot = %d, want %d", got, want)
	}
}

func TestStart(t *testing.T) {
	var g Generator

	buf1 := make([]uint16, 16)
	g.Start(buf1)
	g.AddIndices(gx.Triangles, 6)
	g.AddIndices(gx.Points, 2)

	buf2 := make([]uint16, 8)
	g.Start(buf2)
	if g.GetNumVerts() != 0 || g.GetIndexLen() != 0 {
		t.Fatalf("after Start: GetNumVerts() = %d, GetIndexLen() = %d, want 0, 0", g.GetNumVerts(), g.GetIndexLen())
	}
	if g.Capacity() != len(buf2) || g.FreeIndices() != len(buf2) {
		t.Fatalf("after Start: Capacity() = %d, FreeIndices() = %d, want %d", g.Capacity(), g.FreeIndices(), len(buf2))
	}

	g.AddIndices(gx.Triangles, 3)
	if diff := cmp.Diff([]uint16{0, 1, 2, 0, 0, 0, 0, 0}, buf2); diff != "" {
		t.Errorf("second pass didn't write at the start of the new buffer (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint16{0, 1, 2, 3, 4, 5, 6, 7}, buf1[:8]); diff != "" {
		t.Errorf("second pass wrote into the old buffer (-want +got):\n%s", diff)
	}
}

func TestRemainingIndices(t *testing.T) {
	var g Generator
	g.Start(make([]uint16, MaxIndex+16))

	if got := g.GetRemainingIndices(); got != 65534 {
		t.Fatalf("GetRemainingIndices() = %d, want 65534", got)
	}

	g.AddIndices(gx.Points, 65000)
	if got := g.GetRemainingIndices(); got != 534 {
		t.Fatalf("GetRemainingIndices() = %d, want 534", got)
	}

	g.AddIndices(gx.Points, 534)
	if got := g.GetRemainingIndices(); got != 0 {
		t.Fatalf("GetRemainingIndices() = %d, want 0", got)
	}
	if got := g.Indices()[len(g.Indices())-1]; got != 65533 {
		t.Fatalf("last index = %d, want 65533", got)
	}

	// Past the limit is a caller bug, but the query doesn't wrap.
	g.AddIndices(gx.Primitive(12), 1)
	if got := g.GetRemainingIndices(); got != 0 {
		t.Fatalf("GetRemainingIndices() = %d, want 0", got)
	}
}

func TestAddExternalIndices(t *testing.T) {
	var g Generator
	buf := make([]uint16, 32)
	g.Start(buf)
	g.AddIndices(gx.Triangles, 3)

	ext := []uint16{3, 5, 4, 4, 5, 6, 3}
	g.AddExternalIndices(ext, 4)

	if got := g.GetIndexLen(); got != 3+uint32(len(ext)) {
		t.Errorf("GetIndexLen() = %d, want %d", got, 3+len(ext))
	}
	if got := g.GetNumVerts(); got != 7 {
		t.Errorf("GetNumVerts() = %d, want 7", got)
	}
	if diff := cmp.Diff(ext, buf[3:3+len(ext)]); diff != "" {
		t.Errorf("external indices mismatch (-want +got):\n%s", diff)
	}

	// Generated indices continue after the external vertices.
	g.AddIndices(gx.Points, 1)
	if got := g.Indices()[g.GetIndexLen()-1]; got != 7 {
		t.Errorf("index after external run = %d, want 7", got)
	}
}

func TestBufferOverflowPanics(t *testing.T) {
	var g Generator
	g.Start(make([]uint16, 5))

	defer func() {
		if recover() == nil {
			t.Errorf("writing past the buffer end should panic")
		}
	}()
	g.AddIndices(gx.Triangles, 6)
}

func TestNonstandardQuadsNotice(t *testing.T) {
	var out bytes.Buffer
	log.SetOutput(&out)
	defer log.SetOutput(os.Stderr)

	var g Generator
	g.Start(make([]uint16, 64))
	g.AddIndices(gx.QuadsNonstandard, 4)
	g.AddIndices(gx.QuadsNonstandard, 4)

	if n := strings.Count(out.String(), "GX_DRAW_QUADS_2"); n != 1 {
		t.Errorf("notice logged %d times, want 1:\n%s", n, out.String())
	}

	var g2 Generator
	g2.Start(make([]uint16, 64))
	g2.AddIndices(gx.Quads, 4)
	g2.AddIndices(gx.Quads, 4)
	if diff := cmp.Diff(g2.Indices(), g.Indices()); diff != "" {
		t.Errorf("nonstandard quads differ from quads (-quads +quads2):\n%s", diff)
	}

	// New pass, new notice.
	g.Start(make([]uint16, 64))
	g.AddIndices(gx.QuadsNonstandard, 4)
	if n := strings.Count(out.String(), "GX_DRAW_QUADS_2"); n != 2 {
		t.Errorf("notice logged %d times, want 2", n)
	}
}

func BenchmarkAddIndices(b *testing.B) {
	for prim := gx.Primitive(0); prim < gx.NumPrimitives; prim++ {
		if prim == gx.QuadsNonstandard {
			continue
		}
		b.Run(prim.String(), func(b *testing.B) {
			const verts = 240
			var g Generator
			buf := make([]uint16, 256*IndexCount(prim, verts))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if i%256 == 0 {
					g.Start(buf)
				}
				g.AddIndices(prim, verts)
			}
		})
	}
}
