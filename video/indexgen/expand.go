package indexgen

import "gxvideo/video/gx"

// An expandFunc writes the indices re-expressing numVerts vertices of one
// legacy primitive, starting at vertex index, into dst and returns the
// number of indices written. ccw swaps the winding of every triangle.
type expandFunc func(dst []uint16, numVerts, index uint32, ccw bool) int

var expanders = [gx.NumPrimitives]expandFunc{
	gx.Quads:            addQuads,
	gx.QuadsNonstandard: addQuads,
	gx.Triangles:        addList,
	gx.TriangleStrip:    addStrip,
	gx.TriangleFan:      addFan,
	gx.Lines:            addLineList,
	gx.LineStrip:        addLineStrip,
	gx.Points:           addPoints,
}

// winding returns the offsets of the 2nd and 3rd vertex of a triangle.
func winding(ccw bool) (v1, v2 uint32) {
	if ccw {
		return 2, 1
	}
	return 1, 2
}

// Triangles

func addList(dst []uint16, numVerts, index uint32, ccw bool) int {
	v1, v2 := winding(ccw)
	n := 0
	for i := uint32(0); i+3 <= numVerts; i += 3 {
		dst[n+0] = uint16(index + i)
		dst[n+1] = uint16(index + i + v1)
		dst[n+2] = uint16(index + i + v2)
		n += 3
	}
	return n
}

func addStrip(dst []uint16, numVerts, index uint32, ccw bool) int {
	if numVerts < 3 {
		return 0
	}
	wind := uint32(1)
	if ccw {
		wind = 2
	}
	n := 0
	for i := uint32(0); i < numVerts-2; i++ {
		dst[n+0] = uint16(index + i)
		dst[n+1] = uint16(index + i + wind)
		wind ^= 3 // toggle between 1 and 2
		dst[n+2] = uint16(index + i + wind)
		n += 3
	}
	return n
}

// Fans are expanded around their first vertex:
//
//	  2---3
//	 / \ / \
//	1---0---4
//
// gives 012, 023, 034.
//
// One or two vertices still give a single, degenerate, triangle: some games
// (The Last Story) draw fans this way and expect something to come out.
func addFan(dst []uint16, numVerts, index uint32, ccw bool) int {
	if numVerts == 0 {
		return 0
	}
	v1, v2 := winding(ccw)
	if numVerts < 3 {
		last := numVerts - 1
		dst[0] = uint16(index)
		dst[1] = uint16(index + min(v1, last))
		dst[2] = uint16(index + min(v2, last))
		return 3
	}
	n := 0
	for i := uint32(0); i < numVerts-2; i++ {
		dst[n+0] = uint16(index)
		dst[n+1] = uint16(index + i + v1)
		dst[n+2] = uint16(index + i + v2)
		n += 3
	}
	return n
}

// Quads are split along the diagonal starting at their first vertex:
//
//	0---1   4---5
//	|\  |   |\  |
//	| \ |   | \ |
//	|  \|   |  \|
//	3---2   7---6
//
// gives 012, 023, 456, 467.
//
// Three trailing vertices are drawn as a triangle (Wind Waker draws its sun
// rays this way), one or two are dropped.
func addQuads(dst []uint16, numVerts, index uint32, ccw bool) int {
	v1, v2 := winding(ccw)
	v3, v4 := uint32(2), uint32(3)
	if ccw {
		v3, v4 = 3, 2
	}

	n := 0
	i := uint32(0)
	for ; i < numVerts&^3; i += 4 {
		dst[n+0] = uint16(index + i)
		dst[n+1] = uint16(index + i + v1)
		dst[n+2] = uint16(index + i + v2)

		dst[n+3] = uint16(index + i)
		dst[n+4] = uint16(index + i + v3)
		dst[n+5] = uint16(index + i + v4)
		n += 6
	}

	if numVerts&3 == 3 {
		dst[n+0] = uint16(index + i)
		dst[n+1] = uint16(index + i + v1)
		dst[n+2] = uint16(index + i + v2)
		n += 3
	}
	return n
}

// Lines

func addLineList(dst []uint16, numVerts, index uint32, _ bool) int {
	n := 0
	for i := uint32(0); i+2 <= numVerts; i += 2 {
		dst[n+0] = uint16(index + i)
		dst[n+1] = uint16(index + i + 1)
		n += 2
	}
	return n
}

// Line strips are rare compared to line lists, they're converted so that all
// lines can be drawn with the same topology.
func addLineStrip(dst []uint16, numVerts, index uint32, _ bool) int {
	if numVerts < 2 {
		return 0
	}
	n := 0
	for i := uint32(0); i < numVerts-1; i++ {
		dst[n+0] = uint16(index + i)
		dst[n+1] = uint16(index + i + 1)
		n += 2
	}
	return n
}

// Points

func addPoints(dst []uint16, numVerts, index uint32, _ bool) int {
	for i := uint32(0); i < numVerts; i++ {
		dst[i] = uint16(index + i)
	}
	return int(numVerts)
}

// IndexCount returns the number of indices AddIndices writes for numVerts
// vertices of primitive prim. It doesn't depend on the cull mode.
func IndexCount(prim gx.Primitive, numVerts uint32) uint32 {
	switch prim {
	case gx.Quads, gx.QuadsNonstandard:
		n := numVerts / 4 * 6
		if numVerts&3 == 3 {
			n += 3
		}
		return n
	case gx.Triangles:
		return numVerts / 3 * 3
	case gx.TriangleStrip:
		if numVerts < 3 {
			return 0
		}
		return (numVerts - 2) * 3
	case gx.TriangleFan:
		switch {
		case numVerts == 0:
			return 0
		case numVerts < 3:
			return 3
		}
		return (numVerts - 2) * 3
	case gx.Lines:
		return numVerts / 2 * 2
	case gx.LineStrip:
		if numVerts < 2 {
			return 0
		}
		return (numVerts - 1) * 2
	case gx.Points:
		return numVerts
	}
	return 0
}
