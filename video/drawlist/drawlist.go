// Package drawlist reads sequences of BP loads and draw commands described
// in TOML, used to replay a frame's geometry without an emulated console.
//
//	name = "hud"
//
//	[[cmd]]
//	cull = "front"        # shorthand for a masked GENMODE load
//
//	[[cmd]]
//	addr = 0x00           # raw BP load
//	bp = 0x004000
//
//	[[cmd]]
//	prim = "triangle_fan" # or op = 0xA0
//	count = 5
//
//	[[cmd]]
//	prim = "triangles"    # pre-built indices, relative to the draw
//	indices = [0, 2, 1]
//	count = 3
package drawlist

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"gxvideo/video/bp"
	"gxvideo/video/gx"
)

type Kind uint8

const (
	KindBP      Kind = iota // BP register load
	KindDraw                // draw, indices generated
	KindIndexed             // draw, indices provided
)

func (k Kind) String() string {
	switch k {
	case KindBP:
		return "bp"
	case KindDraw:
		return "draw"
	case KindIndexed:
		return "indexed"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Cmd is a single command of a draw list.
type Cmd struct {
	Kind Kind

	// KindBP: full BP load command, address in the top byte.
	BP uint32

	// KindDraw, KindIndexed.
	Prim    gx.Primitive
	Count   uint32
	Indices []uint16 // KindIndexed only
}

// List is a named sequence of commands.
type List struct {
	Name string
	Cmds []Cmd
}

// NumVerts returns the total number of vertices drawn by l.
func (l *List) NumVerts() uint32 {
	var n uint32
	for _, c := range l.Cmds {
		if c.Kind != KindBP {
			n += c.Count
		}
	}
	return n
}

type rawList struct {
	Name string   `toml:"name"`
	Cmds []rawCmd `toml:"cmd"`
}

type rawCmd struct {
	Addr *uint8  `toml:"addr"`
	BP   *uint32 `toml:"bp"`
	Cull string  `toml:"cull"`

	Prim    string   `toml:"prim"`
	Op      *uint8   `toml:"op"`
	Count   *uint32  `toml:"count"`
	Indices []uint16 `toml:"indices"`
}

// Load reads the draw list at path. The list is named after the file if it
// doesn't specify a name.
func Load(path string) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return List{}, err
	}
	defer f.Close()

	l, err := Decode(f)
	if err != nil {
		return List{}, fmt.Errorf("%s: %w", path, err)
	}
	if l.Name == "" {
		l.Name = path
	}
	return l, nil
}

// Decode reads a TOML draw list from r.
func Decode(r io.Reader) (List, error) {
	var raw rawList
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return List{}, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return List{}, fmt.Errorf("unknown key %q", undec[0].String())
	}

	l := List{Name: raw.Name}
	for i, rc := range raw.Cmds {
		cmds, err := rc.cmds()
		if err != nil {
			return List{}, fmt.Errorf("cmd %d: %w", i, err)
		}
		l.Cmds = append(l.Cmds, cmds...)
	}
	return l, nil
}

func (rc *rawCmd) cmds() ([]Cmd, error) {
	isBP := rc.BP != nil || rc.Addr != nil
	isCull := rc.Cull != ""
	isDraw := rc.Prim != "" || rc.Op != nil

	switch {
	case isBP && !isCull && !isDraw:
		if rc.BP == nil || rc.Addr == nil {
			return nil, fmt.Errorf("bp load needs both 'addr' and 'bp'")
		}
		if *rc.BP > 0xFFFFFF {
			return nil, fmt.Errorf("bp payload 0x%x doesn't fit in 24 bits", *rc.BP)
		}
		return []Cmd{{Kind: KindBP, BP: bp.LoadCommand(*rc.Addr, *rc.BP)}}, nil

	case isCull && !isBP && !isDraw:
		mode, err := bp.ParseCullMode(rc.Cull)
		if err != nil {
			return nil, err
		}
		cull := uint32(bp.GenMode(0).WithCullMode(mode))
		mask := uint32(bp.GenMode(0).WithCullMode(bp.CullAll))
		return []Cmd{
			{Kind: KindBP, BP: bp.LoadCommand(bp.AddrBPMask, mask)},
			{Kind: KindBP, BP: bp.LoadCommand(bp.AddrGenMode, cull)},
		}, nil

	case isDraw && !isBP && !isCull:
		return rc.drawCmd()
	}
	return nil, fmt.Errorf("command must be exactly one of bp load, cull or draw")
}

func (rc *rawCmd) drawCmd() ([]Cmd, error) {
	var prim gx.Primitive
	switch {
	case rc.Prim != "" && rc.Op != nil:
		return nil, fmt.Errorf("'prim' and 'op' are mutually exclusive")
	case rc.Op != nil:
		p, _, ok := gx.DecodeDraw(*rc.Op)
		if !ok {
			return nil, fmt.Errorf("0x%02x is not a draw opcode", *rc.Op)
		}
		prim = p
	default:
		p, err := gx.ParsePrimitive(rc.Prim)
		if err != nil {
			return nil, err
		}
		prim = p
	}

	if rc.Count == nil {
		return nil, fmt.Errorf("draw needs a vertex 'count'")
	}
	c := Cmd{Kind: KindDraw, Prim: prim, Count: *rc.Count}
	if rc.Indices != nil {
		for i, idx := range rc.Indices {
			if uint32(idx) >= c.Count {
				return nil, fmt.Errorf("index %d (%d) out of range for %d vertices", i, idx, c.Count)
			}
		}
		c.Kind = KindIndexed
		c.Indices = rc.Indices
	}
	return []Cmd{c}, nil
}
