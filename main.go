package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gogpu/gputypes"

	"gxvideo/emu"
	"gxvideo/emu/log"
	"gxvideo/video/bp"
	"gxvideo/video/drawlist"
	"gxvideo/video/gx"
	"gxvideo/video/indexgen"
	"gxvideo/video/vertexmgr"
)

func main() {
	cli := parseArgs(os.Args[1:])

	cfgPath := cli.Config
	if cfgPath == "" {
		cfgPath = emu.DefaultConfigPath()
	}
	cfg := emu.LoadConfigOrDefault(cfgPath)
	checkf(enableLogModules(logModuleNames(cli, cfg)), "invalid log modules")

	switch cli.mode {
	case expandMode:
		expandMain(cli.Expand, cfg)
	case tableMode:
		tableMain(cli.Table)
	case benchMode:
		benchMain(cli.Bench)
	case initConfigMode:
		initConfigMain(cli.InitConfig, cfgPath)
	case versionMode:
		printVersion()
	}
}

// expandMain encodes each draw list as a frame and prints its batches.
func expandMain(args Expand, cfg emu.Config) {
	defer args.Out.Close()

	lists := make([]drawlist.List, 0, len(args.Lists))
	for _, path := range args.Lists {
		l, err := drawlist.Load(path)
		checkf(err, "failed to load draw list")
		lists = append(lists, l)
	}

	workers := args.Workers
	if workers < 0 {
		workers = cfg.General.Workers
	}

	start := time.Now()
	frames, err := vertexmgr.EncodeFrames(context.Background(), cfg.Video, lists, workers)
	checkf(err, "failed to encode frames")
	log.ModVideo.InfoZ("frames encoded").
		Int("frames", len(frames)).
		Duration("elapsed", time.Since(start)).
		End()

	w := bufio.NewWriter(&args.Out)
	for _, f := range frames {
		writeFrame(w, f)
	}
	checkf(w.Flush(), "failed to write batches")
}

func writeFrame(w io.Writer, f vertexmgr.Frame) {
	fmt.Fprintf(w, "frame %s: %d batches, %d draws (%d culled), %d verts, %d indices\n",
		f.Name, len(f.Batches), f.Stats.Draws, f.Stats.Culled, f.Stats.Vertices, f.Stats.Indices)

	for i, b := range f.Batches {
		fmt.Fprintf(w, "  batch %d: %s cull=%s verts=%d indices=%d\n",
			i, b.Class, cullName(b.CullMode), b.NumVerts, len(b.Indices))
		writeIndices(w, "    ", b.Indices)
	}
}

func writeIndices(w io.Writer, indent string, indices []uint16) {
	const perLine = 24

	var line []byte
	for i, idx := range indices {
		if i%perLine == 0 {
			if line != nil {
				fmt.Fprintf(w, "%s\n", line)
			}
			line = append(line[:0], indent...)
		} else {
			line = append(line, ' ')
		}
		line = strconv.AppendUint(line, uint64(idx), 10)
	}
	if line != nil {
		fmt.Fprintf(w, "%s\n", line)
	}
}

func cullName(m gputypes.CullMode) string {
	switch m {
	case gputypes.CullModeNone:
		return "none"
	case gputypes.CullModeFront:
		return "front"
	case gputypes.CullModeBack:
		return "back"
	}
	return "unknown"
}

// tableMain prints the indices generated by a single draw.
func tableMain(args Table) {
	prim := gx.Primitive(args.Prim)
	g, err := tableDraw(prim, args.Count, args.Cull, args.Base)
	checkf(err, "invalid draw")

	fmt.Printf("%s (op 0x%02x), %d verts, cull %s, base %d: %d indices\n",
		prim, gx.EncodeDraw(prim, 0), args.Count, g.CullMode(), args.Base, g.GetIndexLen())
	for i := 0; i+3 <= len(g.Indices()) && prim.Class() == gx.ClassTriangles; i += 3 {
		idx := g.Indices()[i : i+3]
		fmt.Printf("  tri %-4d %d %d %d\n", i/3, idx[0], idx[1], idx[2])
	}
	if prim.Class() != gx.ClassTriangles {
		writeIndices(os.Stdout, "  ", g.Indices())
	}
	fmt.Printf("remaining vertex indices: %d\n", g.GetRemainingIndices())
}

// tableDraw runs a single draw of count vertices of prim, starting at vertex
// base, on a new generator.
func tableDraw(prim gx.Primitive, count uint32, cull bp.CullMode, base uint32) (*indexgen.Generator, error) {
	if uint64(base)+uint64(count) > indexgen.MaxIndex {
		return nil, fmt.Errorf("base %d + %d verts is past the last vertex index (%d)", base, count, indexgen.MaxIndex)
	}

	var g indexgen.Generator
	g.Start(make([]uint16, indexgen.IndexCount(prim, count)))
	g.SetCullMode(cull)
	if base != 0 {
		// Unknown primitives only consume vertices.
		g.AddIndices(gx.Primitive(0xFF), base)
	}
	g.AddIndices(prim, count)
	return &g, nil
}

// initConfigMain writes the default configuration at path.
func initConfigMain(args InitConfig, path string) {
	if _, err := os.Stat(path); err == nil && !args.Force {
		fatalf("%s already exists, use --force to overwrite it", path)
	}
	checkf(emu.SaveConfig(path, emu.DefaultConfig()), "failed to write configuration")
	fmt.Println("configuration written to", path)
}

// benchMain times AddIndices for each primitive.
func benchMain(args Bench) {
	if args.Verts == 0 || args.Iterations <= 0 {
		fatalf("verts and iterations must be positive")
	}

	for prim := gx.Primitive(0); prim < gx.NumPrimitives; prim++ {
		if prim == gx.QuadsNonstandard {
			continue
		}

		nidx := indexgen.IndexCount(prim, args.Verts)
		drawsPerPass := max(1, int(indexgen.MaxIndex/args.Verts))
		buf := make([]uint16, int(nidx)*drawsPerPass)

		var g indexgen.Generator
		start := time.Now()
		for i := 0; i < args.Iterations; i++ {
			if i%drawsPerPass == 0 {
				g.Start(buf)
			}
			g.AddIndices(prim, args.Verts)
		}
		elapsed := time.Since(start)

		perDraw := elapsed / time.Duration(args.Iterations)
		mverts := float64(args.Verts) * float64(args.Iterations) / elapsed.Seconds() / 1e6
		fmt.Printf("%-16s %8s/draw %10.1f Mverts/s\n", prim, perDraw, mverts)
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("gxvideo", version)
}
