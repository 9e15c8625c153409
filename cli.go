package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"gxvideo/emu"
	"gxvideo/emu/log"
	"gxvideo/video/bp"
	"gxvideo/video/gx"
)

type mode byte

const (
	expandMode     mode = iota // Encode draw lists
	tableMode                  // Show indices of a single draw
	benchMode                  // Time index generation
	initConfigMode             // Write default configuration
	versionMode                // Show gxvideo version
)

type (
	CLI struct {
		Expand     Expand     `cmd:"" help:"Encode draw lists into index buffer batches."`
		Table      Table      `cmd:"" help:"Show the indices generated for a single draw."`
		Bench      Bench      `cmd:"" help:"Measure index generation speed."`
		InitConfig InitConfig `cmd:"" name:"init-config" help:"Write the default configuration file."`
		Version    Version    `cmd:"" help:"Show gxvideo version."`

		Config string     `name:"config" help:"${config_help}" type:"path" placeholder:"FILE"`
		Log    logModules `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Expand struct {
		Lists   []string `arg:"" name:"/path/to/list.toml" help:"${lists_help}" type:"existingfile"`
		Out     outfile  `name:"out" help:"Write batches to file." placeholder:"FILE|stdout|stderr" default:"stdout"`
		Workers int      `name:"workers" help:"${workers_help}" default:"-1"`
	}

	Table struct {
		Prim  primitive   `arg:"" name:"primitive" help:"${prim_help}"`
		Count uint32      `arg:"" name:"count" help:"Number of vertices."`
		Cull  bp.CullMode `name:"cull" help:"Cull mode (none, back, front, all)." default:"back"`
		Base  uint32      `name:"base" help:"Base vertex." default:"0"`
	}

	Bench struct {
		Verts      uint32 `name:"verts" help:"Vertices per draw." default:"240"`
		Iterations int    `name:"iterations" help:"Draws per primitive." default:"1000000"`
	}

	InitConfig struct {
		Force bool `name:"force" help:"Overwrite an existing configuration file."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"config_help":  "Configuration file. (default: in the user config directory)",
	"log_help":     "Enable logging for specified modules.",
	"lists_help":   "Draw lists to encode, each one as its own frame.",
	"workers_help": "Frames encoded concurrently. (default: from config, 0 means one per CPU)",
	"prim_help":    "Primitive: " + strings.Join(primitiveNames(), ", ") + ".",
}

func primitiveNames() []string {
	var names []string
	for p := gx.Primitive(0); p < gx.NumPrimitives; p++ {
		names = append(names, p.String())
	}
	return names
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("gxvideo"),
		kong.Description("GX primitive to index buffer converter."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "expand"):
		cfg.mode = expandMode
	case strings.HasPrefix(ctx.Command(), "table"):
		cfg.mode = tableMode
	case ctx.Command() == "bench":
		cfg.mode = benchMode
	case ctx.Command() == "init-config":
		cfg.mode = initConfigMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if ctx.Command() == "" || strings.HasPrefix(ctx.Command(), "expand") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModules []string

// Decode decodes and checks a comma-separated list of module names. The
// modules are enabled once the configuration is loaded, replacing the ones
// it lists.
//
// Implements kong.MapperValue interface.
func (lm *logModules) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	names := strings.Split(tok.Value.(string), ",")
	if _, _, err := parseLogModules(names); err != nil {
		return err
	}
	*lm = names
	return nil
}

// parseLogModules returns the mask of the modules listed in names, and
// whether logging should be disabled altogether.
func parseLogModules(names []string) (mask log.ModuleMask, nolog bool, err error) {
	allLogs := false

	for _, v := range names {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		case "":
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, false, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, false, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, false, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, true, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, false, nil
}

func enableLogModules(names []string) error {
	mask, nolog, err := parseLogModules(names)
	if err != nil {
		return err
	}
	if nolog {
		log.Disable()
		return nil
	}
	log.EnableDebugModules(mask)
	return nil
}

// logModuleNames returns the log modules to enable: the ones given with
// --log if any, otherwise the ones of the configuration.
func logModuleNames(cli CLI, cfg emu.Config) []string {
	if cli.Log != nil {
		return cli.Log
	}
	return cfg.General.LogModules
}

type primitive gx.Primitive

// Implements kong.MapperValue interface.
func (p *primitive) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	prim, err := gx.ParsePrimitive(tok.Value.(string))
	if err != nil {
		return err
	}
	*p = primitive(prim)
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
