package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"mbxctl/log"
)

type mode byte

const (
	bootMode mode = iota
	sendMode
	pumpMode
	peekMode
	pokeMode
	serveMode
	versionMode
)

type (
	CLI struct {
		Boot  Boot  `cmd:"" help:"Pulse the coprocessor run control."`
		Send  Send  `cmd:"" help:"Send one frame to a mailbox endpoint."`
		Pump  Pump  `cmd:"" help:"Poll the outbox and dispatch frames to endpoints."`
		Peek  Peek  `cmd:"" help:"Read a mailbox-relative register."`
		Poke  Poke  `cmd:"" help:"Write a mailbox-relative register."`
		Serve Serve `cmd:"" help:"Run the simulated coprocessor behind the proxy server."`

		Version Version `cmd:"" help:"Show mbxctl version."`

		Proxy string     `help:"Proxy address, overrides the config file." placeholder:"host:port"`
		Base  uint64     `help:"Mailbox base address, overrides the config file." placeholder:"addr"`
		Log   logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Boot struct{}

	Send struct {
		EP     uint8  `name:"ep" help:"Destination endpoint identifier." required:""`
		Data   uint64 `arg:"" name:"data" help:"64-bit data word."`
		Header uint64 `name:"header" help:"Raw header word; its EP field is overwritten with --ep."`
	}

	Pump struct {
		Boot     bool     `name:"boot" help:"Pulse the run control before pumping."`
		EPs      []uint8  `name:"ep" help:"Endpoint identifiers to accept (catch-all logger endpoints)."`
		Interval int      `name:"interval" help:"Poll interval between pump cycles, in milliseconds." default:"1"`
		Trace    *outfile `name:"trace" help:"Write frame trace lines." placeholder:"FILE|stdout|stderr"`
	}

	Peek struct {
		Offset uint64 `arg:"" name:"offset" help:"Register offset from the mailbox base."`
		Width  int    `name:"width" help:"Access width in bits (32 or 64)." default:"32"`
	}

	Poke struct {
		Offset uint64 `arg:"" name:"offset" help:"Register offset from the mailbox base."`
		Value  uint64 `arg:"" name:"value" help:"Value to write."`
		Width  int    `name:"width" help:"Access width in bits (32 or 64)." default:"32"`
	}

	Serve struct {
		Port int `name:"port" help:"TCP port for the proxy server." default:"9282"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help": "Enable debug logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("mbxctl"),
		kong.Description("Coprocessor mailbox bring-up tool."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch {
	case ctx.Command() == "boot":
		cfg.mode = bootMode
	case strings.HasPrefix(ctx.Command(), "send"):
		cfg.mode = sendMode
	case ctx.Command() == "pump":
		cfg.mode = pumpMode
	case strings.HasPrefix(ctx.Command(), "peek"):
		cfg.mode = peekMode
	case strings.HasPrefix(ctx.Command(), "poke"):
		cfg.mode = pokeMode
	case ctx.Command() == "serve":
		cfg.mode = serveMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "pump") {
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

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
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
