package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/glb2step/internal/config"
	"github.com/philipparndt/glb2step/internal/convert"
	"github.com/philipparndt/glb2step/internal/inspect"
	"github.com/philipparndt/glb2step/internal/ui"
	"github.com/philipparndt/glb2step/version"
)

type CLI struct {
	Convert *ConvertCmd `cmd:"" help:"Convert GLB/glTF files to STEP (with STL fallback artifact)"`
	Inspect *InspectCmd `cmd:"" help:"Inspect a GLB/glTF or STL file and show mesh statistics"`
	Config  *ConfigCmd  `cmd:"" help:"Show configuration information"`
	Version *VersionCmd `cmd:"" help:"Show version information"`
}

type ConvertCmd struct {
	Output string   `help:"Output STEP file path (single input only; default: next to a job workspace)" short:"o"`
	Config string   `help:"YAML configuration file with conversion defaults" short:"c"`
	Jobs   int      `help:"Maximum number of conversions running in parallel" short:"j" default:"4"`
	Files  []string `arg:"" help:"GLB/glTF files to convert"`

	ComponentFraction *float64 `help:"Small-component removal threshold (fraction of total triangles)"`
	MaxHoleEdges      *int     `help:"Hole-loop size limit for hole filling"`
	SewingTolerance   *float64 `help:"Vertex-matching tolerance for face sewing"`
	Timeout           *int     `help:"Fallback backend timeout in seconds"`
	Freecad           *string  `help:"FreeCAD binary to use for the fallback backend"`
	Workdir           *string  `help:"Temporary-file area for job workspaces"`
}

// Help adds usage examples to the help output
func (c *ConvertCmd) Help() string {
	return renderConvertHelp()
}

func (c *ConvertCmd) options() (convert.Options, error) {
	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return convert.Options{}, err
		}
		cfg = loaded
	}
	opts := cfg.Options()

	if c.ComponentFraction != nil {
		opts.ComponentFraction = *c.ComponentFraction
	}
	if c.MaxHoleEdges != nil {
		opts.MaxHoleEdges = *c.MaxHoleEdges
	}
	if c.SewingTolerance != nil {
		opts.SewingTolerance = *c.SewingTolerance
	}
	if c.Timeout != nil {
		opts.FallbackTimeout = time.Duration(*c.Timeout) * time.Second
	}
	if c.Freecad != nil {
		opts.FreeCADBinary = *c.Freecad
	}
	if c.Workdir != nil {
		opts.WorkDir = *c.Workdir
	}
	return opts, nil
}

func (c *ConvertCmd) Run() error {
	if len(c.Files) == 0 {
		return fmt.Errorf("no input files specified")
	}
	if c.Output != "" && len(c.Files) > 1 {
		return fmt.Errorf("-o can only be used with a single input file")
	}

	opts, err := c.options()
	if err != nil {
		return err
	}

	if len(c.Files) == 1 {
		os.Exit(c.runSingle(opts))
	}
	os.Exit(c.runMany(opts))
	return nil
}

// runSingle converts one file with live progress output
func (c *ConvertCmd) runSingle(opts convert.Options) int {
	conv := convert.New(opts)
	conv.Progress = func(state convert.State, detail string) {
		ui.PrintStep(fmt.Sprintf("%-13s %s", state, detail))
	}

	result, err := conv.Convert(context.Background(), c.Files[0], c.Output)
	printResult(c.Files[0], result, err)
	return result.Status.ExitCode()
}

// runMany converts several files concurrently; each job is an isolated
// unit of work with its own workspace. The worst status wins the exit
// code.
func (c *ConvertCmd) runMany(opts convert.Options) int {
	conv := convert.New(opts)

	results := make([]*convert.Result, len(c.Files))
	errs := make([]error, len(c.Files))

	var g errgroup.Group
	g.SetLimit(c.Jobs)
	for i, file := range c.Files {
		i, file := i, file
		g.Go(func() error {
			results[i], errs[i] = conv.Convert(context.Background(), file, "")
			return nil
		})
	}
	g.Wait()

	worst := 0
	for i, file := range c.Files {
		printResult(file, results[i], errs[i])
		if code := results[i].Status.ExitCode(); code > worst {
			worst = code
		}
	}
	return worst
}

func printResult(input string, result *convert.Result, err error) {
	switch result.Status {
	case convert.StatusStep:
		ui.PrintSuccess(fmt.Sprintf("%s → %s", input, result.StepPath))
		ui.PrintInfo("STL artifact: " + result.STLPath)
		if !result.Report.Clean() {
			ui.PrintInfo("repair: " + result.Report.Summary())
		}
	case convert.StatusSTLOnly:
		ui.PrintWarning(fmt.Sprintf("%s: STEP reconstruction failed, STL only", input))
		ui.PrintInfo("STL artifact: " + result.STLPath)
		ui.PrintInfo(result.Reason)
	case convert.StatusFailed:
		msg := result.Reason
		if msg == "" && err != nil {
			msg = err.Error()
		}
		ui.PrintError(fmt.Sprintf("%s: %s", input, msg))
	}
}

type InspectCmd struct {
	File string `arg:"" help:"GLB/glTF or STL file to inspect"`
}

func (c *InspectCmd) Run() error {
	inspector := inspect.NewInspector()
	return inspector.Inspect(c.File)
}

type ConfigCmd struct {
	Example bool `help:"Print an example configuration file"`
}

func (c *ConfigCmd) Run() error {
	if c.Example {
		return printExampleConfig()
	}
	cfg := config.Default()
	ui.PrintHeader("Default configuration")
	ui.PrintKeyValue("component_fraction", fmt.Sprintf("%g", cfg.ComponentFraction))
	ui.PrintKeyValue("max_hole_edges", fmt.Sprintf("%d", cfg.MaxHoleEdges))
	ui.PrintKeyValue("sewing_tolerance", fmt.Sprintf("%g", cfg.SewingTolerance))
	ui.PrintKeyValue("fallback_timeout_seconds", fmt.Sprintf("%d", cfg.FallbackTimeoutSeconds))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.Get().String())
	return nil
}

// Parse parses command line arguments and executes the appropriate command
func Parse() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("glb2step"),
		kong.Description("GLB/glTF to STEP converter with mesh repair and STL fallback"),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(2)
	}
}
