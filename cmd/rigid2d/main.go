package main

import (
	"os"

	"github.com/san-kum/rigid2d/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	dt         float64
	frames     int
	seed       int64
	substeps   int
	iterations int
	gravity    float64
	overrides  []string
	every      int
	jsonOut    string
	// run inspection
	bodySel   string
	coords    []string
	xCoord    string
	yCoord    string
	frameIdx  int
	outFile   string
	gifFile   string
	coordName string
	svgWidth  int
	svgHeight int
	// batch tools
	metricName string
	workCost   float64
	gridSpecs  []string
	paramName  string
	paramMin   float64
	paramMax   float64
	steps      int
	scanSteps  int
	trials     int
	perturb    float64
	delta      float64
	saveRuns   bool
	savePreset string
)

// main registers the rigid2d commands and runs the root command. With no
// subcommand it opens the interactive scene picker. It exits with status 1 if
// the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "rigid2d",
		Short:        "2d rigid body physics lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigid2d", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store its frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 1, "record every n-th frame")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the run as JSON to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body coordinates of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodySel, "body", "", "body name or index (default: first dynamic body)")
	plotCmd.Flags().StringSliceVar(&coords, "coord", []string{"y", "vy"}, "coordinates to plot (x,y,vx,vy,angle,omega,speed)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a frame, or a body trajectory with --body, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "recorded frame to draw (default: last)")
	exportSVGCmd.Flags().StringVar(&bodySel, "body", "", "draw this body's trajectory instead of a frame")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene across solver settings",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and impact analysis of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&bodySel, "body", "", "body name or index (default: first dynamic body)")
	analyzeCmd.Flags().StringVar(&coordName, "coord", "y", "coordinate to analyse")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&bodySel, "body", "", "body name or index (default: first dynamic body)")
	phaseCmd.Flags().StringVar(&xCoord, "x", "y", "coordinate on the x axis")
	phaseCmd.Flags().StringVar(&yCoord, "y", "vy", "coordinate on the y axis")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifFile, "gif", "rigid2d.gif", "gif recording path")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run in the viewer",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&savePreset, "save", "", "write the named scene as YAML to this file")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search solver parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneScene,
	}
	sceneFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&metricName, "metric", "max_penetration", "metric to minimise")
	tuneCmd.Flags().Float64Var(&workCost, "cost", 0, "score added per unit of substeps*iterations")
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", []string{"substeps=2:10:5", "iterations=2:10:5"}, "name=lo:hi:n")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRuns, "save", true, "store steps that set save_as")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep one parameter of a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "restitution", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&frames, "frames", 0, "frames per run (default: scene)")

	scanCmd := &cobra.Command{
		Use:   "scan [scene]",
		Short: "plot bounce apexes of one body against a parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().StringVar(&paramName, "param", "restitution", "parameter to scan")
	scanCmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	scanCmd.Flags().Float64Var(&paramMax, "max", 1, "last value")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 20, "number of values")
	scanCmd.Flags().StringVar(&bodySel, "body", "", "body index (default: first dynamic body)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run perturbed copies of a scene in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 16, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 1, "maximum position offset per axis")
	monteCarloCmd.Flags().IntVar(&frames, "frames", 0, "frames per run (default: scene)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "first trial seed")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity [scene]",
		Short: "measure how a small shift of one body grows",
		Args:  cobra.ExactArgs(1),
		RunE:  runSensitivity,
	}
	sensitivityCmd.Flags().StringVar(&bodySel, "body", "", "body index (default: first dynamic body)")
	sensitivityCmd.Flags().Float64Var(&delta, "delta", 1e-3, "horizontal shift")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		benchCmd, analyzeCmd, phaseCmd, liveCmd, replayCmd, presetsCmd, tuneCmd, scenarioCmd, sweepCmd,
		scanCmd, monteCarloCmd, sensitivityCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sceneFlags adds the flags that override a scene's settings.
func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", 0.016, "timestep")
	cmd.Flags().IntVar(&frames, "frames", 300, "number of frames")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for jittered bodies")
	cmd.Flags().IntVar(&substeps, "substeps", 10, "substeps per frame")
	cmd.Flags().IntVar(&iterations, "iterations", 10, "solver iterations per substep")
	cmd.Flags().Float64Var(&gravity, "gravity", 100, "downward gravity")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "parameter override name=value (repeatable)")
}
