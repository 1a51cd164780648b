package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigid2d/internal/analysis"
	"github.com/san-kum/rigid2d/internal/automation"
	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/export"
	"github.com/san-kum/rigid2d/internal/optim"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/storage"
	"github.com/san-kum/rigid2d/internal/viz"
	"github.com/spf13/cobra"
)

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	exp.Setup(experiment.NewRegistry().DefaultMetrics())
	sc := exp.SimConfig()
	sc.RecordEvery = every

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("running %s scene (%d bodies, %d frames)...\n", cfg.Scene, len(cfg.Bodies), cfg.Frames)
	start := time.Now()
	result, err := exp.GetSimulator().Run(ctx, sc)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d frames\n", result.StepsTaken)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (recorded %d)\n", result.StepsTaken, len(result.Frames))
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if jsonOut != "" {
		if err := storage.ExportJSONFile(jsonOut, cfg, result); err != nil {
			return err
		}
		fmt.Printf("\nexported %s\n", jsonOut)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tDT\tBODIES\tSUBSTEPS\tITER\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Bodies,
			run.Substeps,
			run.Iterations,
			len(run.Errors),
		)
	}
	return w.Flush()
}

// loadRun reads a stored run back as a result.
func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, &sim.Result{Frames: frames, Metrics: meta.Metrics, StepsTaken: meta.Frames}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	body, _, err := selectBody(result.Frames[0], bodySel)
	if err != nil {
		return err
	}
	track := result.Track(body.ID)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("body: %s\n", body.Name)
	fmt.Printf("samples: %d\n\n", len(track))

	for _, name := range coords {
		c, err := analysis.ParseCoord(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(analysis.Coordinate(track, c),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s vs frame", body.Name, c)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	cfg, err := storage.New(dataDir).LoadConfig(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, cfg, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteFrames(os.Stdout, result.Frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if bodySel != "" {
		body, _, err := selectBody(result.Frames[0], bodySel)
		if err != nil {
			return err
		}
		svg = export.TrajectoryToSVG(result.Frames, body.ID, svgWidth, svgHeight, "#00ffff")
		if svg == "" {
			return fmt.Errorf("body %s has fewer than two recorded positions", body.Name)
		}
	} else {
		fr := result.Final()
		if frameIdx >= 0 {
			found := false
			for _, f := range result.Frames {
				if f.Index == frameIdx {
					fr, found = f, true
					break
				}
			}
			if !found {
				return fmt.Errorf("frame %d was not recorded", frameIdx)
			}
		}
		svg = export.FrameToSVG(fr, svgWidth, svgHeight)
	}

	if outFile == "" {
		_, err = fmt.Println(svg)
		return err
	}
	return os.WriteFile(outFile, []byte(svg), 0644)
}

func benchScene(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(args[0])
	if base == nil {
		return fmt.Errorf("unknown scene: %s", args[0])
	}

	fmt.Printf("benchmarking %s (%d bodies, %d frames)\n\n", base.Scene, len(base.Bodies), base.Frames)
	w := newTable()
	fmt.Fprintln(w, "SUBSTEPS\tITER\tFRAMES\tTIME\tFRAMES/SEC\tCONTACTS")

	for _, sub := range []int{1, 5, 10} {
		for _, iter := range []int{1, 5, 10} {
			cfg := base.Clone()
			cfg.World.Substeps, cfg.World.Iterations = sub, iter

			exp, err := experiment.New(cfg)
			if err != nil {
				return err
			}
			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%d\n",
				sub, iter, result.StepsTaken, elapsed,
				float64(result.StepsTaken)/elapsed.Seconds(), result.Final().Contacts)
		}
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	body, _, err := selectBody(result.Frames[0], bodySel)
	if err != nil {
		return err
	}
	c, err := analysis.ParseCoord(coordName)
	if err != nil {
		return err
	}

	track := result.Track(body.ID)
	times := result.Times()
	if len(track) < 4 {
		return fmt.Errorf("not enough samples: %d", len(track))
	}
	sampleDt := times[1] - times[0]
	data := analysis.Detrend(analysis.Coordinate(track, c))

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, body: %s, coordinate: %s\n\n", meta.Scene, body.Name, c)

	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", c)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, _ := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("rms about mean: %.4f\n", analysis.RMS(data))
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	fmt.Println("\nimpacts:")
	fmt.Println(analysis.ImpactsToASCII(analysis.FindImpacts(track, times, 1)))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	body, _, err := selectBody(result.Frames[0], bodySel)
	if err != nil {
		return err
	}
	xc, err := analysis.ParseCoord(xCoord)
	if err != nil {
		return err
	}
	yc, err := analysis.ParseCoord(yCoord)
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("body: %s, x-axis: %s, y-axis: %s\n\n", body.Name, xc, yc)
	portrait := analysis.GeneratePhasePortrait(result.Track(body.ID), xc, yc)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg)
	if err != nil {
		return err
	}
	m.SetGIFPath(gifFile)
	return viz.Run(m)
}

func replayRun(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	m, err := viz.NewReplay(args[0], result.Frames)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func listPresets(cmd *cobra.Command, args []string) error {
	if savePreset != "" {
		if len(args) == 0 {
			return fmt.Errorf("--save needs a scene name")
		}
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown scene: %s", args[0])
		}
		if err := config.Save(savePreset, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", savePreset)
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "SCENE\tBODIES\tFRAMES\tDT\tGRAVITY\tSUBSTEPS\tITER")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t(%g, %g)\t%d\t%d\n",
			name, len(cfg.Bodies), cfg.Frames, cfg.Dt,
			cfg.World.Gravity.X, cfg.World.Gravity.Y,
			cfg.World.Substeps, cfg.World.Iterations)
	}
	return w.Flush()
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	for _, spec := range gridSpecs {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	objective := optim.MetricObjective(metricName)
	if workCost > 0 {
		objective = optim.CostObjective(metricName, workCost)
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("tuning %s on %s over %v\n\n", metricName, cfg.Scene, names)
	gs := optim.NewGridSearch(names, ranges)
	best, score, err := gs.Search(ctx, cfg, objective)

	ranked := append([]optim.Trial(nil), gs.Trials()...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
	w := newTable()
	fmt.Fprintln(w, "SCORE\tPARAMS")
	for _, t := range ranked {
		if t.Err != nil {
			fmt.Fprintf(w, "error\t%v: %v\n", t.Params, t.Err)
			continue
		}
		fmt.Fprintf(w, "%.6f\t%v\n", t.Score, t.Params)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %v (score %.6f)\n", best, score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if saveRuns {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st, os.Stdout)

	w := newTable()
	fmt.Fprintln(w, "\nSTEP\tSCENE\tFRAMES\tENERGY\tMAX_PEN\tRUN")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.4f\t%.4f\t%s\n", i+1, stepLabel(r.Step),
			r.Result.StepsTaken, r.Result.Metrics["energy"], r.Result.Metrics["max_penetration"], r.RunID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func stepLabel(s automation.ScenarioStep) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Config != "":
		return s.Config
	}
	return s.Scene
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.ParameterSweep{
		Scene:     args[0],
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  steps,
	}
	if cmd.Flags().Changed("frames") {
		sweep.Frames = frames
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry(), os.Stdout)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintf(w, "\n%s\tMIN_KE\tMAX_KE\tSETTLE\tMAX_PEN\tCONTACTS\n", paramName)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.3f\t%.4f\t%d\n", r.ParamValue, r.MinEnergy, r.MaxEnergy,
			r.Metrics["settle_time"], r.Metrics["max_penetration"], r.Final.Contacts)
	}
	return w.Flush()
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown scene: %s", args[0])
	}
	if err := cfg.Clone().SetParam(paramName, paramMin); err != nil {
		return err
	}
	idx, err := firstDynamic(cfg, bodySel)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	set := func(c *config.Config, v float64) { _ = c.SetParam(paramName, v) }
	points, err := analysis.Scan(ctx, cfg, set, paramMin, paramMax, scanSteps, analysis.Bounces(idx))
	if err != nil {
		return err
	}

	fmt.Printf("bounce apexes of body %d in %s vs %s\n\n", idx, cfg.Scene, paramName)
	fmt.Println(analysis.ScanToASCII(points, 70, 20))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	mc := &automation.MonteCarloConfig{
		Scene:        args[0],
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         1,
	}
	if cmd.Flags().Changed("frames") {
		mc.Frames = frames
	}
	if cmd.Flags().Changed("seed") {
		mc.Seed = seed
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry(), os.Stdout)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "\nTRIAL\tSEED\tSTABLE\tCONTACTS\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%v\t%d\t%.2fs\n", r.TrialID, r.Seed, r.Stable, r.Final.Contacts, r.Final.Time)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown scene: %s", args[0])
	}
	idx, err := firstDynamic(cfg, bodySel)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	res, err := analysis.Sensitivity(ctx, cfg, idx, delta)
	if err != nil {
		return err
	}

	graph := asciigraph.Plot(res.Separation,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("separation of dynamic bodies vs frame"),
	)
	fmt.Println(graph)
	fmt.Printf("\ngrowth rate: %.4f /s\n", res.Rate)
	return nil
}
