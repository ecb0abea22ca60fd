package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/batch"
	"github.com/gompdf/pagefit/internal/config"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/fit"
	"github.com/gompdf/pagefit/internal/overflow"
	"github.com/gompdf/pagefit/internal/render"
	"github.com/gompdf/pagefit/internal/session"
	"github.com/gompdf/pagefit/internal/tui"
	"github.com/gompdf/pagefit/internal/watch"
	"github.com/gompdf/pagefit/pkg/api"
)

func warningFor(out api.Outcome) *overflow.Warning {
	return overflow.Detect(out.Report.Height, out.Constraints.MaxHeight)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(true)
	defer cancel()

	f := api.NewWithOptions(options)
	doc, err := f.Load(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := f.Check(ctx, doc)
	if err != nil {
		return err
	}
	printer(cmd.OutOrStdout()).Fit(out.Report, warningFor(out), out.Constraints)
	return render.Gate(out.Report.HasOverflow, out.Report.OverflowPx)
}

func runFit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(true)
	defer cancel()

	f := api.NewWithOptions(options)
	doc, err := f.Load(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := f.AutoFit(ctx, doc)
	if err != nil {
		return err
	}
	p := printer(cmd.OutOrStdout())
	p.Fit(out.Report, warningFor(out), out.Constraints)
	p.AutoFit(session.FitResult{
		Steps:     out.Steps,
		Report:    out.Report,
		Fits:      out.Fits(),
		Exhausted: out.Exhausted,
	}, out.Constraints)
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(true)
	defer cancel()

	f := api.NewWithOptions(options)
	doc, err := f.Load(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := f.Apply(ctx, doc, args[1])
	if err != nil {
		return err
	}
	p := printer(cmd.OutOrStdout())
	if !out.Measured {
		p.Message("Nothing to measure.")
		return nil
	}
	p.Fit(out.Report, warningFor(out), out.Constraints)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(true)
	defer cancel()

	output := outputPath
	if output == "" {
		output = batch.Jobs(args, cfg.Output.Dir, options.Format)[0].Output
	}
	f := api.NewWithOptions(options)
	out, err := f.ExportFile(ctx, args[0], output)
	p := printer(cmd.OutOrStdout())
	if errors.Is(err, render.ErrOverflow) {
		p.Fit(out.Report, warningFor(out), out.Constraints)
		p.Message("Nothing written; pass --force to export anyway.")
		return err
	}
	if err != nil {
		return err
	}
	logger.Info("exported", zap.String("input", args[0]), zap.String("output", output), zap.Int("steps", out.Steps))
	p.Message(fmt.Sprintf("✓ %s -> %s (spacing %.2f, font %.2f)",
		args[0], output, out.Constraints.SpacingScale, out.Constraints.FontSizeScale))
	return nil
}

func runCommands(cmd *cobra.Command, args []string) error {
	term := ""
	if len(args) > 0 {
		term = args[0]
	}
	cmds := api.NewWithOptions(options).Commands(term)
	p := printer(cmd.OutOrStdout())
	if len(cmds) == 0 {
		p.Message(fmt.Sprintf("No commands match %q.", term))
		return nil
	}
	p.Commands(cmds)
	return nil
}

// openLive opens a session that re-measures when the file changes. The
// returned stop releases the watcher and the session.
func openLive(ctx context.Context, path string, onChange func(fit.Report)) (*session.Session, func(), error) {
	f := api.NewWithOptions(options)
	doc, err := f.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	w, err := watch.New(path, watch.DefaultDebounce, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := f.SessionOptions()
	opts.Observer = w
	opts.OnChange = onChange
	s, err := session.New(doc, opts)
	if err != nil {
		return nil, nil, err
	}
	unsubscribe := watch.Reload(w, func(doc *document.Resume) {
		if _, err := s.SetDocument(ctx, doc); err != nil {
			logger.Warn("re-measure after reload", zap.Error(err))
		}
	}, logger)

	stop := func() {
		unsubscribe()
		w.Stop()
		_ = s.Close()
	}
	if err := w.Start(ctx); err != nil {
		stop()
		return nil, nil, err
	}
	if err := s.Start(ctx); err != nil {
		stop()
		return nil, nil, err
	}
	return s, stop, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(false)
	defer cancel()

	p := printer(cmd.OutOrStdout())
	var s *session.Session
	ready := make(chan struct{})
	s, stop, err := openLive(ctx, args[0], func(r fit.Report) {
		<-ready
		p.Fit(r, s.Warning(), s.Constraints())
	})
	if err != nil {
		return err
	}
	close(ready)
	defer stop()

	p.Message(fmt.Sprintf("Watching %s. Press ctrl+c to stop.", args[0]))
	<-ctx.Done()
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(true)
	defer cancel()

	f := api.NewWithOptions(options)
	results, err := batch.Run(ctx, batch.Jobs(args, cfg.Output.Dir, options.Format), batch.Options{
		Session:  f.SessionOptions(),
		Format:   options.Format,
		MaxSteps: options.MaxSteps,
		Force:    options.Force,
		Workers:  workers,
		Logger:   logger,
	})
	printer(cmd.OutOrStdout()).Batch(results)
	return err
}

func runTune(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(false)
	defer cancel()

	var program *tea.Program
	ready := make(chan struct{})
	s, stop, err := openLive(ctx, args[0], func(r fit.Report) {
		<-ready
		program.Send(tui.ReportMsg(r))
	})
	if err != nil {
		return err
	}
	defer stop()

	program, run := tui.Run(ctx, s)
	close(ready)
	if err := run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if configAtURL(configPath) {
		return fmt.Errorf("cannot write config to %s: not a file path", configPath)
	}
	p := printer(cmd.OutOrStdout())
	sample := filepath.Join(filepath.Dir(configPath), "resume.yaml")
	for _, f := range []struct {
		path  string
		write func(string) error
	}{
		{configPath, func(path string) error { return config.Default().Save(path) }},
		{sample, func(path string) error { return os.WriteFile(path, document.SampleYAML(), 0o644) }},
	} {
		if _, err := os.Stat(f.path); err == nil && !overwrite {
			p.Message(fmt.Sprintf("%s exists, skipped.", f.path))
			continue
		}
		if err := f.write(f.path); err != nil {
			return err
		}
		p.Message(fmt.Sprintf("✓ wrote %s", f.path))
	}
	return nil
}
