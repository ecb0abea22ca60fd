// Package batch fits and exports many résumés concurrently. Every document
// gets its own session; nothing is shared between them.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/fit"
	"github.com/gompdf/pagefit/internal/render"
	"github.com/gompdf/pagefit/internal/res"
	"github.com/gompdf/pagefit/internal/session"
)

// Job is one input document and where its export goes.
type Job struct {
	Input  string
	Output string
}

// ErrDuplicateOutput is returned by Run when two jobs write the same file.
var ErrDuplicateOutput = errors.New("batch: duplicate output path")

// Jobs derives output paths in outDir from the input base names. Inputs
// sharing a base name get numbered outputs: resume.pdf, resume-2.pdf, ...
func Jobs(inputs []string, outDir string, format render.Format) []Job {
	jobs := make([]Job, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		out := filepath.Join(outDir, base+format.Ext())
		for n := 2; seen[out]; n++ {
			out = filepath.Join(outDir, fmt.Sprintf("%s-%d%s", base, n, format.Ext()))
		}
		seen[out] = true
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs
}

func checkOutputs(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		key := filepath.Clean(job.Output)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateOutput, job.Output, prev, job.Input)
		}
		seen[key] = job.Input
	}
	return nil
}

// Result is the outcome of one job.
type Result struct {
	Job
	Session string
	Steps   int
	Report  fit.Report
	Fits    bool
	Err     error
}

// Options configure a run.
type Options struct {
	Session  session.Options
	Format   render.Format
	MaxSteps int
	// Force exports documents that still overflow.
	Force bool
	// Workers bounds concurrency; zero uses GOMAXPROCS.
	Workers int
	Loader  *res.Loader
	Logger  *zap.Logger
}

// Run processes jobs and returns one result per job, in order. The error
// joins every failed job's error; a cancelled ctx stops jobs not yet begun.
// Jobs sharing an output path are rejected before any runs.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	if err := checkOutputs(jobs); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 11
	}
	if opts.Loader == nil {
		opts.Loader = res.NewLoader("")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("batch")

	results := make([]Result, len(jobs))
	var mu sync.Mutex
	var errs []error

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			r := runOne(egCtx, job, opts)
			results[i] = r
			if r.Err != nil {
				logger.Warn("job failed", zap.String("input", job.Input), zap.Error(r.Err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", job.Input, r.Err))
				mu.Unlock()
			} else {
				logger.Info("job done",
					zap.String("input", job.Input),
					zap.String("output", job.Output),
					zap.Int("steps", r.Steps))
			}
			return nil
		})
	}
	_ = eg.Wait()
	return results, errors.Join(errs...)
}

func runOne(ctx context.Context, job Job, opts Options) Result {
	r := Result{Job: job}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}

	doc, err := document.Open(ctx, opts.Loader, job.Input)
	if err != nil {
		r.Err = err
		return r
	}
	sopts := opts.Session
	sopts.Logger = opts.Logger
	s, err := session.New(doc, sopts)
	if err != nil {
		r.Err = err
		return r
	}
	defer s.Close()
	r.Session = s.ID().String()

	out, err := s.AutoFitUntilFits(ctx, opts.MaxSteps)
	r.Steps, r.Report, r.Fits = out.Steps, out.Report, out.Fits
	if err != nil {
		r.Err = err
		return r
	}
	r.Err = exportFile(ctx, s, job.Output, opts)
	return r
}

func exportFile(ctx context.Context, s *session.Session, path string, opts Options) error {
	return render.WriteFile(path, func(w io.Writer) error {
		return s.Export(ctx, w, opts.Format, session.ExportOptions{Force: opts.Force})
	})
}
