// Package pipeline drives documents through loading, code detection,
// segmentation and persistence.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/lexarticles/pkg/codes"
	"github.com/coolbeans/lexarticles/pkg/extract"
	"github.com/coolbeans/lexarticles/pkg/logger"
	"github.com/coolbeans/lexarticles/pkg/records"
	"github.com/coolbeans/lexarticles/pkg/source"
)

// Options configures a Processor.
type Options struct {
	// OutputDir is the root; each code is written to its own folder below.
	OutputDir string
	// Workers bounds concurrent documents in ProcessAll. Defaults to the
	// number of CPUs.
	Workers int
	Build   records.BuildOptions
	// DryRun segments without writing anything.
	DryRun bool
}

// Result reports one processed code folder.
type Result struct {
	RunID     string             `json:"run_id"`
	Sources   []string           `json:"sources"`
	Identity  codes.Identity     `json:"identity"`
	OutputDir string             `json:"output_dir"`
	Articles  int                `json:"articles"`
	Stats     extract.Statistics `json:"stats"`
	Warnings  []extract.Warning  `json:"warnings,omitempty"`
	Duration  time.Duration      `json:"duration"`
}

// Processor runs the extraction pipeline.
type Processor struct {
	registry *codes.Registry
	builder  *records.Builder
	opts     Options
}

// NewProcessor creates a Processor over registry.
func NewProcessor(registry *codes.Registry, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Processor{
		registry: registry,
		builder:  records.NewBuilder(registry),
		opts:     opts,
	}
}

// ProcessFile extracts the articles of a single document into its code
// folder.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	return p.processGroup(ctx, []string{path})
}

// ProcessAll processes every path on a bounded worker pool. Documents that
// belong to the same code folder are merged in path order and written
// together. Documents whose code cannot be determined are reported as
// errors and skipped.
func (p *Processor) ProcessAll(ctx context.Context, paths []string) ([]*Result, []error) {
	groups, errs := p.group(paths)

	runner := NewRunner[[]string, *Result](RunnerConfig{
		MaxConcurrency: p.opts.Workers,
		LogPrefix:      "pipeline",
	})
	run := runner.Run(ctx, groups, func(ctx context.Context, group []string, messages chan<- string, results chan<- *Result, errors chan<- error) {
		messages <- fmt.Sprintf("processing %s", strings.Join(group, ", "))
		result, err := p.processGroup(ctx, group)
		if err != nil {
			errors <- err
			return
		}
		results <- result
	})

	sort.Slice(run.Results, func(i, j int) bool {
		return run.Results[i].OutputDir < run.Results[j].OutputDir
	})
	return run.Results, append(errs, run.Errors...)
}

// group buckets paths by output folder. Paths within a group keep sorted
// order so part 1 of a code precedes part 2.
func (p *Processor) group(paths []string) ([][]string, []error) {
	var errs []error
	byFolder := make(map[string][]string)
	for _, path := range paths {
		cfg, err := p.builder.Resolve(path, p.opts.Build.Code)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			errs = append(errs, err)
			continue
		}
		folder := cfg.OutputFolder()
		byFolder[folder] = append(byFolder[folder], path)
	}

	folders := make([]string, 0, len(byFolder))
	for folder := range byFolder {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	groups := make([][]string, 0, len(folders))
	for _, folder := range folders {
		group := byFolder[folder]
		sort.Strings(group)
		groups = append(groups, group)
	}
	return groups, errs
}

func (p *Processor) processGroup(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()

	batches := make([]*records.Batch, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := source.Load(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("run %s: loaded %s (%s, %d bytes of text)", runID, path, doc.Format, len(doc.Text))

		batch, err := p.builder.Build(path, doc.Text, p.opts.Build)
		if err != nil {
			return nil, fmt.Errorf("building records for %s: %w", path, err)
		}
		for _, warning := range batch.Warnings {
			logger.Warn("%s: %s", path, warning)
		}
		batches = append(batches, batch)
	}

	batch, err := records.Merge(batches...)
	if err != nil {
		return nil, err
	}

	dir := batch.OutputDir(p.opts.OutputDir)
	if !p.opts.DryRun {
		if err := records.Persist(dir, batch); err != nil {
			return nil, err
		}
	}

	result := &Result{
		RunID:     runID,
		Sources:   paths,
		Identity:  batch.Identity,
		OutputDir: dir,
		Articles:  len(batch.Records),
		Stats:     batch.Stats,
		Warnings:  batch.Warnings,
		Duration:  time.Since(start),
	}
	logger.Info("run %s: %d articles of %s written to %s in %s",
		runID, result.Articles, result.Identity, dir, result.Duration.Round(time.Millisecond))
	return result, nil
}

// CollectSources returns the supported documents directly inside dir,
// sorted by name. Hidden files are skipped.
func CollectSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, err := source.DetectFormat(name); err != nil {
			logger.Debug("skipping %s: %v", name, err)
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
