package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"unistats/internal/charts"
	"unistats/internal/files"
	"unistats/internal/infrastructure"
	"unistats/pkg/contracts/domain"
)

// Chart kinds.
const (
	KindGlobal     = "global"
	KindIndividual = "individual"
)

// Source provides normalized observations and the workbook behind each
// source.
type Source interface {
	Normalize(ctx context.Context, sheet string) ([]domain.Observation, error)
	SourceFiles() (map[string]string, error)
}

// ImageResult is one written chart.
type ImageResult struct {
	Kind      string `json:"kind"`
	Dimension string `json:"dimension"`
	Source    string `json:"source,omitempty"`
	Path      string `json:"path"`
}

// SkippedChart is a chart that was not drawn.
type SkippedChart struct {
	Kind      string `json:"kind"`
	Dimension string `json:"dimension"`
	Source    string `json:"source,omitempty"`
	Reason    string `json:"reason"`
}

// ExportReport summarises a batch export.
type ExportReport struct {
	Images   []ImageResult  `json:"images"`
	Skipped  []SkippedChart `json:"skipped"`
	Duration time.Duration  `json:"duration"`
}

// BatchOptions configures a batch export.
type BatchOptions struct {
	FocusSource string
	// OutputDir receives the images. Relative directories are resolved by
	// the file manager.
	OutputDir   string
	Concurrency int
}

// BatchExporter renders the global and individual charts of every
// dimension into image files.
type BatchExporter struct {
	source   Source
	renderer *charts.Renderer
	namer    *ImageNamer
	manager  *files.Manager
	opts     BatchOptions
	logger   *slog.Logger
	metrics  *infrastructure.BusinessMetrics
}

// NewBatchExporter creates a batch exporter. metrics may be nil.
func NewBatchExporter(source Source, renderer *charts.Renderer, namer *ImageNamer, manager *files.Manager, opts BatchOptions, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *BatchExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &BatchExporter{
		source:   source,
		renderer: renderer,
		namer:    namer,
		manager:  manager,
		opts:     opts,
		logger:   logger.With(slog.String("component", "batch_exporter")),
		metrics:  metrics,
	}
}

type job struct {
	kind  string
	dim   domain.Dimension
	src   string
	name  string
	chart domain.Chart
}

// Export draws every chart of dims. Charts that cannot be drawn for lack
// of data are reported as skipped; rendering or write failures abort the
// export.
func (e *BatchExporter) Export(ctx context.Context, dims []domain.Dimension) (*ExportReport, error) {
	start := time.Now()
	report := &ExportReport{Images: []ImageResult{}, Skipped: []SkippedChart{}}

	fileNames, err := e.source.SourceFiles()
	if err != nil {
		return nil, fmt.Errorf("list source workbooks: %w", err)
	}

	var jobs []job
	for _, dim := range dims {
		rows, err := e.source.Normalize(ctx, dim.Sheet)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", dim.Sheet, err)
		}
		dimJobs, skipped, err := e.plan(dim, rows, fileNames)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, dimJobs...)
		report.Skipped = append(report.Skipped, skipped...)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(e.opts.OutputDir, j.name)
			err := e.manager.WriteWith(path, func(w io.Writer) error {
				return e.renderer.Render(w, j.chart)
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", j.name, err)
			}
			e.metrics.RecordChart(gctx, j.kind)

			mu.Lock()
			report.Images = append(report.Images, ImageResult{
				Kind:      j.kind,
				Dimension: j.dim.Key,
				Source:    j.src,
				Path:      e.manager.Resolve(path),
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Images, func(i, k int) bool {
		return report.Images[i].Path < report.Images[k].Path
	})
	report.Duration = time.Since(start)

	e.logger.InfoContext(ctx, "batch export complete",
		slog.Int("images", len(report.Images)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (e *BatchExporter) plan(dim domain.Dimension, rows []domain.Observation, fileNames map[string]string) ([]job, []SkippedChart, error) {
	var (
		jobs    []job
		skipped []SkippedChart
	)

	if len(dim.Global) > 0 {
		chart := charts.GlobalChart(dim, rows, e.opts.FocusSource, e.logger)
		if len(chart.Series) == 0 {
			skipped = append(skipped, SkippedChart{Kind: KindGlobal, Dimension: dim.Key, Reason: "no source reports the global category"})
		} else {
			name, err := e.namer.Global(NameData{Sheet: dim.Sheet, Dimension: dim.Key})
			if err != nil {
				return nil, nil, err
			}
			jobs = append(jobs, job{kind: KindGlobal, dim: dim, name: name, chart: chart})
		}
	}

	if len(dim.Individual) == 0 {
		return jobs, skipped, nil
	}

	for _, src := range charts.NewIndex(rows).Sources() {
		chart, missing := charts.IndividualChart(dim, src, rows)
		if len(missing) > 0 {
			e.logger.Warn("categories not found",
				slog.String("sheet", dim.Sheet),
				slog.String("source", src),
				slog.Any("categories", missing))
		}
		if len(chart.Series) == 0 {
			skipped = append(skipped, SkippedChart{Kind: KindIndividual, Dimension: dim.Key, Source: src, Reason: "no matching categories"})
			continue
		}

		file, ok := fileNames[src]
		if !ok {
			file = src
		}
		name, err := e.namer.Individual(NameData{Source: src, File: file, Sheet: dim.Sheet, Dimension: dim.Key})
		if err != nil {
			return nil, nil, err
		}
		jobs = append(jobs, job{kind: KindIndividual, dim: dim, src: src, name: name, chart: chart})
	}

	return jobs, skipped, nil
}
