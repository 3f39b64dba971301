package dataprocessing

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"unistats/internal/files"
	"unistats/internal/infrastructure"
	"unistats/pkg/contracts/domain"
)

// TracerName is the OpenTelemetry tracer used by this package.
const TracerName = "unistats.dataprocessing"

// Normalizer loads one sheet from every source workbook and reshapes it
// into long-format observations.
type Normalizer struct {
	discovery *files.Discovery
	cache     *ObservationCache
	group     singleflight.Group
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithMetrics records run and cache metrics.
func WithMetrics(m *infrastructure.BusinessMetrics) NormalizerOption {
	return func(n *Normalizer) { n.metrics = m }
}

// WithoutCache disables result caching.
func WithoutCache() NormalizerOption {
	return func(n *Normalizer) { n.cache = nil }
}

// NewNormalizer creates a normalizer over the workbooks of dataDir.
func NewNormalizer(dataDir string, logger *slog.Logger, opts ...NormalizerOption) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{
		discovery: files.NewDiscovery(dataDir),
		cache:     NewObservationCache(),
		logger:    logger.With(slog.String("component", "normalizer")),
		tracer:    otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeResult is one normalizer run.
type NormalizeResult struct {
	Sheet       string
	Fingerprint string
	Rows        []domain.Observation
	Files       int
	Skipped     int
	Cached      bool
}

// Normalize returns the long-format rows of sheet across all workbooks.
// Workbooks missing the sheet or failing to load are skipped. With no
// usable workbook the result is an empty, non-nil slice.
func (n *Normalizer) Normalize(ctx context.Context, sheet string) ([]domain.Observation, error) {
	res, err := n.NormalizeWithStats(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// NormalizeWithStats is Normalize with run details.
func (n *Normalizer) NormalizeWithStats(ctx context.Context, sheet string) (NormalizeResult, error) {
	ctx, span := n.tracer.Start(ctx, "normalizer.normalize",
		trace.WithAttributes(attribute.String("sheet", sheet)))
	defer span.End()

	workbooks, err := n.findWorkbooks(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return NormalizeResult{}, err
	}
	fingerprint := files.Fingerprint(workbooks)

	if n.cache == nil {
		return n.load(ctx, sheet, fingerprint, workbooks), nil
	}

	if rows, ok := n.cache.Get(sheet, fingerprint); ok {
		n.metrics.RecordCacheLookup(ctx, sheet, true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return NormalizeResult{
			Sheet:       sheet,
			Fingerprint: fingerprint,
			Rows:        rows,
			Files:       len(workbooks),
			Cached:      true,
		}, nil
	}
	n.metrics.RecordCacheLookup(ctx, sheet, false)

	v, _, _ := n.group.Do(sheet+"\x00"+fingerprint, func() (interface{}, error) {
		res := n.load(ctx, sheet, fingerprint, workbooks)
		n.cache.Set(sheet, CacheEntry{
			Fingerprint: fingerprint,
			Rows:        res.Rows,
			Files:       res.Files,
			Skipped:     res.Skipped,
		})
		return res, nil
	})

	res := v.(NormalizeResult)
	res.Rows = copyObservations(res.Rows)
	return res, nil
}

// Invalidate drops cached results.
func (n *Normalizer) Invalidate() {
	if n.cache != nil {
		n.cache.Invalidate()
		n.logger.Info("normalizer cache invalidated")
	}
}

// CacheStats returns cache counters, or zero values when caching is off.
func (n *Normalizer) CacheStats() CacheStats {
	if n.cache == nil {
		return CacheStats{}
	}
	return n.cache.Stats()
}

// DataDir is the directory the normalizer reads.
func (n *Normalizer) DataDir() string {
	return n.discovery.Dir()
}

// Sources lists the source identifiers of the current workbooks.
func (n *Normalizer) Sources() ([]string, error) {
	workbooks, err := n.findWorkbooks(context.Background())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(workbooks))
	for _, wb := range workbooks {
		ids = append(ids, SourceIDFromPath(wb.Name))
	}
	return ids, nil
}

// SourceFiles maps each source identifier to its workbook name without
// extension, e.g. "old dominion u" to "Old-Dominion-U".
func (n *Normalizer) SourceFiles() (map[string]string, error) {
	workbooks, err := n.findWorkbooks(context.Background())
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(workbooks))
	for _, wb := range workbooks {
		out[SourceIDFromPath(wb.Name)] = strings.TrimSuffix(wb.Name, filepath.Ext(wb.Name))
	}
	return out, nil
}

// findWorkbooks treats a missing data directory as an empty source set.
func (n *Normalizer) findWorkbooks(ctx context.Context) ([]files.FileInfo, error) {
	workbooks, err := n.discovery.FindWorkbooks()
	if errors.Is(err, fs.ErrNotExist) {
		n.logger.WarnContext(ctx, "data directory not found",
			slog.String("dir", n.discovery.Dir()))
		return []files.FileInfo{}, nil
	}
	return workbooks, err
}

func (n *Normalizer) load(ctx context.Context, sheet, fingerprint string, workbooks []files.FileInfo) NormalizeResult {
	start := time.Now()
	res := NormalizeResult{
		Sheet:       sheet,
		Fingerprint: fingerprint,
		Rows:        []domain.Observation{},
		Files:       len(workbooks),
	}

	for _, wb := range workbooks {
		table, err := LoadSheet(wb.Path, sheet)
		if err != nil {
			res.Skipped++
			n.logger.WarnContext(ctx, "skipping workbook",
				slog.String("file", wb.Name),
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
			continue
		}

		if table.Width() == 0 {
			res.Skipped++
			n.logger.WarnContext(ctx, "skipping workbook without category column",
				slog.String("file", wb.Name),
				slog.String("sheet", sheet))
			continue
		}

		rows := NormalizeTable(table)
		res.Rows = append(res.Rows, rows...)

		n.logger.DebugContext(ctx, "normalized workbook",
			slog.String("file", wb.Name),
			slog.String("source_id", table.SourceID),
			slog.Int("rows", len(rows)))
	}

	elapsed := time.Since(start)
	n.metrics.RecordNormalize(ctx, sheet, elapsed, len(res.Rows), res.Skipped)
	n.logger.InfoContext(ctx, "normalized sheet",
		slog.String("sheet", sheet),
		slog.Int("files", res.Files),
		slog.Int("skipped", res.Skipped),
		slog.Int("rows", len(res.Rows)),
		slog.Duration("duration", elapsed))

	return res
}
