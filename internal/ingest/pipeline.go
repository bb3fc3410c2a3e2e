package ingest

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KatherineCox/anvil-portal/internal/metrics"
	"github.com/KatherineCox/anvil-portal/internal/source"
	"github.com/KatherineCox/anvil-portal/internal/tsv"
)

// Resolver resolves a study id to its registry accession. An absent
// accession is an empty string with a nil error; errors are transport
// failures.
type Resolver interface {
	Resolve(ctx context.Context, studyID string) (string, error)
}

// Sorter orders a record set by a grouping field and a tie-break field.
type Sorter interface {
	Sort(records []Record, groupField, tieBreakField string) []Record
}

// Pipeline is the ingestion orchestrator: it reads the four fixed exports,
// builds the lookups, transforms every content row of the main export into a
// workspace record, and returns the sorted set. Nothing survives between
// runs; the files are re-read on every invocation.
type Pipeline struct {
	files       *source.Files
	resolver    Resolver
	sorter      Sorter
	logger      *zap.Logger
	metrics     *metrics.Metrics
	parallelism int
}

func NewPipeline(files *source.Files, resolver Resolver, sorter Sorter, logger *zap.Logger, m *metrics.Metrics, parallelism int) *Pipeline {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &Pipeline{
		files:       files,
		resolver:    resolver,
		sorter:      sorter,
		logger:      logger,
		metrics:     m,
		parallelism: parallelism,
	}
}

// IngestedWorkspaces runs one full ingest and returns the normalized
// workspace records sorted by consortium, then project id. An absent main
// export yields an empty set, not an error.
func (p *Pipeline) IngestedWorkspaces(ctx context.Context) ([]Record, error) {
	runID := uuid.New().String()
	logger := p.logger.With(zap.String("run_id", runID))
	timer := metrics.NewTimer()

	logger.Info("Starting workspace ingest")

	var (
		main tsv.Table
		lk   lookups
	)

	// The four file reads are independent and read-only.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lines, err := p.files.Lines(gctx, FileWorkspaces)
		if err != nil {
			return fmt.Errorf("reading %s: %w", FileWorkspaces, err)
		}
		main = tsv.Parse(lines)
		return nil
	})
	g.Go(func() error {
		var err error
		lk.studies, err = p.buildLookup(gctx, FileProjectStudies, "PROJECT_ID", "DBGAP_STUDY_ID", logger)
		return err
	})
	g.Go(func() error {
		var err error
		lk.samples, err = p.buildLookup(gctx, FileSampleCounts, "WORKSPACE", "NO_OF_SAMPLES", logger)
		return err
	})
	g.Go(func() error {
		var err error
		lk.sizes, err = p.buildLookup(gctx, FileFileSizes, "WORKSPACE", "FILE_SIZE", logger)
		return err
	})
	if err := g.Wait(); err != nil {
		p.metrics.RecordRun("error", timer.Duration(), 0)
		return nil, err
	}

	// One row's record depends only on the row itself and the read-only
	// lookups, so rows transform in parallel. Results keep row order.
	records := make([]Record, len(main.Rows))
	memo := newAccessionMemo(p.resolver, p.metrics)

	tg, tctx := errgroup.WithContext(ctx)
	tg.SetLimit(p.parallelism)
	for i, row := range main.Rows {
		tg.Go(func() error {
			record, err := transformRow(tctx, main.Header, row, lk, memo.resolve)
			if err != nil {
				return err
			}
			if record == nil {
				logger.Warn("Skipping row without project id", zap.Int("row", i+1))
				return nil
			}
			records[i] = record
			return nil
		})
	}
	if err := tg.Wait(); err != nil {
		p.metrics.RecordRun("error", timer.Duration(), 0)
		return nil, err
	}

	workspaces := make([]Record, 0, len(records))
	for _, record := range records {
		if record != nil {
			workspaces = append(workspaces, record)
		}
	}

	workspaces = p.sorter.Sort(workspaces, FieldConsortium, FieldProjectID)

	logger.Info("Workspace ingest complete",
		zap.Int("workspaces", len(workspaces)),
		zap.Duration("elapsed", timer.Duration()))
	p.metrics.RecordRun("success", timer.Duration(), len(workspaces))

	return workspaces, nil
}

func (p *Pipeline) buildLookup(ctx context.Context, name, keyLabel, valueLabel string, logger *zap.Logger) (Lookup, error) {
	lines, err := p.files.Lines(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return BuildLookup(tsv.Parse(lines), keyLabel, valueLabel, logger), nil
}

// accessionMemo deduplicates resolver calls within one run. Workspaces often
// share a study id; each distinct id goes upstream once, concurrent rows for
// the same id share the in-flight call. The memo dies with the run.
type accessionMemo struct {
	resolver Resolver
	metrics  *metrics.Metrics

	group   singleflight.Group
	mu      sync.Mutex
	results map[string]string
}

func newAccessionMemo(resolver Resolver, m *metrics.Metrics) *accessionMemo {
	return &accessionMemo{
		resolver: resolver,
		metrics:  m,
		results:  make(map[string]string),
	}
}

func (m *accessionMemo) resolve(ctx context.Context, studyID string) (string, error) {
	m.mu.Lock()
	if accession, ok := m.results[studyID]; ok {
		m.mu.Unlock()
		return accession, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(studyID, func() (interface{}, error) {
		timer := metrics.NewTimer()
		accession, err := m.resolver.Resolve(ctx, studyID)
		m.metrics.RecordAccessionLookup(lookupOutcome(accession, err), timer.Duration())
		if err != nil {
			return nil, err
		}
		return accession, nil
	})
	if err != nil {
		return "", err
	}

	accession := v.(string)
	m.mu.Lock()
	m.results[studyID] = accession
	m.mu.Unlock()

	return accession, nil
}

func lookupOutcome(accession string, err error) string {
	switch {
	case err != nil:
		return "error"
	case accession == "":
		return "absent"
	default:
		return "resolved"
	}
}

// Summary aggregates dashboard totals over one ingested record set.
type Summary struct {
	Workspaces int     `json:"workspaces"`
	Consortia  int     `json:"consortia"`
	Samples    float64 `json:"samples"`
	Size       float64 `json:"size"`
	Public     int     `json:"public"`
	Private    int     `json:"private"`
}

// Summarize derives the dashboard totals from a record set.
func Summarize(records []Record) Summary {
	summary := Summary{Workspaces: len(records)}
	consortia := make(map[string]bool)

	for _, record := range records {
		if c := record[FieldConsortium].Text(); c != "" {
			consortia[c] = true
		}
		if n := record[FieldSamples].Number(); !math.IsNaN(n) {
			summary.Samples += n
		}
		if n := record[FieldSize].Number(); !math.IsNaN(n) {
			summary.Size += n
		}
		if record[FieldAccess].Text() == AccessPublic {
			summary.Public++
		} else {
			summary.Private++
		}
	}

	summary.Consortia = len(consortia)
	return summary
}
