// Package explore runs the exploration pipeline: fetch one page of raw
// observations, normalize and deduplicate them, fill in missing images and
// derive reproduction and diet.
package explore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"biodex/internal/metrics"
	"biodex/internal/provider"
	"biodex/internal/query"
	"biodex/pkg/models"
)

// Enricher fills the derived fields of a record.
type Enricher interface {
	Enrich(r *models.AnimalRecord)
}

type ImageResolver interface {
	Resolve(ctx context.Context, name, fallbackID string) string
}

// QueryEvent describes one finished exploration.
type QueryEvent struct {
	Spec     query.Spec
	Provider string
	Results  int
	Err      error
	At       time.Time
}

// HistorySink receives an event after every non-empty query. The explorer
// only writes to it.
type HistorySink interface {
	Record(ctx context.Context, ev QueryEvent)
}

// Result is the outcome of Run, with counters for diagnostics.
type Result struct {
	Records    []models.AnimalRecord `json:"items"`
	Raw        int                   `json:"raw"`
	Rejected   map[string]int        `json:"rejected,omitempty"`
	Duplicates int                   `json:"duplicates"`
	Resolved   int                   `json:"images_resolved"`
	Dropped    int                   `json:"dropped"`
}

type Explorer struct {
	Source  provider.Source
	Mapping FieldMapping
	Traits  Enricher
	Images  ImageResolver
	Sink    HistorySink
	Log     *zap.Logger
	Workers int
}

func New(src provider.Source, mapping FieldMapping) *Explorer {
	return &Explorer{
		Source:  src,
		Mapping: mapping,
		Log:     zap.NewNop(),
		Workers: 4,
	}
}

// Explore never fails: any error yields an empty list.
func (e *Explorer) Explore(ctx context.Context, spec query.Spec) []models.AnimalRecord {
	res, err := e.Run(ctx, spec)
	if err != nil {
		if !errors.Is(err, provider.ErrNoQuery) {
			e.logger().Warn("explore failed",
				zap.String("provider", e.Source.Name()),
				zap.String("query", spec.String()),
				zap.String("kind", string(provider.KindOf(err))),
				zap.Error(err))
		}
		return []models.AnimalRecord{}
	}
	return res.Records
}

// Run executes the pipeline. Errors are provider.ErrNoQuery or a
// *provider.FetchError.
func (e *Explorer) Run(ctx context.Context, spec query.Spec) (Result, error) {
	res := Result{Records: []models.AnimalRecord{}}
	if spec.Empty() {
		return res, provider.ErrNoQuery
	}

	start := time.Now()
	metrics.ExploreRequestsTotal.Inc()
	defer func() {
		metrics.ExploreDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		if len(res.Records) == 0 {
			metrics.ExploreEmptyTotal.Inc()
		}
	}()

	items, err := e.Source.Search(ctx, spec)
	if err != nil {
		e.record(ctx, spec, 0, err)
		return res, err
	}
	res.Raw = len(items)

	norm := NewNormalizer(e.Mapping, e.Source.Name())
	records := make([]models.AnimalRecord, 0, len(items))
	for _, it := range items {
		r, err := norm.Normalize(it)
		if err != nil {
			reason := RejectReason(err)
			if res.Rejected == nil {
				res.Rejected = make(map[string]int)
			}
			res.Rejected[reason]++
			metrics.RecordsRejectedTotal.WithLabelValues(reason).Inc()
			continue
		}
		records = append(records, r)
	}

	unique := Dedupe(records)
	res.Duplicates = len(records) - len(unique)
	metrics.RecordsDuplicateTotal.Add(float64(res.Duplicates))

	res.Resolved = e.resolveImages(ctx, unique)

	out := unique[:0]
	for _, r := range unique {
		if r.PhotoURL == "" {
			res.Dropped++
			continue
		}
		if e.Traits != nil {
			e.Traits.Enrich(&r)
		}
		out = append(out, r)
	}
	res.Records = out

	e.logger().Debug("explore done",
		zap.String("provider", e.Source.Name()),
		zap.String("query", spec.String()),
		zap.Int("raw", res.Raw),
		zap.Int("records", len(res.Records)),
		zap.Int("duplicates", res.Duplicates),
		zap.Duration("took", time.Since(start)))

	e.record(ctx, spec, len(res.Records), nil)
	return res, nil
}

// resolveImages fills PhotoURL for records that lack one, in parallel.
// Each goroutine owns one index, so order is preserved.
func (e *Explorer) resolveImages(ctx context.Context, records []models.AnimalRecord) int {
	if e.Images == nil {
		return 0
	}

	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	resolved := make([]bool, len(records))
	for i := range records {
		if records[i].PhotoURL != "" {
			continue
		}
		g.Go(func() error {
			name := records[i].ScientificName
			if name == "" {
				name = records[i].DisplayName
			}
			records[i].PhotoURL = e.Images.Resolve(gctx, name, records[i].ID)
			resolved[i] = records[i].PhotoURL != ""
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range resolved {
		if ok {
			n++
		}
	}
	return n
}

func (e *Explorer) record(ctx context.Context, spec query.Spec, results int, err error) {
	if e.Sink == nil {
		return
	}
	e.Sink.Record(ctx, QueryEvent{
		Spec:     spec,
		Provider: e.Source.Name(),
		Results:  results,
		Err:      err,
		At:       time.Now().UTC(),
	})
}

func (e *Explorer) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
