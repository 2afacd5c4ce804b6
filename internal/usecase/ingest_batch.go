package usecase

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/metrics"
)

const DefaultIngestWorkers = 4

type BatchItem struct {
	Link   string        `json:"link"`
	Result *IngestResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type BatchReport struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Movies    int         `json:"movies"`
	Series    int         `json:"series"`
	Items     []BatchItem `json:"items"`
}

// IngestBatch runs items through IngestRelease on a bounded worker pool. A
// failing item is reported and never stops the others.
type IngestBatch struct {
	Ingest  IngestRelease
	Workers int
}

func (uc IngestBatch) Execute(ctx context.Context, inputs []IngestInput) (BatchReport, error) {
	report := BatchReport{Total: len(inputs), Items: make([]BatchItem, len(inputs))}
	if len(inputs) == 0 {
		return report, nil
	}

	workers := uc.Workers
	if workers <= 0 {
		workers = DefaultIngestWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range inputs {
		report.Items[i].Link = input.Link
		g.Go(func() error {
			res, err := uc.Ingest.Execute(gctx, input)
			if err != nil {
				report.Items[i].Error = err.Error()
				// cancellation is the only error that aborts the batch
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return err
				}
				return nil
			}
			report.Items[i].Result = &res
			return nil
		})
	}
	err := g.Wait()

	for _, item := range report.Items {
		if item.Result == nil {
			report.Failed++
			metrics.IngestItemsTotal.WithLabelValues("unknown", "failed").Inc()
			continue
		}
		report.Succeeded++
		if item.Result.Kind == domain.MediaSeries {
			report.Series++
		} else {
			report.Movies++
		}
		metrics.IngestItemsTotal.WithLabelValues(string(item.Result.Kind), "ok").Inc()
	}
	return report, err
}
