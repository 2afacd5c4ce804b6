package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/domain/ports"
	"mediaarchive/internal/metrics"
	"mediaarchive/internal/retry"
)

const DefaultMergeAttempts = 5

// MergeSource merges one source into its title document. Store conflicts
// are retried as a whole; any other error surfaces immediately.
type MergeSource struct {
	Store       ports.TitleStore
	MaxAttempts int
	Backoff     retry.Config
	Logger      *slog.Logger
}

func (uc MergeSource) Execute(ctx context.Context, req domain.MergeRequest) (domain.MergeResult, error) {
	if err := req.Check(); err != nil {
		return domain.MergeResult{}, err
	}

	cfg := uc.Backoff
	if cfg.InitialDelay <= 0 {
		cfg = retry.Config{InitialDelay: 20 * time.Millisecond, MaxDelay: 500 * time.Millisecond, Multiplier: 2}
	}
	cfg.MaxAttempts = uc.MaxAttempts
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMergeAttempts
	}

	kind := string(req.Kind)
	var result domain.MergeResult
	err := retry.Do(ctx, cfg, isConflict, func() error {
		res, err := uc.Store.MergeSource(ctx, req)
		if err != nil {
			if isConflict(err) {
				metrics.MergeConflictsTotal.WithLabelValues(kind).Inc()
				uc.logger().Debug("merge conflict, retrying",
					slog.String("key", req.Key.String()),
					slog.String("locator", req.Source.Locator),
				)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrPrecondition) || errors.Is(err, context.Canceled) {
			return domain.MergeResult{}, err
		}
		return domain.MergeResult{}, wrapRepo(err)
	}

	metrics.MergeOperationsTotal.WithLabelValues(kind, mergeOutcome(result)).Inc()
	return result, nil
}

func (uc MergeSource) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}

func mergeOutcome(res domain.MergeResult) string {
	switch {
	case res.Created:
		return "created"
	case res.Inserted:
		return "appended"
	default:
		return "replaced"
	}
}
