package vodf

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	logMsgBatchStarted   = "batch split started"
	logMsgBatchCompleted = "batch split completed"
	logAttrRunID         = "run_id"
	logAttrComposites    = "composites"
)

// BatchResult is the split output of one composite observation.
type BatchResult struct {
	ObsID        int64
	Observations Observations
}

// SplitAll splits every composite with cfg, at most limit at a time (limit <= 0 means no
// limit), and returns the results in input order.
//
// Composites are split independently; none of them may share a mutable Registry with
// another caller while SplitAll runs. The first failure cancels the remaining work.
func SplitAll(ctx context.Context, cfg SplitConfig, composites []CompositeObservation, limit int, categories ...Category) ([]BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	obs := cfg.observer()
	obs.info(ctx, logMsgBatchStarted, logAttrRunID, runID, logAttrComposites, len(composites))

	results := make([]BatchResult, len(composites))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, composite := range composites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			split, err := composite.SplitWithConfig(gctx, cfg, categories...)
			if err != nil {
				return err
			}

			results[i] = BatchResult{ObsID: composite.ObsID(), Observations: split}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		obs.logError(ctx, logMsgSplitFailed, err, logAttrRunID, runID)
		return nil, err
	}

	obs.info(ctx, logMsgBatchCompleted, logAttrRunID, runID, logAttrComposites, len(composites))

	return results, nil
}
