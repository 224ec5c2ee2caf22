package tsd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hydrosense/wellspring/internal/well"
)

// DataSource is the slice of a data source the estimator needs: resolved
// well series by identity and date window. Implementations live in
// internal/source.
type DataSource interface {
	WellData(wellID string, unit int, window well.Window) (*well.Series, error)
}

// Estimator sequences data-source access and decomposition for a (target,
// reference) well pair. It holds no per-call state; one Estimator may serve
// concurrent calls.
type Estimator struct {
	src    DataSource
	logger *zap.SugaredLogger
}

// NewEstimator creates an estimator over the given data source.
func NewEstimator(src DataSource, logger *zap.SugaredLogger) *Estimator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Estimator{src: src, logger: logger}
}

// EstimateDailyValues fetches the target and reference wells for the given
// treatment unit and date window, then runs the decomposition pipeline.
// Hard failures from the source (unknown well, unresolvable columns)
// propagate unmodified.
func (e *Estimator) EstimateDailyValues(targetWell, referenceWell string, unit int, window well.Window, opts Options) (*Result, error) {
	target, err := e.src.WellData(targetWell, unit, window)
	if err != nil {
		return nil, fmt.Errorf("fetching target well %q: %w", targetWell, err)
	}

	reference, err := e.src.WellData(referenceWell, unit, window)
	if err != nil {
		return nil, fmt.Errorf("fetching reference well %q: %w", referenceWell, err)
	}

	e.logger.Debugf("estimating %s from %s: %d/%d observed days (target), %d observed days (reference)",
		targetWell, referenceWell, target.ObservedCount(), target.Len(), reference.ObservedCount())

	return Decompose(target, reference, opts, e.logger)
}
