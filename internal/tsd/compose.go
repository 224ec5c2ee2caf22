package tsd

import (
	"fmt"

	"github.com/hydrosense/wellspring/internal/well"
)

// Combine composes the final estimated series from the trend and the
// fluctuation selected by the already-resolved mode. Calibration adds the
// target's local fluctuations, falling back to regional when no local value
// exists at all; Estimation adds regional fluctuations, leaving the bare
// trend (flagged degraded) when regional is unavailable. Mode resolution
// happened once at the top of the pipeline; Combine refuses an unresolved
// mode rather than re-deriving it.
func Combine(trend, local, regional []float64, mode Mode) ([]float64, Quality, error) {
	if mode != ModeCalibration && mode != ModeEstimation {
		return nil, 0, fmt.Errorf("combine requires a resolved mode, got %s", mode)
	}

	est := append([]float64(nil), trend...)
	var quality Quality

	switch mode {
	case ModeCalibration:
		if hasAnyValue(local) {
			for i, v := range local {
				if !well.IsMissing(v) {
					est[i] += v
				}
			}
		} else if hasAnyValue(regional) {
			for i, v := range regional {
				est[i] += v
			}
		}
	case ModeEstimation:
		if hasAnyValue(regional) {
			for i, v := range regional {
				est[i] += v
			}
		} else {
			// No regional signal: the estimate is the bare trend.
			quality |= QualityNoRegional
		}
	}

	return est, quality, nil
}

func hasAnyValue(vals []float64) bool {
	for _, v := range vals {
		if !well.IsMissing(v) {
			return true
		}
	}
	return false
}
