// Package metrics computes goodness-of-fit statistics between an observed
// and an estimated water-level series. Pure arithmetic over two aligned
// slices; pairs where either side carries the no-observation marker are
// skipped.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary bundles all goodness-of-fit statistics for one comparison.
type Summary struct {
	RMSE          float64
	RSquared      float64
	NashSutcliffe float64
	MAPE          float64
	Bias          float64
	N             int
}

func (s Summary) String() string {
	return fmt.Sprintf("RMSE=%.3f R²=%.3f NSE=%.3f MAPE=%.2f%% bias=%.3f (n=%d)",
		s.RMSE, s.RSquared, s.NashSutcliffe, s.MAPE, s.Bias, s.N)
}

// paired drops positions where either series has no value.
func paired(observed, estimated []float64) (obs, est []float64, err error) {
	if len(observed) != len(estimated) {
		return nil, nil, fmt.Errorf("observed and estimated must have the same length, got %d and %d",
			len(observed), len(estimated))
	}
	for i := range observed {
		if math.IsNaN(observed[i]) || math.IsNaN(estimated[i]) {
			continue
		}
		obs = append(obs, observed[i])
		est = append(est, estimated[i])
	}
	return obs, est, nil
}

// RMSE returns the root mean square error.
func RMSE(observed, estimated []float64) (float64, error) {
	obs, est, err := paired(observed, estimated)
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, nil
	}
	sum := 0.0
	for i := range obs {
		d := obs[i] - est[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(obs))), nil
}

// RSquared returns the squared Pearson correlation between observed and
// estimated values.
func RSquared(observed, estimated []float64) (float64, error) {
	obs, est, err := paired(observed, estimated)
	if err != nil {
		return 0, err
	}
	if len(obs) < 2 {
		return 0, nil
	}
	r := stat.Correlation(obs, est, nil)
	if math.IsNaN(r) {
		return 0, nil
	}
	return r * r, nil
}

// NashSutcliffe returns the Nash-Sutcliffe model efficiency. 1 is a perfect
// fit; values below 0 mean the mean of the observations outperforms the
// estimate.
func NashSutcliffe(observed, estimated []float64) (float64, error) {
	obs, est, err := paired(observed, estimated)
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, nil
	}
	mean := stat.Mean(obs, nil)
	num, den := 0.0, 0.0
	for i := range obs {
		d := obs[i] - est[i]
		num += d * d
		m := obs[i] - mean
		den += m * m
	}
	if den == 0 {
		return 0, nil
	}
	return 1 - num/den, nil
}

// MAPE returns the mean absolute percentage error. Observations equal to
// zero are excluded to avoid division by zero.
func MAPE(observed, estimated []float64) (float64, error) {
	obs, est, err := paired(observed, estimated)
	if err != nil {
		return 0, err
	}
	sum, n := 0.0, 0
	for i := range obs {
		if obs[i] == 0 {
			continue
		}
		sum += math.Abs((obs[i] - est[i]) / obs[i])
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n) * 100, nil
}

// Bias returns the mean error (estimated minus observed).
func Bias(observed, estimated []float64) (float64, error) {
	obs, est, err := paired(observed, estimated)
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, nil
	}
	sum := 0.0
	for i := range obs {
		sum += est[i] - obs[i]
	}
	return sum / float64(len(obs)), nil
}

// All computes every statistic at once.
func All(observed, estimated []float64) (Summary, error) {
	obs, _, err := paired(observed, estimated)
	if err != nil {
		return Summary{}, err
	}

	rmse, _ := RMSE(observed, estimated)
	r2, _ := RSquared(observed, estimated)
	nse, _ := NashSutcliffe(observed, estimated)
	mape, _ := MAPE(observed, estimated)
	bias, _ := Bias(observed, estimated)

	return Summary{
		RMSE:          rmse,
		RSquared:      r2,
		NashSutcliffe: nse,
		MAPE:          mape,
		Bias:          bias,
		N:             len(obs),
	}, nil
}
