package tsd

import (
	"fmt"

	"github.com/hydrosense/wellspring/internal/well"
)

// Mode selects which fluctuation component drives the final estimate.
type Mode int

const (
	// ModeAuto asks the resolver to pick a mode from observation density.
	// It is only valid as a request; a resolved mode is never Auto.
	ModeAuto Mode = iota

	// ModeCalibration is used when the target well is densely observed:
	// the estimate adds the target's own local fluctuations to its trend.
	ModeCalibration

	// ModeEstimation is used when the target well is sparse: the estimate
	// borrows regional fluctuations from the reference well.
	ModeEstimation
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCalibration:
		return "calibration"
	case ModeEstimation:
		return "estimation"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a mode name as accepted on the command line.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto", "":
		return ModeAuto, nil
	case "calibration":
		return ModeCalibration, nil
	case "estimation":
		return ModeEstimation, nil
	default:
		return ModeAuto, fmt.Errorf("unknown mode %q (want auto, calibration or estimation)", s)
	}
}

// densityThreshold is the observation-density ratio above which a target
// well is considered densely monitored.
const densityThreshold = 0.7

// ResolveMode decides Calibration vs Estimation for a target well. An
// explicit mode other than Auto is returned unchanged. Otherwise the
// decision is a pure function of the target's observation density: the
// number of unique observed days divided by the calendar-day span of the
// series. Mode is resolved exactly once per decomposition and passed through
// every downstream stage.
func ResolveMode(target, reference *well.Series, explicit Mode) (Mode, error) {
	if explicit != ModeAuto {
		return explicit, nil
	}

	if target == nil || target.Len() == 0 {
		return ModeAuto, &InsufficientDataError{Reason: "target series is empty"}
	}

	if target.Calendar == well.CalendarSynthetic {
		// A synthetic timeline has no real calendar span. Compare sampling
		// frequency against the reference instead.
		if reference == nil || reference.Len() == 0 {
			return ModeAuto, &InsufficientDataError{WellID: target.WellID,
				Reason: "synthetic calendar and no reference to compare against"}
		}
		if float64(target.ObservedCount()) > float64(reference.Len())*densityThreshold {
			return ModeCalibration, nil
		}
		return ModeEstimation, nil
	}

	spanDays := int(target.Last().Sub(target.First()).Hours() / 24)
	if spanDays <= 0 {
		return ModeAuto, &InsufficientDataError{WellID: target.WellID,
			Reason: "calendar span is a single day"}
	}

	density := float64(target.ObservedCount()) / float64(spanDays+1)
	if density > densityThreshold {
		return ModeCalibration, nil
	}
	return ModeEstimation, nil
}
