// Command wellspring estimates daily groundwater-table elevations for one
// (target, reference) well pair from a tabular data source and prints a
// goodness-of-fit report, optionally exporting the decomposed components
// to CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hydrosense/wellspring/internal/log"
	"github.com/hydrosense/wellspring/internal/source"
	"github.com/hydrosense/wellspring/internal/tsd"
	"github.com/hydrosense/wellspring/internal/well"
	"github.com/hydrosense/wellspring/pkg/metrics"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		dataPath   = flag.String("data", "", "Path to data file (.csv, .xlsx, .sqlite, .db)")
		target     = flag.String("target", "", "Target well identifier")
		reference  = flag.String("reference", "", "Reference well identifier")
		unit       = flag.Int("unit", source.AnyUnit, "Treatment unit (omit for any)")
		startDate  = flag.String("start", "", "Window start date (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "Window end date (YYYY-MM-DD)")
		modeName   = flag.String("mode", "auto", "Decomposition mode: auto, calibration or estimation")
		useManual  = flag.Bool("manual-anchors", false, "Use manual measurement dates from the source as trend anchors (SQLite sources)")
		csvOutput  = flag.String("csv", "", "Optional CSV output file path")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *dataPath == "" || *target == "" || *reference == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	mode, err := tsd.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	window, err := parseWindow(*startDate, *endDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	src, err := source.Open(*dataPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data source: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	opts := tsd.Options{Mode: mode}
	if *useManual {
		manual, ok := src.(source.ManualMeasurementSource)
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: this source has no manual measurement table")
			os.Exit(1)
		}
		anchors, err := manual.ManualDates(*unit, *target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading manual measurements: %v\n", err)
			os.Exit(1)
		}
		opts.Anchors = anchors
	}

	estimator := tsd.NewEstimator(src, logger)
	result, err := estimator.EstimateDailyValues(*target, *reference, *unit, window, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	observed, err := src.WellData(*target, *unit, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printReport(result, observed)

	if *csvOutput != "" {
		if err := exportCSV(*csvOutput, result, observed); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nComponents exported to: %s\n", *csvOutput)
	}
}

func parseWindow(start, end string) (well.Window, error) {
	var w well.Window
	var err error
	if start != "" {
		w.Start, err = time.Parse(dateLayout, start)
		if err != nil {
			return w, fmt.Errorf("invalid start date %q", start)
		}
	}
	if end != "" {
		w.End, err = time.Parse(dateLayout, end)
		if err != nil {
			return w, fmt.Errorf("invalid end date %q", end)
		}
	}
	return w, nil
}

func printReport(result *tsd.Result, observed *well.Series) {
	fmt.Printf("Groundwater Daily Estimation\n")
	fmt.Printf("============================\n\n")
	fmt.Printf("Well:            %s (unit %d)\n", observed.WellID, observed.Unit)
	fmt.Printf("Mode:            %s\n", result.Mode)
	fmt.Printf("Quality:         %s\n", result.Quality)
	fmt.Printf("Timeline:        %s to %s (%d days)\n",
		result.Dates[0].Format(dateLayout),
		result.Dates[len(result.Dates)-1].Format(dateLayout),
		result.Len())
	fmt.Printf("Observed days:   %d\n\n", observed.ObservedCount())

	// Compare against the observations on the result timeline.
	obsOnTimeline := observedOnTimeline(result, observed)
	summary, err := metrics.All(obsOnTimeline, result.Estimated)
	if err == nil && summary.N > 0 {
		fmt.Printf("Fit at observed days: %s\n", summary)
	}
}

// observedOnTimeline lays the raw observations over the result timeline so
// the two series can be compared position by position.
func observedOnTimeline(result *tsd.Result, observed *well.Series) []float64 {
	byDate := make(map[time.Time]float64, observed.Len())
	for i, d := range observed.Dates {
		byDate[d] = observed.Levels[i]
	}
	out := make([]float64, result.Len())
	for i, d := range result.Dates {
		if v, ok := byDate[d]; ok {
			out[i] = v
		} else {
			out[i] = well.Missing()
		}
	}
	return out
}

func exportCSV(path string, result *tsd.Result, observed *well.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Observed", "Trend", "Local", "Regional", "Estimated"}); err != nil {
		return err
	}

	obsOnTimeline := observedOnTimeline(result, observed)
	for i, d := range result.Dates {
		row := []string{
			d.Format(dateLayout),
			formatLevel(obsOnTimeline[i]),
			formatLevel(result.Trend[i]),
			formatLevel(result.Local[i]),
			formatLevel(result.Regional[i]),
			formatLevel(result.Estimated[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatLevel(v float64) string {
	if well.IsMissing(v) {
		return ""
	}
	return fmt.Sprintf("%.3f", v)
}
