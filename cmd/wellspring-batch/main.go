// Command wellspring-batch runs the decomposition over every well of a
// treatment unit against a chosen (or automatically selected) reference
// well and reports per-well goodness-of-fit statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/hydrosense/wellspring/internal/config"
	"github.com/hydrosense/wellspring/internal/log"
	"github.com/hydrosense/wellspring/internal/source"
	"github.com/hydrosense/wellspring/internal/tsd"
	"github.com/hydrosense/wellspring/internal/well"
	"github.com/hydrosense/wellspring/pkg/metrics"
)

const dateLayout = "2006-01-02"

type pairResult struct {
	wellID  string
	mode    tsd.Mode
	quality tsd.Quality
	summary metrics.Summary
	err     error
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		dataPath   = flag.String("data", "", "Path to data file (.csv, .xlsx, .sqlite, .db); overrides the config file")
		unit       = flag.Int("unit", source.AnyUnit, "Treatment unit (omit for any)")
		reference  = flag.String("reference", "", "Reference well identifier (empty: densest well)")
		startDate  = flag.String("start", "", "Window start date (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "Window end date (YYYY-MM-DD)")
		modeName   = flag.String("mode", "", "Decomposition mode: auto, calibration or estimation")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dataPath != "" {
		cfg.Source.Path = *dataPath
		cfg.Source.Postgres = ""
	}
	if *modeName != "" {
		cfg.Estimation.Mode = *modeName
	}
	if *reference != "" {
		cfg.Estimation.Reference = *reference
	}
	if *unit != source.AnyUnit {
		cfg.Estimation.Unit = *unit
	}
	if cfg.Source.Path == "" && cfg.Source.Postgres == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	runID := uuid.New().String()[:8]
	logger.Infof("batch run %s starting", runID)

	mode, err := tsd.ParseMode(cfg.Estimation.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	window, err := parseWindow(*startDate, *endDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	src, err := cfg.OpenSource(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data source: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	wells, err := src.AvailableWells()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing wells: %v\n", err)
		os.Exit(1)
	}

	refWell := cfg.Estimation.Reference
	if refWell == "" {
		refWell, err = densestWell(src, wells, cfg.Estimation.Unit, window)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error selecting reference well: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Auto-selected reference well: %s\n\n", refWell)
	}

	estimator := tsd.NewEstimator(src, logger)

	var targets []string
	for _, w := range wells {
		if w != refWell {
			targets = append(targets, w)
		}
	}

	bar := progressbar.Default(int64(len(targets)), "estimating")
	results := make([]pairResult, 0, len(targets))
	for _, target := range targets {
		results = append(results, runPair(estimator, src, target, refWell, cfg.Estimation.Unit, window, mode))
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Batch run %s, reference well %s\n\n", runID, refWell)
	printTable(results)
	logger.Infof("batch run %s finished: %d wells", runID, len(results))
}

func runPair(estimator *tsd.Estimator, src source.Source, target, reference string, unit int, window well.Window, mode tsd.Mode) pairResult {
	out := pairResult{wellID: target}

	result, err := estimator.EstimateDailyValues(target, reference, unit, window, tsd.Options{Mode: mode})
	if err != nil {
		out.err = err
		return out
	}
	out.mode = result.Mode
	out.quality = result.Quality

	observed, err := src.WellData(target, unit, window)
	if err != nil {
		out.err = err
		return out
	}

	byDate := make(map[time.Time]float64, observed.Len())
	for i, d := range observed.Dates {
		byDate[d] = observed.Levels[i]
	}
	obs := make([]float64, result.Len())
	for i, d := range result.Dates {
		if v, ok := byDate[d]; ok {
			obs[i] = v
		} else {
			obs[i] = well.Missing()
		}
	}

	out.summary, out.err = metrics.All(obs, result.Estimated)
	return out
}

// densestWell picks the well with the most observed days, the natural
// reference candidate.
func densestWell(src source.Source, wells []string, unit int, window well.Window) (string, error) {
	best, bestCount := "", -1
	for _, w := range wells {
		s, err := src.WellData(w, unit, window)
		if err != nil {
			continue
		}
		if c := s.ObservedCount(); c > bestCount {
			best, bestCount = w, c
		}
	}
	if best == "" {
		return "", fmt.Errorf("no wells with data in the requested window")
	}
	return best, nil
}

func printTable(results []pairResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].wellID < results[j].wellID })

	fmt.Printf("%-12s %-12s %-20s %8s %8s %8s %9s %8s\n",
		"Well", "Mode", "Quality", "RMSE", "R²", "NSE", "MAPE%", "Bias")
	for _, r := range results {
		if r.err != nil {
			fmt.Printf("%-12s error: %v\n", r.wellID, r.err)
			continue
		}
		fmt.Printf("%-12s %-12s %-20s %8.3f %8.3f %8.3f %9.2f %8.3f\n",
			r.wellID, r.mode, r.quality,
			r.summary.RMSE, r.summary.RSquared, r.summary.NashSutcliffe,
			r.summary.MAPE, r.summary.Bias)
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
