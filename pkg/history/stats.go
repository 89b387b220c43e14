package history

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary describes capture timing across the journal
type Summary struct {
	Total   int
	Failed  int
	Mean    time.Duration
	StdDev  time.Duration
	Median  time.Duration
	Slowest time.Duration
}

// Summary computes statistics over every recorded capture
func (d *DB) Summary() (Summary, error) {
	total, failed, err := d.Counts()
	if err != nil {
		return Summary{}, err
	}
	durations, err := d.Durations()
	if err != nil {
		return Summary{}, err
	}
	s := Summarize(durations)
	s.Total = total
	s.Failed = failed
	return s, nil
}

// Summarize computes timing statistics from durations in seconds
func Summarize(seconds []float64) Summary {
	var s Summary
	if len(seconds) == 0 {
		return s
	}

	sorted := make([]float64, len(seconds))
	copy(sorted, seconds)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	s.Mean = secs(mean)
	if len(sorted) > 1 {
		s.StdDev = secs(std)
	}
	s.Median = secs(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	s.Slowest = secs(sorted[len(sorted)-1])
	return s
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second)).Round(time.Millisecond)
}

func (s Summary) String() string {
	if s.Total == 0 {
		return "no captures yet"
	}
	return fmt.Sprintf("%d captures (%d failed) · mean %v ± %v · median %v · slowest %v",
		s.Total, s.Failed, s.Mean, s.StdDev, s.Median, s.Slowest)
}
