package market

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Interval identifies the sampling cadence of a price series.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval1mo Interval = "1mo"
)

// Operation identifies the read path a duration budget applies to.
// Each operation carries its own default/max table, mirroring the
// per-endpoint limits the service exposes.
type Operation string

const (
	OpPredict        Operation = "predict"
	OpPastValues     Operation = "past_values"
	OpHistoricalData Operation = "historical_data"
)

// Policy resolution errors. Handlers map these onto HTTP statuses.
var (
	ErrInvalidInterval    = errors.New("unsupported interval")
	ErrNonIntegerDuration = errors.New("duration should be an integer")
	ErrDurationOutOfRange = errors.New("duration out of range")
)

// Step is the natural timestamp advancement unit of an interval.
// Minutes and hours advance by fixed offsets; days and months advance
// on the calendar so month lengths and DST transitions are respected.
type Step int

const (
	StepMinute Step = iota
	StepHour
	StepDay
	StepMonth
)

// Advance returns t moved forward by n steps.
func (s Step) Advance(t time.Time, n int) time.Time {
	switch s {
	case StepMinute:
		return t.Add(time.Duration(n) * time.Minute)
	case StepHour:
		return t.Add(time.Duration(n) * time.Hour)
	case StepDay:
		return t.AddDate(0, 0, n)
	case StepMonth:
		return t.AddDate(0, n, 0)
	default:
		return t
	}
}

// Budget is the duration envelope of one (interval, operation) pair.
type Budget struct {
	Default      int
	Max          int
	SourcePeriod string // how much history to request upstream
}

// Spec is the full policy row for one interval. The table is data,
// not code; adding an interval means adding a row here.
type Spec struct {
	Step    Step
	Budgets map[Operation]Budget
}

var specs = map[Interval]Spec{
	Interval1m: {
		Step: StepMinute,
		Budgets: map[Operation]Budget{
			OpPredict:    {Default: 10, Max: 30, SourcePeriod: "5d"},
			OpPastValues: {Default: 15, Max: 60, SourcePeriod: "1d"},
		},
	},
	Interval1h: {
		Step: StepHour,
		Budgets: map[Operation]Budget{
			OpPredict:        {Default: 5, Max: 10, SourcePeriod: "2y"},
			OpPastValues:     {Default: 24, Max: 120, SourcePeriod: "1mo"},
			OpHistoricalData: {Default: 24, Max: 1000, SourcePeriod: "2y"},
		},
	},
	Interval1d: {
		Step: StepDay,
		Budgets: map[Operation]Budget{
			OpPredict:        {Default: 30, Max: 1500, SourcePeriod: "5y"},
			OpHistoricalData: {Default: 30, Max: 1500, SourcePeriod: "5y"},
		},
	},
	Interval1mo: {
		Step: StepMonth,
		Budgets: map[Operation]Budget{
			OpPredict:        {Default: 12, Max: 120, SourcePeriod: "max"},
			OpHistoricalData: {Default: 12, Max: 120, SourcePeriod: "max"},
		},
	},
}

// RefitInterval is the fastest cadence; only its training artifacts
// run during the open-session refit loop.
const RefitInterval = Interval1m

// Resolve validates (interval, duration) for an operation and returns
// the effective duration plus the upstream fetch period. An empty
// duration string substitutes the tabled default. Duration is accepted
// as a string so a non-integer value can be distinguished from an
// out-of-range one before anything is fetched.
func Resolve(op Operation, interval Interval, duration string) (int, string, error) {
	spec, ok := specs[interval]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	budget, ok := spec.Budgets[op]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q for %s", ErrInvalidInterval, interval, op)
	}

	if duration == "" {
		return budget.Default, budget.SourcePeriod, nil
	}

	n, err := strconv.Atoi(duration)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrNonIntegerDuration, duration)
	}

	if n < 1 || n > budget.Max {
		return 0, "", fmt.Errorf("%w: must be between 1 and %d for interval %q", ErrDurationOutOfRange, budget.Max, interval)
	}

	return n, budget.SourcePeriod, nil
}

// StepOf returns the timestamp advancement unit for an interval.
func StepOf(interval Interval) (Step, error) {
	spec, ok := specs[interval]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
	return spec.Step, nil
}

// NextTimestamps returns n future timestamps spaced one interval step
// apart, starting one step after last.
func NextTimestamps(interval Interval, last time.Time, n int) ([]time.Time, error) {
	step, err := StepOf(interval)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = step.Advance(last, i+1)
	}
	return out, nil
}

// SupportedIntervals lists the intervals an operation accepts, sorted
// for stable error messages and docs.
func SupportedIntervals(op Operation) []Interval {
	var out []Interval
	for interval, spec := range specs {
		if _, ok := spec.Budgets[op]; ok {
			out = append(out, interval)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
