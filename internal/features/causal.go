package features

import "math"

// Causal (past-only) transforms. Every function takes one rainfall series
// as a []*float64 aligned with the hourly time index (nil = missing) and
// returns a new slice of the same length. Inputs are never mutated.

// Lag returns s(t-h): out[t] = s[t-h] for t >= h, missing before that.
// A non-positive h yields an all-missing series.
func Lag(s []*float64, hours int) []*float64 {
	out := make([]*float64, len(s))
	if hours <= 0 {
		return out
	}
	for t := hours; t < len(s); t++ {
		out[t] = s[t-hours]
	}
	return out
}

// RollingSum sums the inclusive trailing window [t-w+1, t], clipped to
// available history, so the first w-1 outputs cover partial windows.
// Missing values are skipped; a window with no observed value is missing.
func RollingSum(s []*float64, window int) []*float64 {
	out := make([]*float64, len(s))
	if window <= 0 {
		return out
	}
	for t := range s {
		start := t - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		seen := false
		for i := start; i <= t; i++ {
			if s[i] != nil {
				sum += *s[i]
				seen = true
			}
		}
		if seen {
			v := sum
			out[t] = &v
		}
	}
	return out
}

// RollingMax is RollingSum's max counterpart over the same trailing
// window and with the same partial-window and missing-value policy.
func RollingMax(s []*float64, window int) []*float64 {
	out := make([]*float64, len(s))
	if window <= 0 {
		return out
	}
	for t := range s {
		start := t - window + 1
		if start < 0 {
			start = 0
		}
		best := math.Inf(-1)
		seen := false
		for i := start; i <= t; i++ {
			if s[i] != nil {
				if *s[i] > best {
					best = *s[i]
				}
				seen = true
			}
		}
		if seen {
			v := best
			out[t] = &v
		}
	}
	return out
}

// AntecedentIndex computes the exponentially decaying wetness memory
//
//	api[t] = k*api[t-1] + r[t],  k = 0.5^(1/halflife),  api[-1] = 0
//
// as an explicit fold over the series. The recurrence has unbounded
// effective memory, so it cannot be expressed as a rolling window.
// Missing readings contribute 0 rather than propagating, so the index
// decays through gaps instead of resetting or going missing.
func AntecedentIndex(s []*float64, halflifeHours int) []*float64 {
	out := make([]*float64, len(s))
	if halflifeHours <= 0 {
		return out
	}
	k := math.Pow(0.5, 1.0/float64(halflifeHours))
	api := 0.0
	for t := range s {
		r := 0.0
		if s[t] != nil {
			r = *s[t]
		}
		api = k*api + r
		v := api
		out[t] = &v
	}
	return out
}

// DryStreak counts, for each t, the consecutive hours strictly before t
// whose value is <= threshold. The streak resets to 0 the first hour
// after a wet (> threshold) hour. A missing preceding hour counts as dry
// when missingIsDry is set; the hour before the series start is treated
// the same way.
func DryStreak(s []*float64, threshold float64, missingIsDry bool) []*float64 {
	out := make([]*float64, len(s))
	streak := 0.0
	for t := range s {
		// Classify the hour immediately before t.
		var dry bool
		switch {
		case t == 0:
			dry = missingIsDry
		case s[t-1] == nil:
			dry = missingIsDry
		default:
			dry = *s[t-1] <= threshold
		}
		if dry {
			streak++
		} else {
			streak = 0
		}
		v := streak
		out[t] = &v
	}
	return out
}

// RainNow returns 1.0 where s(t) > threshold and 0.0 otherwise.
// A missing reading compares false, i.e. it is reported as "not raining"
// rather than missing. That mirrors the source data pipeline; callers
// that want missingness preserved should mask on the raw series instead.
func RainNow(s []*float64, threshold float64) []*float64 {
	out := make([]*float64, len(s))
	for t := range s {
		v := 0.0
		if s[t] != nil && *s[t] > threshold {
			v = 1.0
		}
		value := v
		out[t] = &value
	}
	return out
}

// Delta1h returns s(t) - s(t-1), missing when either operand is missing
// (and always at t=0).
func Delta1h(s []*float64) []*float64 {
	out := make([]*float64, len(s))
	for t := 1; t < len(s); t++ {
		if s[t] != nil && s[t-1] != nil {
			v := *s[t] - *s[t-1]
			out[t] = &v
		}
	}
	return out
}
