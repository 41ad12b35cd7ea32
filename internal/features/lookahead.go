package features

import "math"

// Lookahead transforms summarize the next H hours, s[t+1 .. t+H], clipped
// to the series end. They exist as stand-ins for a true forecast input and
// leak future information by construction; see the package comment.

// ForwardSum sums s[t+1 .. t+H] clipped to the available future. Missing
// values are skipped; an empty or all-missing window yields missing (the
// last index always has an empty window).
func ForwardSum(s []*float64, horizon int) []*float64 {
	out := make([]*float64, len(s))
	if horizon <= 0 {
		return out
	}
	for t := range s {
		end := t + horizon
		if end > len(s)-1 {
			end = len(s) - 1
		}
		sum := 0.0
		seen := false
		for i := t + 1; i <= end; i++ {
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

// ForwardMax is ForwardSum's max counterpart over the same forward window.
func ForwardMax(s []*float64, horizon int) []*float64 {
	out := make([]*float64, len(s))
	if horizon <= 0 {
		return out
	}
	for t := range s {
		end := t + horizon
		if end > len(s)-1 {
			end = len(s) - 1
		}
		best := math.Inf(-1)
		seen := false
		for i := t + 1; i <= end; i++ {
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

// TimeToPeak returns, for each t, the 1-based offset of the peak intensity
// within s[t+1 .. t+H] (clipped to the series end): 1 means the peak is at
// t+1, H means t+H. Missing values inside the window are ignored but still
// occupy their offset. Ties break to the earliest occurrence. An empty or
// all-missing window yields missing.
func TimeToPeak(s []*float64, horizon int) []*float64 {
	out := make([]*float64, len(s))
	if horizon <= 0 {
		return out
	}
	for t := range s {
		end := t + horizon
		if end > len(s)-1 {
			end = len(s) - 1
		}
		best := math.Inf(-1)
		offset := 0
		for i := t + 1; i <= end; i++ {
			if s[i] != nil && *s[i] > best {
				best = *s[i]
				offset = i - t
			}
		}
		if offset > 0 {
			v := float64(offset)
			out[t] = &v
		}
	}
	return out
}

// FrontShare returns the fraction of the next-H-hours rainfall that falls
// in the first half of the window (H1 = floor(H/2)):
//
//	frontshare[t] = ForwardSum(H1)[t] / ForwardSum(H)[t]
//
// Missing when the H-hour total is missing or not strictly positive, so a
// rainless window never produces a division artifact.
func FrontShare(s []*float64, horizon int) []*float64 {
	out := make([]*float64, len(s))
	if horizon <= 0 {
		return out
	}
	firstHalf := ForwardSum(s, horizon/2)
	total := ForwardSum(s, horizon)
	for t := range s {
		if firstHalf[t] == nil || total[t] == nil || *total[t] <= 0 {
			continue
		}
		v := *firstHalf[t] / *total[t]
		out[t] = &v
	}
	return out
}
