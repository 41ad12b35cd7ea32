package features

// Config selects which transforms run and with what lag/window/horizon
// parameters. It is a pure value object: callers pass it explicitly into
// every build, so concurrent runs with different settings cannot
// interfere. The zero value disables everything; use DefaultConfig for
// the starter set.
type Config struct {
	LagHours     []int // lag features s(t-h), hours
	SumWindows   []int // trailing rolling-sum windows, hours
	MaxWindows   []int // trailing rolling-max windows, hours
	APIHalfLives []int // antecedent-index half-lives, hours

	DryThreshold float64 // rainfall <= threshold counts as a dry hour
	WetThreshold float64 // rainfall > threshold counts as raining now

	// MissingIsDry controls how the dry-spell streak classifies a missing
	// preceding hour. The source data treats missing as dry; that is a
	// modeling assumption, not a necessity, so it is kept configurable.
	MissingIsDry bool

	ForwardSumHorizons []int // forward-sum horizons, hours
	ForwardMaxHorizons []int // forward-max horizons, hours
	TimeToPeakHorizons []int // time-to-peak horizons, hours
	FrontShareHorizon  int   // front-share horizon, hours (0 disables)
}

// DefaultConfig returns the starter feature set: half-lives cover fast
// (6h), medium (24h) and weekly (168h) wetness memory.
func DefaultConfig() Config {
	return Config{
		LagHours:           []int{1, 2, 3, 4, 5, 6, 12, 24},
		SumWindows:         []int{3, 6, 12, 24},
		MaxWindows:         []int{3, 6},
		APIHalfLives:       []int{6, 24, 168},
		DryThreshold:       0.2,
		WetThreshold:       0.2,
		MissingIsDry:       true,
		ForwardSumHorizons: []int{1, 3, 6, 12},
		ForwardMaxHorizons: []int{3, 6, 12},
		TimeToPeakHorizons: []int{6, 12},
		FrontShareHorizon:  12,
	}
}
