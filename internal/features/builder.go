package features

import "fmt"

// BuildCellFeatures computes every configured transform for one cell
// series and returns the features keyed by their full per-cell name
// (prefix + coordinate suffix from col). Each transform reads only the
// raw series, never another transform's output, so the map's assembly
// order is irrelevant and cells can be built concurrently.
func BuildCellFeatures(s []*float64, col string, cfg Config) map[string][]*float64 {
	feats := make(map[string][]*float64)

	// Past-only features.
	for _, h := range cfg.LagHours {
		feats[FeatureName(fmt.Sprintf("lag%dh", h), col)] = Lag(s, h)
	}
	for _, w := range cfg.SumWindows {
		feats[FeatureName(fmt.Sprintf("sum%dh", w), col)] = RollingSum(s, w)
	}
	for _, w := range cfg.MaxWindows {
		feats[FeatureName(fmt.Sprintf("max%dh", w), col)] = RollingMax(s, w)
	}
	for _, hl := range cfg.APIHalfLives {
		feats[FeatureName(fmt.Sprintf("api_hl%dh", hl), col)] = AntecedentIndex(s, hl)
	}
	feats[FeatureName("dryspell", col)] = DryStreak(s, cfg.DryThreshold, cfg.MissingIsDry)
	feats[FeatureName("rainnow", col)] = RainNow(s, cfg.WetThreshold)
	feats[FeatureName("delta1h", col)] = Delta1h(s)

	// Forecast-lookahead features.
	for _, h := range cfg.ForwardSumHorizons {
		feats[FeatureName(fmt.Sprintf("next%dh_sum", h), col)] = ForwardSum(s, h)
	}
	for _, h := range cfg.ForwardMaxHorizons {
		feats[FeatureName(fmt.Sprintf("next%dh_max", h), col)] = ForwardMax(s, h)
	}
	for _, h := range cfg.TimeToPeakHorizons {
		feats[FeatureName(fmt.Sprintf("ttp_next%dh", h), col)] = TimeToPeak(s, h)
	}
	if cfg.FrontShareHorizon > 0 {
		name := FeatureName(fmt.Sprintf("frontshare_next%dh", cfg.FrontShareHorizon), col)
		feats[name] = FrontShare(s, cfg.FrontShareHorizon)
	}

	return feats
}
