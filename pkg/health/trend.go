package health

// CompareTrend classifies a new score against the previously cached one.
// No previous score reads as flat.
func CompareTrend(score int, previous *int) Trend {
	if previous == nil {
		return TrendFlat
	}
	switch {
	case score > *previous:
		return TrendUp
	case score < *previous:
		return TrendDown
	default:
		return TrendFlat
	}
}
