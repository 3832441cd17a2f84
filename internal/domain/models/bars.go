package models

import "time"

// PriceBar is one aligned daily observation for the lead/lag pair.
// Bars are chronologically increasing with no duplicate dates; days where
// either instrument is missing are dropped during alignment.
type PriceBar struct {
	Date       time.Time
	LeadClose  float64
	LagClose   float64
	LeadVolume float64
	LagVolume  float64
}

// FeatureRow holds the rolling statistics derived from a full lookback
// window ending at Date. A row exists only when every component is defined;
// incomplete or degenerate windows produce no row at all.
type FeatureRow struct {
	Date           time.Time
	LeadReturn     float64
	LagReturn      float64
	LeadGap        float64 // equals LeadReturn; kept as a separate column on purpose
	RelativeVolume float64
	Spread         float64
	SpreadZScore   float64
	LeadVolatility float64
	LagVolatility  float64
}
