// Package deadline computes the "días restantes" metric shown next to each case.
package deadline

import "time"

// AtRiskThreshold is the day count from which a case is highlighted as at risk.
// It is a display policy only; records are never rejected for exceeding it.
const AtRiskThreshold = 6

const secondsPerDay = 24 * 60 * 60

// DaysRemaining returns the whole days between origination and the reference date,
// where the reference is forwarded when present and today otherwise.
// Time of day is discarded on both sides. The result may be negative.
// It returns nil when origination is nil.
func DaysRemaining(origination, forwarded *time.Time, today time.Time) *int {
	if origination == nil {
		return nil
	}
	ref := today
	if forwarded != nil {
		ref = *forwarded
	}
	days := int(civil(ref).Unix()/secondsPerDay - civil(*origination).Unix()/secondsPerDay)
	return &days
}

// AtRisk reports whether days is present and at or above AtRiskThreshold.
func AtRisk(days *int) bool {
	return days != nil && *days >= AtRiskThreshold
}

// civil maps t to midnight UTC of its calendar date in its own location,
// so the subtraction never crosses a DST transition. Differences are taken on Unix seconds
// because time.Duration saturates past roughly 292 years.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
