// Package daily rotates fixed content pools by calendar day.
package daily

import "time"

// DayOfYear returns the number of whole days between January 1st of t's year
// and t, evaluated in t's location. January 1st is day 0.
func DayOfYear(t time.Time) int {
	return t.YearDay() - 1
}

// IndexForDate maps a date onto a pool of poolSize entries.
// An empty pool always yields 0.
func IndexForDate(t time.Time, poolSize int) int {
	if poolSize <= 0 {
		return 0
	}
	return DayOfYear(t) % poolSize
}

// Pick returns the pool entry for the given date along with its index.
// It panics on an empty pool, which is a programming error.
func Pick[T any](pool []T, t time.Time) (T, int) {
	i := IndexForDate(t, len(pool))
	return pool[i], i
}
