package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestDayOfYear(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want int
	}{
		{"jan 1", date(2025, time.January, 1), 0},
		{"jan 2", date(2025, time.January, 2), 1},
		{"feb 1", date(2025, time.February, 1), 31},
		{"dec 31", date(2025, time.December, 31), 364},
		{"leap dec 31", date(2024, time.December, 31), 365},
		{"midnight", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 59},
		{"just before midnight", time.Date(2025, time.March, 1, 23, 59, 59, 0, time.UTC), 59},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayOfYear(tt.in))
		})
	}
}

func TestDayOfYearUsesLocation(t *testing.T) {
	// 2025-01-02 01:00 in UTC+2 is still January 1st in UTC.
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2025, time.January, 2, 1, 0, 0, 0, loc)

	assert.Equal(t, 1, DayOfYear(local))
	assert.Equal(t, 0, DayOfYear(local.UTC()))
}

func TestIndexForDate(t *testing.T) {
	assert.Equal(t, 0, IndexForDate(date(2025, time.January, 1), 3))
	assert.Equal(t, 1, IndexForDate(date(2025, time.January, 2), 3))
	assert.Equal(t, 2, IndexForDate(date(2025, time.January, 3), 3))
	assert.Equal(t, 0, IndexForDate(date(2025, time.January, 4), 3))
	assert.Equal(t, 0, IndexForDate(date(2025, time.June, 30), 1))
	assert.Equal(t, 0, IndexForDate(date(2025, time.June, 30), 0))
	assert.Equal(t, 0, IndexForDate(date(2025, time.June, 30), -4))
}

func TestIndexForDateStaysInRange(t *testing.T) {
	day := date(2024, time.January, 1)
	for i := 0; i < 400; i++ {
		for size := 1; size <= 7; size++ {
			idx := IndexForDate(day, size)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, size)
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestPick(t *testing.T) {
	pool := []string{"a", "b", "c"}

	got, idx := Pick(pool, date(2025, time.January, 5))
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", got)
}

func TestPickPanicsOnEmptyPool(t *testing.T) {
	assert.Panics(t, func() {
		Pick([]int{}, date(2025, time.January, 5))
	})
}
