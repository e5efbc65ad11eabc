package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	// Wednesday 2025-03-12 14:37:05
	ts := time.Date(2025, 3, 12, 14, 37, 5, 0, time.UTC)

	cases := []struct {
		period Period
		want   time.Time
	}{
		{PeriodHour, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)},
		{PeriodDay, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}, // Monday
		{PeriodMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodQuarter, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Truncate(ts, c.period), "period %s", c.period)
	}
}

func TestTruncateWeekAcrossMonthBoundary(t *testing.T) {
	// Sunday 2025-06-01 belongs to the week starting Monday 2025-05-26.
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), Truncate(ts, PeriodWeek))
}

func TestTruncateQuarterStarts(t *testing.T) {
	for month, wantStart := range map[time.Month]time.Month{
		time.February: time.January,
		time.May:      time.April,
		time.August:   time.July,
		time.November: time.October,
	} {
		ts := time.Date(2025, month, 20, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantStart, Truncate(ts, PeriodQuarter).Month())
	}
}

func TestParsePeriodFallback(t *testing.T) {
	assert.Equal(t, PeriodWeek, ParsePeriod("week"))
	assert.Equal(t, PeriodMonth, ParsePeriod("bogus"))
	assert.Equal(t, PeriodMonth, ParsePeriod(""))
}

func TestChartSlotsCyclic(t *testing.T) {
	slots := NewChartSlots(PeriodHour, nil)
	require.Len(t, slots.Labels, 24)
	assert.Equal(t, "00:00", slots.Labels[0])
	assert.Equal(t, "23:00", slots.Labels[23])
	i, ok := slots.SlotIndex(time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 15, i)

	slots = NewChartSlots(PeriodDay, nil)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, slots.Labels)
	i, _ = slots.SlotIndex(time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)) // Sunday
	assert.Equal(t, 6, i)

	slots = NewChartSlots(PeriodMonth, nil)
	require.Len(t, slots.Labels, 12)
	i, _ = slots.SlotIndex(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 11, i)

	slots = NewChartSlots(PeriodQuarter, nil)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, slots.Labels)
	i, _ = slots.SlotIndex(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, i)
}

func TestChartSlotsWeekKeepsTwelveMostRecent(t *testing.T) {
	var times []time.Time
	// 15 consecutive Mondays starting 2025-01-06, which is ISO week 2.
	start := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		times = append(times, start.AddDate(0, 0, i*7))
	}

	slots := NewChartSlots(PeriodWeek, times)
	require.Len(t, slots.Labels, 12)
	assert.Equal(t, "Week 5", slots.Labels[0])
	assert.Equal(t, "Week 16", slots.Labels[11])

	// The oldest three weeks fall off the chart.
	_, ok := slots.SlotIndex(start)
	assert.False(t, ok)
	i, ok := slots.SlotIndex(start.AddDate(0, 0, 14*7))
	require.True(t, ok)
	assert.Equal(t, 11, i)
}

func TestChartSlotsYearFromData(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	slots := NewChartSlots(PeriodYear, times)
	assert.Equal(t, []string{"2023", "2024", "2025"}, slots.Labels)
	i, ok := slots.SlotIndex(times[1])
	require.True(t, ok)
	assert.Equal(t, 2, i)
}
