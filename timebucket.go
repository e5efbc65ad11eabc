package main

import (
	"fmt"
	"sort"
	"time"
)

// Truncate returns the calendar bucket start containing t for the given
// period. Weeks start on Monday.
func Truncate(t time.Time, period Period) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch period {
	case PeriodHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case PeriodDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

var (
	dayLabels     = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	quarterLabels = []string{"Q1", "Q2", "Q3", "Q4"}
)

// ChartSlots assigns every ride timestamp to a labeled chart slot for the
// given period. Hour, day, month and quarter use fixed cyclic slots
// (hour-of-day, day-of-week, month-of-year, quarter-of-year). Week and year
// slots are derived from the data: the 12 most recent ISO weeks present,
// and every distinct year present, in ascending order.
type ChartSlots struct {
	Labels []string
	index  func(time.Time) (int, bool)
}

// SlotIndex returns the slot for t and whether t belongs on the chart at all.
func (c ChartSlots) SlotIndex(t time.Time) (int, bool) {
	return c.index(t)
}

func NewChartSlots(period Period, times []time.Time) ChartSlots {
	switch period {
	case PeriodHour:
		labels := make([]string, 24)
		for i := range labels {
			labels[i] = fmt.Sprintf("%02d:00", i)
		}
		return ChartSlots{Labels: labels, index: func(t time.Time) (int, bool) {
			return t.Hour(), true
		}}
	case PeriodDay:
		return ChartSlots{Labels: dayLabels, index: func(t time.Time) (int, bool) {
			return (int(t.Weekday()) + 6) % 7, true
		}}
	case PeriodWeek:
		return weekSlots(times)
	case PeriodQuarter:
		return ChartSlots{Labels: quarterLabels, index: func(t time.Time) (int, bool) {
			return (int(t.Month()) - 1) / 3, true
		}}
	case PeriodYear:
		return yearSlots(times)
	}
	return ChartSlots{Labels: monthLabels, index: func(t time.Time) (int, bool) {
		return int(t.Month()) - 1, true
	}}
}

type isoWeek struct {
	year, week int
}

func weekSlots(times []time.Time) ChartSlots {
	seen := make(map[isoWeek]bool)
	for _, t := range times {
		y, w := t.ISOWeek()
		seen[isoWeek{y, w}] = true
	}
	keys := make([]isoWeek, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})
	if len(keys) > 12 {
		keys = keys[len(keys)-12:]
	}

	slot := make(map[isoWeek]int, len(keys))
	labels := make([]string, len(keys))
	for i, k := range keys {
		slot[k] = i
		labels[i] = fmt.Sprintf("Week %d", k.week)
	}
	return ChartSlots{Labels: labels, index: func(t time.Time) (int, bool) {
		y, w := t.ISOWeek()
		i, ok := slot[isoWeek{y, w}]
		return i, ok
	}}
}

func yearSlots(times []time.Time) ChartSlots {
	seen := make(map[int]bool)
	for _, t := range times {
		seen[t.Year()] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)

	slot := make(map[int]int, len(years))
	labels := make([]string, len(years))
	for i, y := range years {
		slot[y] = i
		labels[i] = fmt.Sprintf("%d", y)
	}
	return ChartSlots{Labels: labels, index: func(t time.Time) (int, bool) {
		i, ok := slot[t.Year()]
		return i, ok
	}}
}
